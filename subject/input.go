package subject

// Package subject loads the per-subject record produced by the upstream
// synthetic data generator and renders it into the input format the proving
// engine consumes.

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
)

// Input is one subject's record: the address identifying them, the feature
// vector the model scores, and the plaintext score the generator computed for
// later reconciliation. Read-only to the pipeline.
type Input struct {
	Address  string    `json:"address"`
	Features []float64 `json:"features"`
	Score    float64   `json:"score"`
}

// Load reads and validates a subject.json file.
func Load(path string) (Input, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read subject input: %w", err)
	}

	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return Input{}, fmt.Errorf("parse subject input %s: %w", path, err)
	}
	if !common.IsHexAddress(in.Address) {
		return Input{}, fmt.Errorf("subject input %s: %q is not a valid address", path, in.Address)
	}
	if len(in.Features) == 0 {
		return Input{}, fmt.Errorf("subject input %s: empty feature vector", path)
	}
	return in, nil
}

// circuitInput is the engine's expected input.json shape: features wrapped in
// a batch dimension, plus a placeholder output the witness step overwrites.
type circuitInput struct {
	InputData   [][]float64 `json:"input_data"`
	InputShapes [][]int     `json:"input_shapes"`
	OutputData  [][]float64 `json:"output_data"`
}

// WriteCircuitInput renders the engine input file for in's feature vector,
// overwriting any previous one.
func WriteCircuitInput(in Input, path string) error {
	ci := circuitInput{
		InputData:   [][]float64{in.Features},
		InputShapes: [][]int{{len(in.Features)}},
		OutputData:  [][]float64{{0}},
	}
	buf, err := json.MarshalIndent(ci, "", "  ")
	if err != nil {
		return fmt.Errorf("encode circuit input: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write circuit input: %w", err)
	}
	return nil
}
