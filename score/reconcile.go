package score

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Metadata is the structured form of a subject's metadata.json. ScaledScore
// is a pointer because extraction is best-effort; nil means the witness did
// not carry a readable output.
type Metadata struct {
	ProofHash    string  `json:"proof_hash"`
	ScaledScore  *int64  `json:"scaled_score,omitempty"`
	Score        float64 `json:"score"`
	Timestamp    int64   `json:"timestamp"`
	ModelVersion string  `json:"model_version"`
}

// LoadMetadata reads a metadata.json file.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	return md, nil
}

// Comparison reports how the score committed in the proof relates to the
// plaintext score. Derived, read-only, reporting only.
type Comparison struct {
	Plaintext   float64
	Scaled      int64
	Normalized  float64
	Discrepancy bool
}

// Reconciler divides committed scores back into model range and flags drift
// beyond the configured tolerance. Pure: no side effects, and its outcome
// never gates pipeline success.
type Reconciler struct {
	Scale     float64
	Tolerance float64
}

func NewReconciler(scale, tolerance float64) Reconciler {
	if scale <= 0 {
		scale = DefaultScale
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return Reconciler{Scale: scale, Tolerance: tolerance}
}

// Reconcile compares the plaintext score with the scaled score in md. Returns
// ErrScoreUnavailable when md carries no scaled score.
func (r Reconciler) Reconcile(plaintext float64, md Metadata) (Comparison, error) {
	if md.ScaledScore == nil {
		return Comparison{}, ErrScoreUnavailable
	}
	normalized := ToFloat(*md.ScaledScore, r.Scale)
	return Comparison{
		Plaintext:   plaintext,
		Scaled:      *md.ScaledScore,
		Normalized:  normalized,
		Discrepancy: math.Abs(normalized-plaintext) > r.Tolerance,
	}, nil
}
