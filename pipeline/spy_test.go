package pipeline

import (
	"context"
	"os"
	"path/filepath"
)

const defaultWitnessBody = `{"pretty_elements": {"rescaled_outputs": [["0.63"]]}}`

// spyProver counts engine invocations and fabricates the output files a real
// engine would leave behind. Setting failOn makes the named stage return
// failErr without producing outputs.
type spyProver struct {
	calls       map[string]int
	failOn      string
	failErr     error
	witnessBody string
}

func newSpyProver() *spyProver {
	return &spyProver{calls: map[string]int{}, witnessBody: defaultWitnessBody}
}

func (s *spyProver) total() int {
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *spyProver) step(stage string, outputs map[string]string) error {
	s.calls[stage]++
	if s.failOn == stage {
		return s.failErr
	}
	for path, content := range outputs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (s *spyProver) GenSettings(_ context.Context, _, settings string) error {
	return s.step("gen-settings", map[string]string{settings: `{"run_args": {}}`})
}

func (s *spyProver) CalibrateSettings(_ context.Context, _, _, settings string) error {
	return s.step("calibrate-settings", map[string]string{settings: `{"run_args": {"calibrated": true}}`})
}

func (s *spyProver) CompileCircuit(_ context.Context, _, _, compiled string) error {
	return s.step("compile-circuit", map[string]string{compiled: "compiled circuit"})
}

func (s *spyProver) GetSRS(_ context.Context, _, srs string) error {
	return s.step("get-srs", map[string]string{srs: "structured reference string"})
}

func (s *spyProver) Setup(_ context.Context, _, _, pk, vk string) error {
	return s.step("setup", map[string]string{pk: "proving key", vk: "verification key"})
}

func (s *spyProver) GenWitness(_ context.Context, _, _, witness string) error {
	return s.step("gen-witness", map[string]string{witness: s.witnessBody})
}

func (s *spyProver) Prove(_ context.Context, _, _, _, _, proof string) error {
	return s.step("prove", map[string]string{proof: `{"proof": "00ff"}`})
}

func (s *spyProver) Verify(_ context.Context, _, _, _, _ string) error {
	return s.step("verify", nil)
}

func (s *spyProver) CreateEVMVerifier(_ context.Context, _, _, _, solPath string) error {
	return s.step("create-evm-verifier", map[string]string{solPath: "contract Halo2Verifier {}"})
}

func (s *spyProver) EncodeCalldata(_ context.Context, _, calldata string) error {
	return s.step("encode-evm-calldata", map[string]string{calldata: `{"calldata": "0x"}`})
}
