package pipeline

import "context"

// Prover is the slice of the external engine client the pipelines invoke.
// *ezkl.Client satisfies it; tests substitute spies.
type Prover interface {
	GenSettings(ctx context.Context, model, settings string) error
	CalibrateSettings(ctx context.Context, model, data, settings string) error
	CompileCircuit(ctx context.Context, model, settings, compiled string) error
	GetSRS(ctx context.Context, settings, srs string) error
	Setup(ctx context.Context, compiled, srs, pk, vk string) error
	GenWitness(ctx context.Context, data, compiled, witness string) error
	Prove(ctx context.Context, witness, compiled, pk, srs, proof string) error
	Verify(ctx context.Context, proof, vk, srs, settings string) error
	CreateEVMVerifier(ctx context.Context, settings, vk, srs, solPath string) error
	EncodeCalldata(ctx context.Context, proof, calldata string) error
}
