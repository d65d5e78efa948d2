package pipeline

import (
	"github.com/santhoshcheemala/zkcredit/artifacts"
)

// PlanStep reports one stage and whether its output artifacts are already on
// disk.
type PlanStep struct {
	Stage string
	Done  bool
}

// Plan is a dry-run view of the pipeline: which common steps an invocation
// would skip, and which per-subject artifacts currently exist. Derived purely
// from artifact presence; the engine is never touched. Note that per-subject
// stages always re-run regardless of presence, so their Done column describes
// leftovers from a prior run, not work that would be skipped.
type Plan struct {
	Common  []PlanStep
	Subject []PlanStep
}

// BuildPlan inspects the store. subjectID may be empty for a common-only view.
func BuildPlan(store *artifacts.Store, subjectID string) Plan {
	sharedDone := func(names ...artifacts.Name) bool {
		for _, n := range names {
			path, _ := store.Resolve(artifacts.Shared, n, "")
			if !store.Exists(path) {
				return false
			}
		}
		return true
	}

	plan := Plan{
		Common: []PlanStep{
			{Stage: "compile-circuit", Done: sharedDone(artifacts.CompiledCircuit, artifacts.Settings)},
			{Stage: "get-srs", Done: sharedDone(artifacts.SRS)},
			{Stage: "setup", Done: sharedDone(artifacts.ProvingKey, artifacts.VerificationKey)},
		},
	}
	if subjectID == "" {
		return plan
	}

	subjectDone := func(names ...artifacts.Name) bool {
		for _, n := range names {
			path, err := store.Resolve(artifacts.Subject, n, subjectID)
			if err != nil || !store.Exists(path) {
				return false
			}
		}
		return true
	}
	plan.Subject = []PlanStep{
		{Stage: "prepare-input", Done: subjectDone(artifacts.CircuitInput)},
		{Stage: "gen-witness", Done: subjectDone(artifacts.Witness)},
		{Stage: "prove", Done: subjectDone(artifacts.Proof)},
		{Stage: "stage-artifacts", Done: subjectDone(artifacts.VerificationKey, artifacts.Settings)},
		{Stage: "evm-verifier", Done: subjectDone(artifacts.VerifierContract, artifacts.Calldata)},
		{Stage: "metadata", Done: subjectDone(artifacts.Metadata)},
	}
	return plan
}
