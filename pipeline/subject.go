package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/santhoshcheemala/zkcredit/artifacts"
	"github.com/santhoshcheemala/zkcredit/registry"
	"github.com/santhoshcheemala/zkcredit/score"
	"github.com/santhoshcheemala/zkcredit/subject"
)

// SubjectPipeline produces a witness, a proof and verification artifacts for
// one subject, reading the shared circuit artifacts but never writing them.
// Stages run strictly in order and stop at the first failure; per-subject
// artifacts are overwritten on rerun (no versioning).
type SubjectPipeline struct {
	store      *artifacts.Store
	prover     Prover
	reconciler score.Reconciler
	log        zerolog.Logger
}

func NewSubjectPipeline(store *artifacts.Store, prover Prover, reconciler score.Reconciler, log zerolog.Logger) *SubjectPipeline {
	return &SubjectPipeline{
		store:      store,
		prover:     prover,
		reconciler: reconciler,
		log:        log.With().Str("phase", "subject").Logger(),
	}
}

// Run executes every stage for subjectID. withContract additionally emits the
// EVM verifier contract and its calldata. The returned results cover every
// stage attempted, including the failing one.
func (p *SubjectPipeline) Run(ctx context.Context, subjectID string, withContract bool) ([]StageResult, error) {
	// Fail fast before any engine call if the common phase is incomplete.
	if missing := p.store.MissingShared(); len(missing) > 0 {
		return nil, &MissingSharedError{Missing: missing}
	}
	subjPath, err := p.store.Resolve(artifacts.Subject, artifacts.SubjectInput, subjectID)
	if err != nil {
		return nil, err
	}
	if !p.store.Exists(subjPath) {
		return nil, fmt.Errorf("%w: %s", ErrMissingSubjectInput, subjPath)
	}
	in, err := subject.Load(subjPath)
	if err != nil {
		return nil, err
	}
	log := p.log.With().Str("subject", in.Address).Logger()

	var results []StageResult
	fail := func(stage string, err error) ([]StageResult, error) {
		results = append(results, failedStage(stage, err))
		return results, fmt.Errorf("%s: %w", stage, err)
	}

	compiled := p.sharedPath(artifacts.CompiledCircuit)
	settings := p.sharedPath(artifacts.Settings)
	pk := p.sharedPath(artifacts.ProvingKey)
	vk := p.sharedPath(artifacts.VerificationKey)
	srs := p.sharedPath(artifacts.SRS)

	inputPath := p.subjectPath(subjectID, artifacts.CircuitInput)
	log.Info().Msg("preparing circuit input")
	if err := p.store.EnsureDir(inputPath); err != nil {
		return fail("prepare-input", err)
	}
	if err := subject.WriteCircuitInput(in, inputPath); err != nil {
		return fail("prepare-input", err)
	}
	results = append(results, succeededStage("prepare-input", inputPath))

	witness := p.subjectPath(subjectID, artifacts.Witness)
	log.Info().Msg("generating witness")
	if err := p.prover.GenWitness(ctx, inputPath, compiled, witness); err != nil {
		return fail("gen-witness", err)
	}
	results = append(results, succeededStage("gen-witness", witness))

	proof := p.subjectPath(subjectID, artifacts.Proof)
	log.Info().Msg("generating proof")
	if err := p.prover.Prove(ctx, witness, compiled, pk, srs, proof); err != nil {
		return fail("prove", err)
	}
	results = append(results, succeededStage("prove", proof))

	// Stage the verification key and settings into the subject's scope so a
	// later verification needs nothing from the shared location.
	vkCopy := p.subjectPath(subjectID, artifacts.VerificationKey)
	settingsCopy := p.subjectPath(subjectID, artifacts.Settings)
	log.Info().Msg("staging verification artifacts")
	if err := p.store.Copy(vk, vkCopy); err != nil {
		return fail("stage-artifacts", err)
	}
	if err := p.store.Copy(settings, settingsCopy); err != nil {
		return fail("stage-artifacts", err)
	}
	results = append(results, succeededStage("stage-artifacts", vkCopy, settingsCopy))

	log.Info().Msg("verifying proof locally")
	if err := p.prover.Verify(ctx, proof, vkCopy, srs, settingsCopy); err != nil {
		// The proof stays on disk for forensic replay.
		verr := &VerificationError{Subject: in.Address, Err: err}
		results = append(results, failedStage("verify", verr))
		return results, verr
	}
	results = append(results, succeededStage("verify"))

	if withContract {
		sol := p.subjectPath(subjectID, artifacts.VerifierContract)
		calldata := p.subjectPath(subjectID, artifacts.Calldata)
		if err := p.store.EnsureDir(sol); err != nil {
			return fail("create-evm-verifier", err)
		}
		log.Info().Msg("generating EVM verifier contract")
		if err := p.prover.CreateEVMVerifier(ctx, settingsCopy, vkCopy, srs, sol); err != nil {
			return fail("create-evm-verifier", err)
		}
		log.Info().Msg("encoding calldata")
		if err := p.prover.EncodeCalldata(ctx, proof, calldata); err != nil {
			return fail("encode-evm-calldata", err)
		}
		results = append(results, succeededStage("evm-verifier", sol, calldata))
	}

	results = append(results, p.reconcile(in, log))
	return results, nil
}

// reconcile records proof metadata and compares the committed score with the
// plaintext one. Best-effort: whatever happens here, the run stays successful.
func (p *SubjectPipeline) reconcile(in subject.Input, log zerolog.Logger) StageResult {
	md, err := registry.Write(p.store, in, p.reconciler.Scale, log)
	if err != nil {
		log.Warn().Err(err).Msg("proof metadata not recorded, reconciliation skipped")
		return skippedStage("reconcile-score", err.Error())
	}

	cmp, err := p.reconciler.Reconcile(in.Score, md)
	if errors.Is(err, score.ErrScoreUnavailable) {
		log.Info().Msg("metadata carries no scaled score, reconciliation skipped")
		return skippedStage("reconcile-score", "no scaled score in metadata")
	}
	if err != nil {
		log.Warn().Err(err).Msg("reconciliation skipped")
		return skippedStage("reconcile-score", err.Error())
	}

	ev := log.Info()
	if cmp.Discrepancy {
		ev = log.Warn()
	}
	ev.Float64("plaintext", cmp.Plaintext).
		Int64("scaled", cmp.Scaled).
		Float64("normalized", cmp.Normalized).
		Bool("discrepancy", cmp.Discrepancy).
		Msg("score reconciliation")
	return succeededStage("reconcile-score")
}

func (p *SubjectPipeline) sharedPath(name artifacts.Name) string {
	path, _ := p.store.Resolve(artifacts.Shared, name, "")
	return path
}

func (p *SubjectPipeline) subjectPath(subjectID string, name artifacts.Name) string {
	path, _ := p.store.Resolve(artifacts.Subject, name, subjectID)
	return path
}
