package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/santhoshcheemala/zkcredit/artifacts"
)

// CommonBuilder drives the one-time circuit phase: settings, compiled
// circuit, reference string and key pair. Every step is gated on the presence
// of its output artifacts, so rerunning after a crash resumes at the first
// incomplete step and a fully-built phase is a no-op. Failed steps leave
// whatever the engine already wrote on disk for inspection.
type CommonBuilder struct {
	store  *artifacts.Store
	prover Prover
	log    zerolog.Logger
}

func NewCommonBuilder(store *artifacts.Store, prover Prover, log zerolog.Logger) *CommonBuilder {
	return &CommonBuilder{
		store:  store,
		prover: prover,
		log:    log.With().Str("phase", "common").Logger(),
	}
}

// Run executes the common phase for the given model. calibrationData may be
// empty, in which case the generated settings stand uncalibrated.
func (b *CommonBuilder) Run(ctx context.Context, modelPath, calibrationData string) ([]StageResult, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	var results []StageResult
	fail := func(stage string, err error) ([]StageResult, error) {
		results = append(results, failedStage(stage, err))
		return results, fmt.Errorf("%s: %w", stage, err)
	}

	compiled := b.path(artifacts.CompiledCircuit)
	settings := b.path(artifacts.Settings)
	if b.store.Exists(compiled) && b.store.Exists(settings) {
		b.log.Info().Msg("compiled circuit and settings already present, skipping compile")
		results = append(results, skippedStage("compile-circuit", "outputs already present"))
	} else {
		if err := b.store.EnsureDir(settings); err != nil {
			return fail("compile-circuit", err)
		}
		b.log.Info().Str("model", modelPath).Msg("generating circuit settings")
		if err := b.prover.GenSettings(ctx, modelPath, settings); err != nil {
			return fail("gen-settings", err)
		}
		if calibrationData != "" {
			b.log.Info().Str("data", calibrationData).Msg("calibrating settings")
			if err := b.prover.CalibrateSettings(ctx, modelPath, calibrationData, settings); err != nil {
				return fail("calibrate-settings", err)
			}
		}
		b.log.Info().Msg("compiling model to circuit")
		if err := b.prover.CompileCircuit(ctx, modelPath, settings, compiled); err != nil {
			return fail("compile-circuit", err)
		}
		results = append(results, succeededStage("compile-circuit", compiled, settings))
	}

	srs := b.path(artifacts.SRS)
	if b.store.Exists(srs) {
		b.log.Info().Msg("reference string already present, skipping download")
		results = append(results, skippedStage("get-srs", "reference string already present"))
	} else {
		b.log.Info().Msg("downloading reference string, this may take a while")
		if err := b.prover.GetSRS(ctx, settings, srs); err != nil {
			return fail("get-srs", err)
		}
		results = append(results, succeededStage("get-srs", srs))
	}

	pk := b.path(artifacts.ProvingKey)
	vk := b.path(artifacts.VerificationKey)
	if b.store.Exists(pk) && b.store.Exists(vk) {
		b.log.Info().Msg("key pair already present, skipping setup")
		results = append(results, skippedStage("setup", "proving and verification keys already present"))
	} else {
		b.log.Info().Msg("running setup to derive key pair")
		if err := b.prover.Setup(ctx, compiled, srs, pk, vk); err != nil {
			return fail("setup", err)
		}
		results = append(results, succeededStage("setup", pk, vk))
	}

	b.log.Info().Msg("common circuit phase complete")
	return results, nil
}

func (b *CommonBuilder) path(name artifacts.Name) string {
	p, _ := b.store.Resolve(artifacts.Shared, name, "")
	return p
}
