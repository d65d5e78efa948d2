package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/santhoshcheemala/zkcredit/artifacts"
	"github.com/santhoshcheemala/zkcredit/config"
	"github.com/santhoshcheemala/zkcredit/score"
)

// Orchestrator is the only component aware of both pipeline phases. It
// validates the invocation before any stage runs and dispatches to exactly
// one phase per call.
type Orchestrator struct {
	cfg    config.Config
	store  *artifacts.Store
	prover Prover
	log    zerolog.Logger
}

// New builds an orchestrator over the configured artifact roots. Every run
// through it is stamped with a fresh run id for log correlation.
func New(cfg config.Config, prover Prover, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		store:  artifacts.NewStore(cfg.SharedDir, cfg.SubjectsDir),
		prover: prover,
		log:    log.With().Str("run", uuid.NewString()).Logger(),
	}
}

// Store exposes the artifact store for read-only inspection (plan command).
func (o *Orchestrator) Store() *artifacts.Store { return o.store }

// SetupCommon runs the one-time circuit phase. It never also runs a
// per-subject phase in the same invocation.
func (o *Orchestrator) SetupCommon(ctx context.Context, modelPath, calibrationData string) error {
	if modelPath == "" {
		return errors.New("model path is required for common setup")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return fmt.Errorf("model file: %w", err)
	}
	if calibrationData != "" {
		if _, err := os.Stat(calibrationData); err != nil {
			return fmt.Errorf("calibration data: %w", err)
		}
	}

	builder := NewCommonBuilder(o.store, o.prover, o.log)
	results, err := builder.Run(ctx, modelPath, calibrationData)
	o.report(results)
	return err
}

// GenerateForSubject runs the per-subject phase for one address.
func (o *Orchestrator) GenerateForSubject(ctx context.Context, subjectID string, withContract bool) error {
	if subjectID == "" {
		return errors.New("subject address is required")
	}
	if !common.IsHexAddress(subjectID) {
		return fmt.Errorf("%q is not a valid subject address", subjectID)
	}

	rec := score.NewReconciler(o.cfg.ScoreScale, o.cfg.ScoreTolerance)
	pl := NewSubjectPipeline(o.store, o.prover, rec, o.log)
	results, err := pl.Run(ctx, subjectID, withContract)
	o.report(results)
	return err
}

func (o *Orchestrator) report(results []StageResult) {
	for _, r := range results {
		ev := o.log.Info()
		if r.Status == StageFailed {
			ev = o.log.Error()
		}
		ev.Str("stage", r.Stage).Str("status", string(r.Status))
		if r.Message != "" {
			ev.Str("detail", r.Message)
		}
		if len(r.Artifacts) > 0 {
			ev.Strs("artifacts", r.Artifacts)
		}
		ev.Msg("stage result")
	}
}
