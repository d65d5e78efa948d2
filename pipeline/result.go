package pipeline

// StageStatus is the outcome of a single pipeline stage.
type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageFailed  StageStatus = "failed"
	StageSkipped StageStatus = "skipped"
)

// StageResult records one stage's outcome for reporting. Held only for the
// duration of a run.
type StageResult struct {
	Stage     string
	Status    StageStatus
	Message   string
	Artifacts []string
}

func succeededStage(stage string, produced ...string) StageResult {
	return StageResult{Stage: stage, Status: StageSuccess, Artifacts: produced}
}

func failedStage(stage string, err error) StageResult {
	return StageResult{Stage: stage, Status: StageFailed, Message: err.Error()}
}

func skippedStage(stage, why string) StageResult {
	return StageResult{Stage: stage, Status: StageSkipped, Message: why}
}
