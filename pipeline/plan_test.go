package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santhoshcheemala/zkcredit/artifacts"
)

func planStep(t *testing.T, steps []PlanStep, stage string) PlanStep {
	t.Helper()
	for _, s := range steps {
		if s.Stage == stage {
			return s
		}
	}
	t.Fatalf("no plan step %q", stage)
	return PlanStep{}
}

func TestBuildPlanFreshTree(t *testing.T) {
	root := t.TempDir()
	store := artifacts.NewStore(filepath.Join(root, "shared"), filepath.Join(root, "subjects"))

	plan := BuildPlan(store, "")
	require.Len(t, plan.Common, 3)
	for _, s := range plan.Common {
		assert.False(t, s.Done, "stage %s must be pending", s.Stage)
	}
	assert.Empty(t, plan.Subject)
}

func TestBuildPlanReflectsArtifacts(t *testing.T) {
	root := t.TempDir()
	store := artifacts.NewStore(filepath.Join(root, "shared"), filepath.Join(root, "subjects"))
	writeSharedArtifacts(t, store)

	witness, err := store.Resolve(artifacts.Subject, artifacts.Witness, testAddr)
	require.NoError(t, err)
	require.NoError(t, store.EnsureDir(witness))
	require.NoError(t, os.WriteFile(witness, []byte("{}"), 0o644))

	plan := BuildPlan(store, testAddr)
	for _, s := range plan.Common {
		assert.True(t, s.Done, "stage %s must be done", s.Stage)
	}
	assert.True(t, planStep(t, plan.Subject, "gen-witness").Done)
	assert.False(t, planStep(t, plan.Subject, "prove").Done)
	assert.False(t, planStep(t, plan.Subject, "evm-verifier").Done)
}
