package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santhoshcheemala/zkcredit/artifacts"
	"github.com/santhoshcheemala/zkcredit/ezkl"
	"github.com/santhoshcheemala/zkcredit/score"
)

const testAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

func newSubjectFixture(t *testing.T) (*artifacts.Store, *spyProver, *SubjectPipeline) {
	t.Helper()
	root := t.TempDir()
	store := artifacts.NewStore(filepath.Join(root, "shared"), filepath.Join(root, "subjects"))
	spy := newSpyProver()
	rec := score.NewReconciler(1<<26, 0.005)
	return store, spy, NewSubjectPipeline(store, spy, rec, zerolog.Nop())
}

func writeSharedArtifacts(t *testing.T, store *artifacts.Store) {
	t.Helper()
	for _, name := range artifacts.SharedSet {
		path, err := store.Resolve(artifacts.Shared, name, "")
		require.NoError(t, err)
		require.NoError(t, store.EnsureDir(path))
		require.NoError(t, os.WriteFile(path, []byte(string(name)+" bytes"), 0o644))
	}
}

func writeSubjectRecord(t *testing.T, store *artifacts.Store, plaintext float64) {
	t.Helper()
	path, err := store.Resolve(artifacts.Subject, artifacts.SubjectInput, testAddr)
	require.NoError(t, err)
	require.NoError(t, store.EnsureDir(path))
	body := `{"address": "` + testAddr + `", "features": [0.8, 0.2, 0.5], "score": ` +
		strconv.FormatFloat(plaintext, 'f', -1, 64) + `}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func subjectPathFor(t *testing.T, store *artifacts.Store, name artifacts.Name) string {
	t.Helper()
	path, err := store.Resolve(artifacts.Subject, name, testAddr)
	require.NoError(t, err)
	return path
}

func TestSubjectFailsFastWhenSharedIncomplete(t *testing.T) {
	store, spy, pl := newSubjectFixture(t)
	writeSubjectRecord(t, store, 0.63)

	_, err := pl.Run(context.Background(), testAddr, false)
	var missing *MissingSharedError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Missing, len(artifacts.SharedSet))
	assert.Zero(t, spy.total(), "no engine call may happen before the precondition check")
}

func TestSubjectFailsWithoutInputRecord(t *testing.T) {
	store, spy, pl := newSubjectFixture(t)
	writeSharedArtifacts(t, store)

	_, err := pl.Run(context.Background(), testAddr, false)
	assert.ErrorIs(t, err, ErrMissingSubjectInput)
	assert.Zero(t, spy.total())
}

func TestSubjectRunWithoutContract(t *testing.T) {
	store, spy, pl := newSubjectFixture(t)
	writeSharedArtifacts(t, store)
	writeSubjectRecord(t, store, 0.63)

	results, err := pl.Run(context.Background(), testAddr, false)
	require.NoError(t, err)

	for _, name := range []artifacts.Name{
		artifacts.CircuitInput, artifacts.Witness, artifacts.Proof,
		artifacts.VerificationKey, artifacts.Settings, artifacts.Metadata,
	} {
		assert.True(t, store.Exists(subjectPathFor(t, store, name)), "expected %s", name)
	}
	assert.NoFileExists(t, subjectPathFor(t, store, artifacts.VerifierContract))
	assert.NoFileExists(t, subjectPathFor(t, store, artifacts.Calldata))
	assert.Equal(t, 0, spy.calls["create-evm-verifier"])
	assert.Equal(t, 0, spy.calls["encode-evm-calldata"])
	assert.Equal(t, 1, spy.calls["verify"])

	// Reconciliation succeeded: committed 0.63 matches the plaintext 0.63.
	last := results[len(results)-1]
	assert.Equal(t, "reconcile-score", last.Stage)
	assert.Equal(t, StageSuccess, last.Status)
}

func TestSubjectRunWithContract(t *testing.T) {
	store, spy, pl := newSubjectFixture(t)
	writeSharedArtifacts(t, store)
	writeSubjectRecord(t, store, 0.63)

	_, err := pl.Run(context.Background(), testAddr, true)
	require.NoError(t, err)

	assert.FileExists(t, subjectPathFor(t, store, artifacts.VerifierContract))
	assert.FileExists(t, subjectPathFor(t, store, artifacts.Calldata))
	assert.Equal(t, 1, spy.calls["create-evm-verifier"])
	assert.Equal(t, 1, spy.calls["encode-evm-calldata"])
}

func TestSubjectVerificationFailureRetainsProof(t *testing.T) {
	store, spy, pl := newSubjectFixture(t)
	writeSharedArtifacts(t, store)
	writeSubjectRecord(t, store, 0.63)
	spy.failOn = "verify"
	spy.failErr = &ezkl.ToolError{Stage: "verify", ExitCode: 1, Stderr: "proof invalid"}

	results, err := pl.Run(context.Background(), testAddr, true)
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)

	// The proof file survives for forensic replay.
	assert.FileExists(t, subjectPathFor(t, store, artifacts.Proof))
	// Nothing after verification runs.
	assert.Equal(t, 0, spy.calls["create-evm-verifier"])
	require.NotEmpty(t, results)
	assert.Equal(t, StageFailed, results[len(results)-1].Status)
}

func TestSubjectStopsAtFirstFailure(t *testing.T) {
	store, spy, pl := newSubjectFixture(t)
	writeSharedArtifacts(t, store)
	writeSubjectRecord(t, store, 0.63)
	spy.failOn = "prove"
	spy.failErr = &ezkl.ToolError{Stage: "prove", ExitCode: 2, Stderr: "out of memory"}

	_, err := pl.Run(context.Background(), testAddr, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prove")

	assert.Equal(t, 0, spy.calls["verify"])
	assert.NoFileExists(t, subjectPathFor(t, store, artifacts.VerificationKey))
	// The witness from the completed stage is retained.
	assert.FileExists(t, subjectPathFor(t, store, artifacts.Witness))
}

func TestSubjectReconciliationSkipIsNotFailure(t *testing.T) {
	store, spy, pl := newSubjectFixture(t)
	writeSharedArtifacts(t, store)
	writeSubjectRecord(t, store, 0.63)
	spy.witnessBody = `{}` // no readable output in the witness

	results, err := pl.Run(context.Background(), testAddr, false)
	require.NoError(t, err, "a skipped reconciliation must not fail the run")

	last := results[len(results)-1]
	assert.Equal(t, "reconcile-score", last.Stage)
	assert.Equal(t, StageSkipped, last.Status)
}
