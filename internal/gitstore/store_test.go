package gitstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{
		RepoPath:      filepath.Join(t.TempDir(), "repo"),
		DefaultBranch: "main",
		AuthorName:    "tester",
		AuthorEmail:   "tester@localhost",
	})
	require.NoError(t, err)
	return s
}

func TestCommitRoundTrip(t *testing.T) {
	s := newStore(t)

	res, err := s.Commit("wf-1", `{"nodes":[]}`, CommitOptions{Message: "initial"})
	require.NoError(t, err)
	assert.Len(t, res.Hash, 40)
	assert.Equal(t, res.Hash[:7], res.ShortHash)
	assert.Equal(t, "main", res.Branch)
	assert.Equal(t, "initial", res.Message)

	content, err := s.GetWorkflowAtCommit("wf-1", res.Hash)
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[]}`, content)

	// HEAD resolves to the same definition.
	content, err = s.GetWorkflowAtCommit("wf-1", "")
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[]}`, content)
}

func TestCommitDefaultsMessage(t *testing.T) {
	s := newStore(t)

	res, err := s.Commit("wf-1", "{}", CommitOptions{})
	require.NoError(t, err)
	assert.Contains(t, res.Message, "wf-1")
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	s := newStore(t)

	first, err := s.Commit("wf-1", `{"v":1}`, CommitOptions{Message: "v1"})
	require.NoError(t, err)
	second, err := s.Commit("wf-1", `{"v":2}`, CommitOptions{Message: "v2"})
	require.NoError(t, err)
	third, err := s.Commit("wf-1", `{"v":3}`, CommitOptions{Message: "v3"})
	require.NoError(t, err)

	history, err := s.History("wf-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, third.Hash, history[0].Hash)
	assert.Equal(t, second.Hash, history[1].Hash)
	assert.Equal(t, first.Hash, history[2].Hash)
	assert.Equal(t, "tester", history[0].Author)

	limited, err := s.History("wf-1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, third.Hash, limited[0].Hash)
}

func TestHistoryIgnoresOtherWorkflows(t *testing.T) {
	s := newStore(t)

	_, err := s.Commit("wf-1", "{}", CommitOptions{Message: "one"})
	require.NoError(t, err)
	_, err = s.Commit("wf-2", "{}", CommitOptions{Message: "two"})
	require.NoError(t, err)

	history, err := s.History("wf-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Message, "one")

	none, err := s.History("wf-3", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetWorkflowAtCommitErrors(t *testing.T) {
	s := newStore(t)

	res, err := s.Commit("wf-1", "{}", CommitOptions{Message: "v1"})
	require.NoError(t, err)

	_, err = s.GetWorkflowAtCommit("wf-1", "deadbeef")
	assert.ErrorIs(t, err, ErrCommitNotFound)

	_, err = s.GetWorkflowAtCommit("missing", res.Hash)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDiffBetweenRevisions(t *testing.T) {
	s := newStore(t)

	first, err := s.Commit("wf-1", `{"name":"old"}`, CommitOptions{Message: "v1"})
	require.NoError(t, err)
	second, err := s.Commit("wf-1", `{"name":"new"}`, CommitOptions{Message: "v2"})
	require.NoError(t, err)

	diff, err := s.Diff("wf-1", first.Hash, second.Hash)
	require.NoError(t, err)
	assert.NotEmpty(t, diff)

	same, err := s.Diff("wf-1", second.Hash, "")
	require.NoError(t, err)
	assert.Empty(t, same)
}

func TestRollbackRestoresContent(t *testing.T) {
	s := newStore(t)

	first, err := s.Commit("wf-1", `{"v":1}`, CommitOptions{Message: "v1"})
	require.NoError(t, err)
	_, err = s.Commit("wf-1", `{"v":2}`, CommitOptions{Message: "v2"})
	require.NoError(t, err)

	content, err := s.Rollback("wf-1", first.Hash)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, content)

	// History is append-only: committing the restored content adds an entry
	// instead of rewriting anything.
	res, err := s.Commit("wf-1", content, CommitOptions{Message: "rollback to v1"})
	require.NoError(t, err)

	history, err := s.History("wf-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, res.Hash, history[0].Hash)
}

func TestBranchLifecycle(t *testing.T) {
	s := newStore(t)

	_, err := s.Commit("wf-1", "{}", CommitOptions{Message: "base"})
	require.NoError(t, err)

	require.NoError(t, s.CreateOrCheckoutBranch("feature/test"))
	current, err := s.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "feature/test", current)

	branches, err := s.ListBranches()
	require.NoError(t, err)
	assert.Contains(t, branches, "main")
	assert.Contains(t, branches, "feature/test")

	// The checked-out branch cannot be deleted.
	assert.ErrorIs(t, s.DeleteBranch("feature/test", false), ErrDeleteCurrentBranch)

	require.NoError(t, s.CreateOrCheckoutBranch("main"))
	require.NoError(t, s.DeleteBranch("feature/test", false))

	branches, err = s.ListBranches()
	require.NoError(t, err)
	assert.NotContains(t, branches, "feature/test")

	assert.ErrorIs(t, s.DeleteBranch("feature/test", false), ErrBranchNotFound)
}

func TestDeleteUnmergedBranchNeedsForce(t *testing.T) {
	s := newStore(t)

	_, err := s.Commit("wf-1", `{"v":1}`, CommitOptions{Message: "base"})
	require.NoError(t, err)

	_, err = s.Commit("wf-1", `{"v":2}`, CommitOptions{Message: "wip", Branch: "wip"})
	require.NoError(t, err)

	require.NoError(t, s.CreateOrCheckoutBranch("main"))

	assert.ErrorIs(t, s.DeleteBranch("wip", false), ErrBranchNotMerged)
	require.NoError(t, s.DeleteBranch("wip", true))
}

func TestMergeFastForward(t *testing.T) {
	s := newStore(t)

	_, err := s.Commit("wf-1", `{"v":1}`, CommitOptions{Message: "base"})
	require.NoError(t, err)

	featureHead, err := s.Commit("wf-1", `{"v":2}`, CommitOptions{Message: "feature work", Branch: "feature"})
	require.NoError(t, err)

	require.NoError(t, s.Merge("feature", "main"))

	require.NoError(t, s.CreateOrCheckoutBranch("main"))
	content, err := s.GetWorkflowAtCommit("wf-1", "main")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, content)

	history, err := s.History("wf-1", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, featureHead.Hash, history[0].Hash)
}

func TestMergeRefusesDivergedBranches(t *testing.T) {
	s := newStore(t)

	_, err := s.Commit("wf-1", `{"v":1}`, CommitOptions{Message: "base"})
	require.NoError(t, err)

	_, err = s.Commit("wf-1", `{"v":2}`, CommitOptions{Message: "feature work", Branch: "feature"})
	require.NoError(t, err)

	// Diverge main with its own commit.
	_, err = s.Commit("wf-1", `{"v":3}`, CommitOptions{Message: "hotfix", Branch: "main"})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Merge("feature", "main"), ErrMergeNotFastForward)
	assert.ErrorIs(t, s.Merge("ghost", "main"), ErrBranchNotFound)
}

func TestTags(t *testing.T) {
	s := newStore(t)

	res, err := s.Commit("wf-1", "{}", CommitOptions{Message: "base"})
	require.NoError(t, err)

	require.NoError(t, s.CreateTag("v1.0.0", "first release", ""))
	require.NoError(t, s.CreateTag("lightweight", "", res.Hash))

	tags, err := s.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 2)

	names := []string{tags[0].Name, tags[1].Name}
	assert.Contains(t, names, "v1.0.0")
	assert.Contains(t, names, "lightweight")
}
