// Package gitstore keeps every workflow definition under source control,
// giving governance operations an auditable history independent of the
// main database.
package gitstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	// ErrCommitNotFound is returned when a revision cannot be resolved.
	ErrCommitNotFound = errors.New("commit not found")
	// ErrFileNotFound is returned when a workflow has no definition at the
	// requested revision.
	ErrFileNotFound = errors.New("workflow definition not found at revision")
	// ErrBranchNotFound is returned for operations on a missing branch.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrDeleteCurrentBranch is returned when deleting the checked-out branch.
	ErrDeleteCurrentBranch = errors.New("cannot delete the current branch")
	// ErrBranchNotMerged is returned when deleting an unmerged branch
	// without force.
	ErrBranchNotMerged = errors.New("branch is not fully merged")
	// ErrMergeNotFastForward is returned when a merge would require a
	// three-way merge, which this store does not perform.
	ErrMergeNotFastForward = errors.New("merge is not fast-forward")
)

// Options configures the store.
type Options struct {
	RepoPath      string
	DefaultBranch string
	AuthorName    string
	AuthorEmail   string
}

// CommitOptions carries per-commit metadata.
type CommitOptions struct {
	Message string
	Author  string
	Email   string
	Branch  string
}

// CommitResult describes a created commit.
type CommitResult struct {
	Hash      string `json:"hash"`
	ShortHash string `json:"shortHash"`
	Branch    string `json:"branch"`
	Message   string `json:"message"`
}

// CommitInfo describes one history entry.
type CommitInfo struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"shortHash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Date      time.Time `json:"date"`
}

// TagInfo describes one tag.
type TagInfo struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// Store is a VersionStore backed by a local git repository. Write
// operations share one mutex: concurrent commits against the same worktree
// are not safe and the expected write rate is low.
type Store struct {
	mu   sync.Mutex
	repo *git.Repository
	opts Options
}

// Open opens the repository at opts.RepoPath, initializing it when absent.
func Open(opts Options) (*Store, error) {
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = "main"
	}
	if opts.AuthorName == "" {
		opts.AuthorName = "flowpulse"
	}
	if opts.AuthorEmail == "" {
		opts.AuthorEmail = "flowpulse@localhost"
	}

	repo, err := git.PlainOpen(opts.RepoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if mkErr := os.MkdirAll(opts.RepoPath, 0o755); mkErr != nil {
			return nil, fmt.Errorf("create repo dir: %w", mkErr)
		}
		repo, err = git.PlainInitWithOptions(opts.RepoPath, &git.PlainInitOptions{
			InitOptions: git.InitOptions{
				DefaultBranch: plumbing.NewBranchReferenceName(opts.DefaultBranch),
			},
		})
	}
	if err != nil {
		return nil, fmt.Errorf("open workflow repo: %w", err)
	}

	return &Store{repo: repo, opts: opts}, nil
}

// workflowPath is the in-repo path of one workflow's definition.
func workflowPath(workflowID string) string {
	return filepath.ToSlash(filepath.Join("workflows", workflowID+".json"))
}

func (s *Store) signature(name, email string) *object.Signature {
	if name == "" {
		name = s.opts.AuthorName
	}
	if email == "" {
		email = s.opts.AuthorEmail
	}
	return &object.Signature{Name: name, Email: email, When: time.Now()}
}

// Commit writes the definition to the workflow's path and creates a commit,
// optionally on a different branch. The caller persists the matching
// WorkflowVersion row after this returns.
func (s *Store) Commit(workflowID, definition string, opts CommitOptions) (*CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Branch != "" {
		if err := s.checkoutBranch(opts.Branch, true); err != nil {
			return nil, err
		}
	}

	w, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}

	relPath := workflowPath(workflowID)
	fullPath := filepath.Join(s.opts.RepoPath, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("create workflow dir: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(definition), 0o644); err != nil {
		return nil, fmt.Errorf("write definition: %w", err)
	}
	if _, err := w.Add(relPath); err != nil {
		return nil, fmt.Errorf("stage definition: %w", err)
	}

	message := opts.Message
	if message == "" {
		message = fmt.Sprintf("update workflow %s", workflowID)
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		Author: s.signature(opts.Author, opts.Email),
		// Re-deploying an identical definition is still an auditable event.
		AllowEmptyCommits: true,
	})
	if err != nil {
		return nil, fmt.Errorf("commit definition: %w", err)
	}

	branch, err := s.currentBranchLocked()
	if err != nil {
		branch = s.opts.DefaultBranch
	}

	return &CommitResult{
		Hash:      hash.String(),
		ShortHash: hash.String()[:7],
		Branch:    branch,
		Message:   message,
	}, nil
}

// History returns up to limit commits touching the workflow's path, newest
// first. limit <= 0 means unbounded.
func (s *Store) History(workflowID string, limit int) ([]CommitInfo, error) {
	relPath := workflowPath(workflowID)
	iter, err := s.repo.Log(&git.LogOptions{
		FileName: &relPath,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []CommitInfo{}, nil
		}
		return nil, fmt.Errorf("log: %w", err)
	}
	defer iter.Close()

	var commits []CommitInfo
	for {
		if limit > 0 && len(commits) >= limit {
			break
		}
		c, err := iter.Next()
		if err != nil {
			break
		}
		commits = append(commits, CommitInfo{
			Hash:      c.Hash.String(),
			ShortHash: c.Hash.String()[:7],
			Message:   c.Message,
			Author:    c.Author.Name,
			Email:     c.Author.Email,
			Date:      c.Author.When,
		})
	}
	if commits == nil {
		commits = []CommitInfo{}
	}
	return commits, nil
}

// ListBranches returns all local branch names.
func (s *Store) ListBranches() ([]string, error) {
	iter, err := s.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("branches: %w", err)
	}
	defer iter.Close()

	var names []string
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// CurrentBranch returns the checked-out branch name.
func (s *Store) CurrentBranch() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentBranchLocked()
}

func (s *Store) currentBranchLocked() (string, error) {
	ref, err := s.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if ref.Type() == plumbing.SymbolicReference {
		return ref.Target().Short(), nil
	}
	head, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Name().Short(), nil
}

// CreateOrCheckoutBranch checks out the branch, creating it from HEAD when
// it does not exist. Checkout switches the process-wide working state.
func (s *Store) CreateOrCheckoutBranch(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutBranch(name, true)
}

func (s *Store) checkoutBranch(name string, create bool) error {
	refName := plumbing.NewBranchReferenceName(name)

	current, err := s.currentBranchLocked()
	if err == nil && current == name {
		return nil
	}

	_, refErr := s.repo.Reference(refName, true)
	exists := refErr == nil

	if !exists && !create {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}

	head, headErr := s.repo.Head()
	if headErr != nil {
		// Unborn HEAD: no commits yet, just point HEAD at the branch.
		return s.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, refName))
	}

	w, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	if !exists {
		if err := s.repo.Storer.SetReference(plumbing.NewHashReference(refName, head.Hash())); err != nil {
			return fmt.Errorf("create branch %s: %w", name, err)
		}
	}
	if err := w.Checkout(&git.CheckoutOptions{Branch: refName}); err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}
	return nil
}

// resolveCommit resolves a revision (hash, branch, tag, HEAD) to a commit.
func (s *Store) resolveCommit(rev string) (*object.Commit, error) {
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := s.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, rev)
	}
	commit, err := s.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, rev)
	}
	return commit, nil
}

// contentAt returns the workflow definition as of the given commit.
func contentAt(commit *object.Commit, workflowID string) (string, error) {
	file, err := commit.File(workflowPath(workflowID))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", fmt.Errorf("%w: workflow %s at %s", ErrFileNotFound, workflowID, commit.Hash.String()[:7])
		}
		return "", err
	}
	return file.Contents()
}

// GetWorkflowAtCommit returns the definition exactly as it existed at the
// given revision.
func (s *Store) GetWorkflowAtCommit(workflowID, rev string) (string, error) {
	commit, err := s.resolveCommit(rev)
	if err != nil {
		return "", err
	}
	return contentAt(commit, workflowID)
}

// Diff returns a textual diff of one workflow's definition between two
// revisions. revB defaults to HEAD.
func (s *Store) Diff(workflowID, revA, revB string) (string, error) {
	commitA, err := s.resolveCommit(revA)
	if err != nil {
		return "", err
	}
	if revB == "" {
		revB = "HEAD"
	}
	commitB, err := s.resolveCommit(revB)
	if err != nil {
		return "", err
	}

	contentA, err := contentAt(commitA, workflowID)
	if err != nil {
		return "", err
	}
	contentB, err := contentAt(commitB, workflowID)
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(contentA, contentB)
	return dmp.PatchToText(patches), nil
}

// Rollback restores the working copy of the workflow to the content at the
// given revision and returns it. The caller records a new hotfix version via
// Commit; history is never rewritten.
func (s *Store) Rollback(workflowID, rev string) (string, error) {
	content, err := s.GetWorkflowAtCommit(workflowID, rev)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fullPath := filepath.Join(s.opts.RepoPath, workflowPath(workflowID))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create workflow dir: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("restore definition: %w", err)
	}
	return content, nil
}

// Merge fast-forwards target to source. target defaults to the current
// branch. Non-fast-forward merges fail the whole call.
func (s *Store) Merge(source, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if target == "" {
		current, err := s.currentBranchLocked()
		if err != nil {
			return err
		}
		target = current
	}

	sourceRef, err := s.repo.Reference(plumbing.NewBranchReferenceName(source), true)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, source)
	}
	targetRefName := plumbing.NewBranchReferenceName(target)
	targetRef, err := s.repo.Reference(targetRefName, true)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, target)
	}

	sourceCommit, err := s.repo.CommitObject(sourceRef.Hash())
	if err != nil {
		return fmt.Errorf("resolve %s: %w", source, err)
	}
	targetCommit, err := s.repo.CommitObject(targetRef.Hash())
	if err != nil {
		return fmt.Errorf("resolve %s: %w", target, err)
	}

	if sourceRef.Hash() == targetRef.Hash() {
		return nil
	}

	ancestor, err := targetCommit.IsAncestor(sourceCommit)
	if err != nil {
		return fmt.Errorf("ancestry check: %w", err)
	}
	if !ancestor {
		return fmt.Errorf("%w: %s into %s", ErrMergeNotFastForward, source, target)
	}

	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(targetRefName, sourceRef.Hash())); err != nil {
		return fmt.Errorf("advance %s: %w", target, err)
	}

	// Refresh the worktree when the merged branch is checked out.
	if current, cErr := s.currentBranchLocked(); cErr == nil && current == target {
		w, wErr := s.repo.Worktree()
		if wErr != nil {
			return fmt.Errorf("worktree: %w", wErr)
		}
		if err := w.Checkout(&git.CheckoutOptions{Branch: targetRefName, Force: true}); err != nil {
			return fmt.Errorf("refresh worktree: %w", err)
		}
	}
	return nil
}

// CreateTag creates a tag at the given revision (HEAD when empty). A
// non-empty message creates an annotated tag.
func (s *Store) CreateTag(name, message, rev string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	commit, err := s.resolveCommit(rev)
	if err != nil {
		return err
	}

	var opts *git.CreateTagOptions
	if message != "" {
		opts = &git.CreateTagOptions{
			Tagger:  s.signature("", ""),
			Message: message,
		}
	}
	if _, err := s.repo.CreateTag(name, commit.Hash, opts); err != nil {
		return fmt.Errorf("create tag %s: %w", name, err)
	}
	return nil
}

// ListTags returns all tags.
func (s *Store) ListTags() ([]TagInfo, error) {
	iter, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	defer iter.Close()

	var tags []TagInfo
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, TagInfo{Name: ref.Name().Short(), Hash: ref.Hash().String()})
		return nil
	})
	if tags == nil {
		tags = []TagInfo{}
	}
	return tags, nil
}

// DeleteBranch removes a branch. Without force, an unmerged branch (its head
// not reachable from the default branch) is refused.
func (s *Store) DeleteBranch(name string, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.currentBranchLocked()
	if err == nil && current == name {
		return ErrDeleteCurrentBranch
	}

	refName := plumbing.NewBranchReferenceName(name)
	ref, err := s.repo.Reference(refName, true)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}

	if !force {
		defRef, defErr := s.repo.Reference(plumbing.NewBranchReferenceName(s.opts.DefaultBranch), true)
		if defErr == nil {
			branchCommit, bErr := s.repo.CommitObject(ref.Hash())
			defCommit, dErr := s.repo.CommitObject(defRef.Hash())
			if bErr == nil && dErr == nil {
				merged, aErr := branchCommit.IsAncestor(defCommit)
				if aErr == nil && !merged {
					return fmt.Errorf("%w: %s", ErrBranchNotMerged, name)
				}
			}
		}
	}

	if err := s.repo.Storer.RemoveReference(refName); err != nil {
		return fmt.Errorf("delete branch %s: %w", name, err)
	}
	_ = s.repo.DeleteBranch(name)
	return nil
}
