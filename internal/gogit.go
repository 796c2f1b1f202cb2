package internal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// GitStore adapts a go-git repository to the CommitSource, CommitWriter and
// RefStore interfaces. Writes only ever add objects; existing history stays
// reachable by its original ids.
type GitStore struct {
	repo *git.Repository
}

func NewGitStore(repo *git.Repository) *GitStore {
	return &GitStore{repo: repo}
}

// OpenGitStore opens the repository at or above path. Bare repositories are
// opened directly through their object database.
func OpenGitStore(path string) (*GitStore, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		return &GitStore{repo: repo}, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	fs := osfs.New(path)
	st := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	repo, err = git.Open(st, nil)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &GitStore{repo: repo}, nil
}

func (s *GitStore) Commit(ctx context.Context, hash plumbing.Hash) (*Commit, error) {
	c, err := s.repo.CommitObject(hash)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}
	return toCommit(c), nil
}

// WriteCommit encodes the commit into the object database and returns its
// content-derived hash. Writing an object that already exists is a no-op.
func (s *GitStore) WriteCommit(ctx context.Context, c *Commit) (plumbing.Hash, error) {
	commit := &object.Commit{
		Author:       c.Author,
		Committer:    c.Committer,
		Message:      c.Message,
		TreeHash:     c.Tree,
		ParentHashes: c.Parents,
	}

	obj := s.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode commit: %w", err)
	}

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store commit: %w", err)
	}
	return hash, nil
}

// ResolveRef resolves a revision (branch name, full ref, hash, HEAD) to a
// commit hash.
func (s *GitStore) ResolveRef(ctx context.Context, ref string) (plumbing.Hash, error) {
	resolved, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve %q: %w", ref, err)
	}
	return *resolved, nil
}

// Head returns the current HEAD ref name and hash.
func (s *GitStore) Head(ctx context.Context) (string, plumbing.Hash, error) {
	head, err := s.repo.Head()
	if err != nil {
		return "", plumbing.ZeroHash, fmt.Errorf("get HEAD: %w", err)
	}
	return head.Name().String(), head.Hash(), nil
}

// PublishRef points ref at updated, but only while its current value still
// equals expected. On any mismatch it returns a ConflictError and leaves the
// ref untouched.
func (s *GitStore) PublishRef(ctx context.Context, ref string, expected, updated plumbing.Hash) error {
	name := refName(ref)

	current, err := s.repo.Reference(name, false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return &ConflictError{Ref: name.String(), Expected: expected, Actual: plumbing.ZeroHash}
	}
	if err != nil {
		return fmt.Errorf("read ref %s: %w", name, err)
	}
	if current.Hash() != expected {
		return &ConflictError{Ref: name.String(), Expected: expected, Actual: current.Hash()}
	}

	old := plumbing.NewHashReference(name, expected)
	next := plumbing.NewHashReference(name, updated)

	if err := s.repo.Storer.CheckAndSetReference(next, old); err != nil {
		if errors.Is(err, storage.ErrReferenceHasChanged) {
			actual := plumbing.ZeroHash
			if cur, rerr := s.repo.Reference(name, false); rerr == nil {
				actual = cur.Hash()
			}
			return &ConflictError{Ref: name.String(), Expected: expected, Actual: actual}
		}
		return fmt.Errorf("update ref %s: %w", name, err)
	}
	return nil
}

// RefWatchPaths returns the filesystem locations backing a ref: the loose ref
// file first, then packed-refs. Empty for repositories without a worktree.
func (s *GitStore) RefWatchPaths(ref string) []string {
	wt, err := s.repo.Worktree()
	if err != nil {
		return nil
	}
	gitDir := filepath.Join(wt.Filesystem.Root(), git.GitDirName)

	return []string{
		filepath.Join(gitDir, filepath.FromSlash(refName(ref).String())),
		filepath.Join(gitDir, "packed-refs"),
	}
}

func refName(ref string) plumbing.ReferenceName {
	if strings.HasPrefix(ref, "refs/") || ref == "HEAD" {
		return plumbing.ReferenceName(ref)
	}
	return plumbing.NewBranchReferenceName(ref)
}

func toCommit(c *object.Commit) *Commit {
	parents := make([]plumbing.Hash, len(c.ParentHashes))
	copy(parents, c.ParentHashes)

	return &Commit{
		Hash:      c.Hash,
		Tree:      c.TreeHash,
		Parents:   parents,
		Author:    c.Author,
		Committer: c.Committer,
		Message:   c.Message,
	}
}
