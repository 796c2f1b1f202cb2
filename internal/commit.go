package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	ErrNotFound          = errors.New("commit not found")
	ErrAmbiguousBoundary = errors.New("boundary is not an ancestor of the starting ref")
	ErrMalformedTrailer  = errors.New("malformed trailer")
	ErrEmptyRange        = errors.New("no commits in range")
)

// Commit is one historical commit: content tree, parent edges, authorship and
// message. The hash is derived from the other fields, so two commits with
// identical content have identical hashes.
type Commit struct {
	Hash      plumbing.Hash
	Tree      plumbing.Hash
	Parents   []plumbing.Hash
	Author    object.Signature
	Committer object.Signature
	Message   string
}

// SourceReadError marks a commit whose content could not be read. A read
// failure aborts the whole rewrite: a remapping table covering only part of a
// history is not safely publishable.
type SourceReadError struct {
	Hash plumbing.Hash
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read commit %s: %v", e.Hash, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// ConflictError reports that a ref moved between the initial read and the
// publish attempt. The ref is left untouched.
type ConflictError struct {
	Ref      string
	Expected plumbing.Hash
	Actual   plumbing.Hash
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ref %s moved: expected %s, found %s", e.Ref, e.Expected, e.Actual)
}

type CommitSource interface {
	Commit(ctx context.Context, hash plumbing.Hash) (*Commit, error)
}

type CommitWriter interface {
	WriteCommit(ctx context.Context, c *Commit) (plumbing.Hash, error)
}

type RefStore interface {
	ResolveRef(ctx context.Context, ref string) (plumbing.Hash, error)
	PublishRef(ctx context.Context, ref string, expected, updated plumbing.Hash) error
}
