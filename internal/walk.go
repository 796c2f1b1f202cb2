package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
)

// HistoryIter is a single-pass iterator over commits in topological order:
// every commit is emitted after all of its in-range parents. It is not
// restartable; callers needing multiple passes must buffer or walk again.
type HistoryIter struct {
	commits []*Commit
	pos     int
}

// NewHistoryIter wraps an already-ordered slice of commits. The caller is
// responsible for the parents-before-children ordering.
func NewHistoryIter(commits []*Commit) *HistoryIter {
	return &HistoryIter{commits: commits}
}

func (it *HistoryIter) Next() (*Commit, error) {
	if it.pos >= len(it.commits) {
		return nil, io.EOF
	}
	c := it.commits[it.pos]
	it.pos++
	return c, nil
}

// ForEach calls fn for every remaining commit. Returning io.EOF from fn stops
// the iteration without error.
func (it *HistoryIter) ForEach(fn func(*Commit) error) error {
	for {
		c, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func (it *HistoryIter) Close() {
	it.pos = len(it.commits)
}

// Walk enumerates the ancestors of from, stopping at boundary (exclusive) or
// at root commits when boundary is zero, and returns them parents-first. Each
// commit appears exactly once however many paths lead to it. A non-zero
// boundary that is never reached means it is not an ancestor of from, which
// surfaces as ErrAmbiguousBoundary.
func Walk(ctx context.Context, src CommitSource, from, boundary plumbing.Hash) (*HistoryIter, error) {
	collected := make(map[plumbing.Hash]*Commit)
	boundarySeen := false

	pending := []plumbing.Hash{from}
	for len(pending) > 0 {
		hash := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if hash == boundary {
			boundarySeen = true
			continue
		}
		if _, ok := collected[hash]; ok {
			continue
		}

		commit, err := src.Commit(ctx, hash)
		if err != nil {
			return nil, &SourceReadError{Hash: hash, Err: err}
		}
		collected[hash] = commit
		pending = append(pending, commit.Parents...)
	}

	if !boundary.IsZero() && !boundarySeen {
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousBoundary, boundary)
	}
	if len(collected) == 0 {
		return nil, ErrEmptyRange
	}

	ordered := topoSort(collected, from)
	return &HistoryIter{commits: ordered}, nil
}

// topoSort emits the collected commits in iterative DFS postorder from the
// head, which places every parent before its children. Parent order within a
// commit is preserved, so the output is deterministic.
func topoSort(collected map[plumbing.Hash]*Commit, from plumbing.Hash) []*Commit {
	ordered := make([]*Commit, 0, len(collected))
	done := make(map[plumbing.Hash]bool, len(collected))

	type frame struct {
		commit *Commit
		next   int
	}

	head, ok := collected[from]
	if !ok {
		return ordered
	}

	stack := []frame{{commit: head}}
	onStack := map[plumbing.Hash]bool{from: true}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		advanced := false
		for top.next < len(top.commit.Parents) {
			parent := top.commit.Parents[top.next]
			top.next++

			p, inRange := collected[parent]
			if !inRange || done[parent] || onStack[parent] {
				continue
			}
			stack = append(stack, frame{commit: p})
			onStack[parent] = true
			advanced = true
			break
		}
		if advanced {
			continue
		}

		ordered = append(ordered, top.commit)
		done[top.commit.Hash] = true
		delete(onStack, top.commit.Hash)
		stack = stack[:len(stack)-1]
	}

	return ordered
}
