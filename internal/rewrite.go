package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RewriteResult is the outcome of one rewrite pass. Remap holds old id to new
// id for every walked commit; Head is the new id of the walked range's head.
type RewriteResult struct {
	Remap     map[plumbing.Hash]plumbing.Hash
	Head      plumbing.Hash
	Rewritten int
	Unchanged int
}

// Rewriter recreates commits with a trailer appended to their messages. Trees
// and author signatures are carried over untouched; committer name and email
// are preserved with the timestamp set to the rewrite time.
type Rewriter struct {
	writer CommitWriter
	now    func() time.Time
}

func NewRewriter(writer CommitWriter, now func() time.Time) *Rewriter {
	if now == nil {
		now = time.Now
	}
	return &Rewriter{writer: writer, now: now}
}

// Rewrite consumes commits in topological order and rebuilds the history.
// Parent ids are substituted through the remapping table as it grows; a
// parent outside the walked range (at or behind the boundary) keeps its
// original id. A commit whose message already carries the trailer and whose
// parents are all unchanged keeps its original id, so re-running a rewrite
// over already-rewritten history is a no-op.
func (r *Rewriter) Rewrite(ctx context.Context, iter *HistoryIter, key, value string) (*RewriteResult, error) {
	result := &RewriteResult{
		Remap: make(map[plumbing.Hash]plumbing.Hash),
	}

	err := iter.ForEach(func(c *Commit) error {
		parents := make([]plumbing.Hash, len(c.Parents))
		parentsChanged := false
		for i, p := range c.Parents {
			if np, ok := result.Remap[p]; ok && np != p {
				parents[i] = np
				parentsChanged = true
			} else {
				parents[i] = p
			}
		}

		message := AppendTrailer(c.Message, key, value)
		if message == c.Message {
			result.Unchanged++
			if !parentsChanged {
				result.Remap[c.Hash] = c.Hash
				result.Head = c.Hash
				return nil
			}
		} else {
			result.Rewritten++
		}

		rewritten := &Commit{
			Tree:    c.Tree,
			Parents: parents,
			Author:  c.Author,
			Committer: object.Signature{
				Name:  c.Committer.Name,
				Email: c.Committer.Email,
				When:  r.now(),
			},
			Message: message,
		}

		hash, err := r.writer.WriteCommit(ctx, rewritten)
		if err != nil {
			return fmt.Errorf("write commit for %s: %w", c.Hash, err)
		}
		rewritten.Hash = hash

		result.Remap[c.Hash] = hash
		result.Head = hash
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Remap) == 0 {
		return nil, ErrEmptyRange
	}

	return result, nil
}
