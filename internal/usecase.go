package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"go.uber.org/zap"
)

// Use case input/output DTOs

type RewriteInput struct {
	Repo   string
	Ref    string
	Root   string
	Key    string
	Value  string
	DryRun bool
}

type MessageChange struct {
	Hash    string `json:"hash"`
	Subject string `json:"subject"`
	Diff    string `json:"diff"`
}

type RewriteOutput struct {
	Ref       string          `json:"ref"`
	OldHead   string          `json:"old_head"`
	NewHead   string          `json:"new_head"`
	Rewritten int             `json:"rewritten"`
	Unchanged int             `json:"unchanged"`
	Published bool            `json:"published"`
	Changes   []MessageChange `json:"changes,omitempty"`
}

type CheckInput struct {
	Repo  string
	Ref   string
	Root  string
	Key   string
	Value string
}

type CheckEntry struct {
	Hash       string `json:"hash"`
	Subject    string `json:"subject"`
	HasTrailer bool   `json:"has_trailer"`
}

type CheckOutput struct {
	Present int          `json:"present"`
	Missing int          `json:"missing"`
	Entries []CheckEntry `json:"entries"`
}

type LogInput struct {
	Repo  string
	Ref   string
	Limit int
	Key   string
	Value string
}

type LogEntry struct {
	Hash       string    `json:"hash"`
	Subject    string    `json:"subject"`
	Author     string    `json:"author"`
	Timestamp  time.Time `json:"timestamp"`
	HasTrailer bool      `json:"has_trailer"`
	Trailers   []string  `json:"trailers,omitempty"`
}

type LogOutput struct {
	Commits []LogEntry `json:"commits"`
}

// Use cases

type RewriteUseCase struct {
	storeFor func(string) (*GitStore, error)
	logger   *zap.Logger
	now      func() time.Time
}

func NewRewriteUseCase(
	storeFor func(string) (*GitStore, error),
	logger *zap.Logger,
	now func() time.Time,
) *RewriteUseCase {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RewriteUseCase{storeFor: storeFor, logger: logger, now: now}
}

// Execute runs one all-or-nothing rewrite pass: validate the trailer, capture
// the ref's current value, walk the range, rebuild the commits and publish
// the new head with compare-and-swap. The ref is left untouched on every
// failure path, and a dry run writes nothing durable at all.
func (uc *RewriteUseCase) Execute(ctx context.Context, input RewriteInput) (*RewriteOutput, error) {
	if err := ValidateTrailer(input.Key, input.Value); err != nil {
		return nil, err
	}

	store, err := uc.storeFor(input.Repo)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	refName, expected, err := resolveTarget(ctx, store, input.Ref)
	if err != nil {
		return nil, err
	}

	boundary := plumbing.ZeroHash
	if input.Root != "" {
		boundary, err = store.ResolveRef(ctx, input.Root)
		if err != nil {
			return nil, err
		}
	}

	iter, err := Walk(ctx, store, expected, boundary)
	if err != nil {
		return nil, err
	}

	if input.DryRun {
		return uc.dryRun(ctx, iter, refName, expected, input)
	}

	rewriter := NewRewriter(store, uc.now)
	result, err := rewriter.Rewrite(ctx, iter, input.Key, input.Value)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("rewrite pass complete",
		zap.String("ref", refName),
		zap.Int("rewritten", result.Rewritten),
		zap.Int("unchanged", result.Unchanged),
	)

	out := &RewriteOutput{
		Ref:       refName,
		OldHead:   expected.String(),
		NewHead:   result.Head.String(),
		Rewritten: result.Rewritten,
		Unchanged: result.Unchanged,
	}

	if result.Head == expected {
		return out, nil
	}

	if err := store.PublishRef(ctx, refName, expected, result.Head); err != nil {
		return nil, err
	}
	out.Published = true

	uc.logger.Debug("ref published",
		zap.String("ref", refName),
		zap.String("old", expected.String()),
		zap.String("new", result.Head.String()),
	)

	return out, nil
}

// dryRun replays the rewrite against a throwaway in-memory object store and
// reports the per-commit message diffs. Nothing touches the real repository.
func (uc *RewriteUseCase) dryRun(ctx context.Context, iter *HistoryIter, refName string, expected plumbing.Hash, input RewriteInput) (*RewriteOutput, error) {
	var commits []*Commit
	if err := iter.ForEach(func(c *Commit) error {
		commits = append(commits, c)
		return nil
	}); err != nil {
		return nil, err
	}

	scratch, err := newScratchStore()
	if err != nil {
		return nil, err
	}

	rewriter := NewRewriter(scratch, uc.now)
	result, err := rewriter.Rewrite(ctx, NewHistoryIter(commits), input.Key, input.Value)
	if err != nil {
		return nil, err
	}

	out := &RewriteOutput{
		Ref:       refName,
		OldHead:   expected.String(),
		NewHead:   result.Head.String(),
		Rewritten: result.Rewritten,
		Unchanged: result.Unchanged,
	}

	for _, c := range commits {
		diff := MessageDiff(c.Message, AppendTrailer(c.Message, input.Key, input.Value))
		if diff == "" {
			continue
		}
		out.Changes = append(out.Changes, MessageChange{
			Hash:    c.Hash.String(),
			Subject: subjectLine(c.Message),
			Diff:    diff,
		})
	}

	return out, nil
}

type CheckUseCase struct {
	storeFor func(string) (*GitStore, error)
	logger   *zap.Logger
}

func NewCheckUseCase(storeFor func(string) (*GitStore, error), logger *zap.Logger) *CheckUseCase {
	return &CheckUseCase{storeFor: storeFor, logger: logger}
}

// Execute audits trailer presence over the range without writing anything.
func (uc *CheckUseCase) Execute(ctx context.Context, input CheckInput) (*CheckOutput, error) {
	if err := ValidateTrailer(input.Key, input.Value); err != nil {
		return nil, err
	}

	store, err := uc.storeFor(input.Repo)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	_, head, err := resolveTarget(ctx, store, input.Ref)
	if err != nil {
		return nil, err
	}

	boundary := plumbing.ZeroHash
	if input.Root != "" {
		boundary, err = store.ResolveRef(ctx, input.Root)
		if err != nil {
			return nil, err
		}
	}

	iter, err := Walk(ctx, store, head, boundary)
	if err != nil {
		return nil, err
	}

	out := &CheckOutput{}
	if err := iter.ForEach(func(c *Commit) error {
		has := HasTrailer(c.Message, input.Key, input.Value)
		if has {
			out.Present++
		} else {
			out.Missing++
		}
		out.Entries = append(out.Entries, CheckEntry{
			Hash:       c.Hash.String(),
			Subject:    subjectLine(c.Message),
			HasTrailer: has,
		})
		return nil
	}); err != nil {
		return nil, err
	}

	return out, nil
}

type LogUseCase struct {
	storeFor func(string) (*GitStore, error)
}

func NewLogUseCase(storeFor func(string) (*GitStore, error)) *LogUseCase {
	return &LogUseCase{storeFor: storeFor}
}

// Execute lists history newest-first with the trailer block of each message,
// flagging commits that already carry the configured trailer.
func (uc *LogUseCase) Execute(ctx context.Context, input LogInput) (*LogOutput, error) {
	store, err := uc.storeFor(input.Repo)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	_, head, err := resolveTarget(ctx, store, input.Ref)
	if err != nil {
		return nil, err
	}

	iter, err := Walk(ctx, store, head, plumbing.ZeroHash)
	if err != nil {
		return nil, err
	}

	var ordered []*Commit
	if err := iter.ForEach(func(c *Commit) error {
		ordered = append(ordered, c)
		return nil
	}); err != nil {
		return nil, err
	}

	out := &LogOutput{}
	for i := len(ordered) - 1; i >= 0; i-- {
		if input.Limit > 0 && len(out.Commits) >= input.Limit {
			break
		}
		c := ordered[i]

		has := false
		if input.Key != "" && input.Value != "" {
			has = HasTrailer(c.Message, input.Key, input.Value)
		}

		out.Commits = append(out.Commits, LogEntry{
			Hash:       c.Hash.String(),
			Subject:    subjectLine(c.Message),
			Author:     fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email),
			Timestamp:  c.Author.When,
			HasTrailer: has,
			Trailers:   Trailers(c.Message),
		})
	}

	return out, nil
}

// UseCases bundles the wired use cases for the CLI and the client library.
type UseCases struct {
	Rewrite *RewriteUseCase
	Check   *CheckUseCase
	Log     *LogUseCase
}

func NewUseCases(storeFor func(string) (*GitStore, error), logger *zap.Logger, now func() time.Time) *UseCases {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCases{
		Rewrite: NewRewriteUseCase(storeFor, logger, now),
		Check:   NewCheckUseCase(storeFor, logger),
		Log:     NewLogUseCase(storeFor),
	}
}

// resolveTarget maps the user-supplied ref to the ref name used for publish
// and its current hash. HEAD (or an empty ref) resolves to the checked-out
// branch so the publish targets the branch, not the symbolic ref.
func resolveTarget(ctx context.Context, store *GitStore, ref string) (string, plumbing.Hash, error) {
	if ref == "" || ref == "HEAD" {
		return store.Head(ctx)
	}
	if isHexHash(ref) {
		return "", plumbing.ZeroHash, fmt.Errorf("ref %q: a branch or tag name is required, not a raw commit id", ref)
	}

	hash, err := store.ResolveRef(ctx, ref)
	if err != nil {
		return "", plumbing.ZeroHash, err
	}
	return refName(ref).String(), hash, nil
}

func isHexHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func subjectLine(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(subject)
}

// newScratchStore builds a bare in-memory repository for dry-run hashing.
func newScratchStore() (*GitStore, error) {
	repo, err := git.Init(memory.NewStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("init scratch store: %w", err)
	}
	return NewGitStore(repo), nil
}
