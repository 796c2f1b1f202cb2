package v1

import (
	"context"
	"fmt"

	"github.com/retrail/retrail/internal"
)

// Client provides programmatic access to the history rewriter.
type Client struct {
	uc  *internal.UseCases
	cfg clientConfig
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	storeFor := func(path string) (*internal.GitStore, error) {
		if path == "" {
			path = cfg.repoPath
		}
		if path == "" {
			path = "."
		}
		return internal.OpenGitStore(path)
	}

	return &Client{
		uc:  internal.NewUseCases(storeFor, cfg.logger, nil),
		cfg: *cfg,
	}, nil
}

// Rewrite runs one rewrite pass and publishes the new head unless DryRun is
// set. The operation is all-or-nothing: on any error the ref is untouched.
func (c *Client) Rewrite(ctx context.Context, req RewriteRequest) (*RewriteReport, error) {
	key, value := c.trailer(req.Key, req.Value)

	out, err := c.uc.Rewrite.Execute(ctx, internal.RewriteInput{
		Ref:    req.Ref,
		Root:   req.Root,
		Key:    key,
		Value:  value,
		DryRun: req.DryRun,
	})
	if err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}

	report := &RewriteReport{
		Ref:       out.Ref,
		OldHead:   out.OldHead,
		NewHead:   out.NewHead,
		Rewritten: out.Rewritten,
		Unchanged: out.Unchanged,
		Published: out.Published,
	}
	for _, change := range out.Changes {
		report.Changes = append(report.Changes, MessageChange{
			Hash:    change.Hash,
			Subject: change.Subject,
			Diff:    change.Diff,
		})
	}
	return report, nil
}

// Check audits trailer presence without writing anything.
func (c *Client) Check(ctx context.Context, req CheckRequest) (*CheckReport, error) {
	key, value := c.trailer(req.Key, req.Value)

	out, err := c.uc.Check.Execute(ctx, internal.CheckInput{
		Ref:   req.Ref,
		Root:  req.Root,
		Key:   key,
		Value: value,
	})
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}

	report := &CheckReport{Present: out.Present, Missing: out.Missing}
	for _, entry := range out.Entries {
		report.Commits = append(report.Commits, CheckedCommit{
			Hash:       entry.Hash,
			Subject:    entry.Subject,
			HasTrailer: entry.HasTrailer,
		})
	}
	return report, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

func (c *Client) trailer(key, value string) (string, string) {
	if key == "" {
		key = c.cfg.trailerKey
	}
	if value == "" {
		value = c.cfg.trailerValue
	}
	return key, value
}
