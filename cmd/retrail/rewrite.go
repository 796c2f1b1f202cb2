package main

import (
	"encoding/json"
	"fmt"

	"github.com/retrail/retrail/internal"
	"github.com/spf13/cobra"
)

func NewRewriteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rewrite history, appending a trailer to each message",
		Long: `Walk the commit range, append the trailer to every message that lacks it,
recreate the commits with identical trees and authors, and move the ref to the
new head. The ref is only updated if it has not moved since the walk started.`,
		RunE: makeRewriteRunner(a),
	}

	cmd.Flags().String("ref", "", "Ref to rewrite and republish (default: HEAD's branch)")
	cmd.Flags().String("root", "", "Boundary revision; commits at or behind it are left alone")
	cmd.Flags().String("key", "", "Trailer key (default from config)")
	cmd.Flags().String("value", "", "Trailer value (default from config)")
	cmd.Flags().Bool("dry-run", false, "Show message diffs without writing anything")
	return cmd
}

func makeRewriteRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		input, err := rewriteInputFromFlags(cmd, a)
		if err != nil {
			return err
		}

		out, err := a.useCases().Rewrite.Execute(cmd.Context(), input)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if input.DryRun {
			for _, change := range out.Changes {
				fmt.Fprintf(cmd.OutOrStdout(), "commit %s  %s\n%s\n", change.Hash[:7], change.Subject, change.Diff)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dry run: %d to rewrite, %d already trailed\n", out.Rewritten, out.Unchanged)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d rewritten, %d already trailed\n", out.Rewritten, out.Unchanged)
		if out.Published {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", out.Ref, out.OldHead[:7], out.NewHead[:7])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged\n", out.Ref)
		}
		return nil
	}
}

func rewriteInputFromFlags(cmd *cobra.Command, a *app) (internal.RewriteInput, error) {
	repo, _ := cmd.Flags().GetString("repo")
	ref, _ := cmd.Flags().GetString("ref")
	root, _ := cmd.Flags().GetString("root")
	key, _ := cmd.Flags().GetString("key")
	value, _ := cmd.Flags().GetString("value")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ref, key, value, err := applyConfigDefaults(a, ref, key, value)
	if err != nil {
		return internal.RewriteInput{}, err
	}

	return internal.RewriteInput{
		Repo:   repo,
		Ref:    ref,
		Root:   root,
		Key:    key,
		Value:  value,
		DryRun: dryRun,
	}, nil
}

// applyConfigDefaults fills unset flag values from the merged config.
func applyConfigDefaults(a *app, ref, key, value string) (string, string, string, error) {
	cfg, err := a.config()
	if err != nil {
		return "", "", "", fmt.Errorf("load config: %w", err)
	}

	if ref == "" {
		ref = cfg.Ref
	}
	if key == "" {
		key = cfg.Trailer.Key
	}
	if value == "" {
		value = cfg.Trailer.Value
	}
	return ref, key, value, nil
}
