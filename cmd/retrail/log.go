package main

import (
	"encoding/json"
	"fmt"

	"github.com/retrail/retrail/internal"
	"github.com/spf13/cobra"
)

func NewLogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history with trailer status",
		Long:  `Show the commit history, marking commits whose trailer block already carries the configured trailer.`,
		RunE:  makeLogRunner(a),
	}

	cmd.Flags().String("ref", "", "Ref to list (default: HEAD's branch)")
	cmd.Flags().IntP("number", "n", 10, "Limit number of commits")
	cmd.Flags().Bool("oneline", false, "Show each commit on one line")
	return cmd
}

func makeLogRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		ref, _ := cmd.Flags().GetString("ref")
		limit, _ := cmd.Flags().GetInt("number")
		oneline, _ := cmd.Flags().GetBool("oneline")
		asJSON, _ := cmd.Flags().GetBool("json")

		ref, key, value, err := applyConfigDefaults(a, ref, "", "")
		if err != nil {
			return err
		}

		out, err := a.useCases().Log.Execute(cmd.Context(), internal.LogInput{
			Repo: repo, Ref: ref, Limit: limit, Key: key, Value: value,
		})
		if err != nil {
			return fmt.Errorf("get log: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out.Commits)
		}

		for _, c := range out.Commits {
			marker := " "
			if c.HasTrailer {
				marker = "*"
			}
			if oneline {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", marker, c.Hash[:7], c.Subject)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "commit %s\n", c.Hash)
			fmt.Fprintf(cmd.OutOrStdout(), "Author: %s\n", c.Author)
			fmt.Fprintf(cmd.OutOrStdout(), "Date:   %s\n\n", c.Timestamp.Format("Mon Jan 2 15:04:05 2006 -0700"))
			fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", c.Subject)
			for _, trailer := range c.Trailers {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", trailer)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	}
}
