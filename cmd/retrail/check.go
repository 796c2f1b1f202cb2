package main

import (
	"encoding/json"
	"fmt"

	"github.com/retrail/retrail/internal"
	"github.com/spf13/cobra"
)

func NewCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit which commits already carry the trailer",
		Long:  `Walk the commit range and report, without writing anything, which commits already have the trailer and which would be rewritten.`,
		RunE:  makeCheckRunner(a),
	}

	cmd.Flags().String("ref", "", "Ref to audit (default: HEAD's branch)")
	cmd.Flags().String("root", "", "Boundary revision; commits at or behind it are skipped")
	cmd.Flags().String("key", "", "Trailer key (default from config)")
	cmd.Flags().String("value", "", "Trailer value (default from config)")
	return cmd
}

func makeCheckRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		ref, _ := cmd.Flags().GetString("ref")
		root, _ := cmd.Flags().GetString("root")
		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		ref, key, value, err := applyConfigDefaults(a, ref, key, value)
		if err != nil {
			return err
		}

		out, err := a.useCases().Check.Execute(cmd.Context(), internal.CheckInput{
			Repo: repo, Ref: ref, Root: root, Key: key, Value: value,
		})
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		for _, entry := range out.Entries {
			marker := " "
			if entry.HasTrailer {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", marker, entry.Hash[:7], entry.Subject)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d trailed, %d missing\n", out.Present, out.Missing)
		return nil
	}
}
