package main

import (
	"fmt"

	"github.com/retrail/retrail/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage trailer configuration",
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd(a))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a repo-local config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetString("key")
			value, _ := cmd.Flags().GetString("value")
			ref, _ := cmd.Flags().GetString("ref")

			resolver := internal.NewRepoResolver("")
			path, ok := resolver.RepoConfigPath()
			if !ok {
				return fmt.Errorf("no git repository found above the working directory")
			}

			cfg := internal.DefaultConfig()
			if key != "" {
				cfg.Trailer.Key = key
			}
			cfg.Trailer.Value = value
			if ref != "" {
				cfg.Ref = ref
			}

			if err := internal.SaveConfig(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().String("key", "", "Default trailer key")
	cmd.Flags().String("value", "", "Default trailer value")
	cmd.Flags().String("ref", "", "Default ref to rewrite")
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective (merged) configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
