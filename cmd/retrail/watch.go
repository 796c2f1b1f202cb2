package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/retrail/retrail/internal"
	"github.com/spf13/cobra"
)

func NewWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a ref and report when it moves",
		Long: `Watch the files backing a ref and report every time another actor moves it.
Useful while a long rewrite is being reviewed: a reported move means the next
publish will hit a conflict and the rewrite must be re-run.`,
		RunE: makeWatchRunner(a),
	}

	cmd.Flags().String("ref", "", "Ref to watch (default: HEAD's branch)")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching ref updates")
	return cmd
}

func makeWatchRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		ref, _ := cmd.Flags().GetString("ref")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		if ref == "" {
			cfg, err := a.config()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ref = cfg.Ref
		}

		if repo == "" {
			repo = "."
		}
		store, err := internal.OpenGitStore(repo)
		if err != nil {
			return err
		}

		baseline, err := store.ResolveRef(cmd.Context(), ref)
		if err != nil {
			return err
		}

		paths := store.RefWatchPaths(ref)
		if len(paths) == 0 {
			return fmt.Errorf("watch requires a repository with a worktree")
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		for _, dir := range watchDirs(paths) {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (currently %s)...\n", ref, baseline.String()[:7])

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !touchesRef(event, paths) {
					continue
				}
				if !pending {
					timer.Reset(debounce)
					pending = true
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				pending = false
				current, resolveErr := store.ResolveRef(cmd.Context(), ref)
				if resolveErr != nil || current == baseline {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s moved: %s -> %s\n", ref, baseline.String()[:7], current.String()[:7])
				baseline = current
			}
		}
	}
}

func watchDirs(paths []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

func touchesRef(event fsnotify.Event, paths []string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	for _, p := range paths {
		if event.Name == p {
			return true
		}
	}
	return false
}
