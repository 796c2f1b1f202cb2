package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// External subcommands are standalone retrail-<name> binaries on PATH. They
// are dispatched before cobra parses anything so they can define their own
// flags.
const externalPrefix = "retrail-"

func findExternal(name string) (string, error) {
	path, err := exec.LookPath(externalPrefix + name)
	if err != nil {
		return "", fmt.Errorf("unknown command %q: %s not found in PATH", name, externalPrefix+name)
	}
	return path, nil
}

// listExternalCommands scans PATH for executable retrail-* binaries and
// returns their subcommand names, deduplicated and sorted.
func listExternalCommands() []string {
	seen := make(map[string]bool)

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if name, ok := externalName(entry); ok {
				seen[name] = true
			}
		}
	}

	commands := make([]string, 0, len(seen))
	for name := range seen {
		commands = append(commands, name)
	}
	sort.Strings(commands)
	return commands
}

// externalName maps a directory entry to its subcommand name. ok is false for
// directories, non-executables and names without the retrail- prefix.
func externalName(entry os.DirEntry) (string, bool) {
	if entry.IsDir() {
		return "", false
	}

	name, found := strings.CutPrefix(entry.Name(), externalPrefix)
	if !found || name == "" {
		return "", false
	}

	info, err := entry.Info()
	if err != nil || info.Mode()&0111 == 0 {
		return "", false
	}
	return name, true
}

func executeExternal(ctx context.Context, name string, args []string, version string) error {
	binaryPath, err := findExternal(name)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, binaryPath, args...)
	cmd.Env = externalEnv(version)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// externalEnv passes the wrapper's identity through to the external binary.
func externalEnv(version string) []string {
	bin, _ := os.Executable()
	cwd, _ := os.Getwd()

	return append(os.Environ(),
		"RETRAIL_VERSION="+version,
		"RETRAIL_BIN="+bin,
		"RETRAIL_ROOT="+cwd,
	)
}
