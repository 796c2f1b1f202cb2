package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/retrail/retrail/internal"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	if tryExternalCommand(ctx) {
		return
	}

	rootCmd := NewRootCmd(version, newApp())
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

func tryExternalCommand(ctx context.Context) bool {
	if len(os.Args) < 2 {
		return false
	}

	cmd := os.Args[1]
	if cmd == "" || cmd[0] == '-' {
		return false
	}

	if _, err := findExternal(cmd); err != nil {
		return false
	}

	if err := executeExternal(ctx, cmd, os.Args[2:], version); err != nil {
		fmt.Fprintf(os.Stderr, "retrail %s: %v\n", cmd, err)
		os.Exit(1)
	}

	return true
}

type app struct {
	verbose bool
}

func newApp() *app {
	return &app{}
}

// useCases wires the use cases against the repository at repoPath ("" means
// detect from the working directory).
func (a *app) useCases() *internal.UseCases {
	storeFor := func(path string) (*internal.GitStore, error) {
		if path == "" {
			path = "."
		}
		return internal.OpenGitStore(path)
	}
	return internal.NewUseCases(storeFor, internal.NewLogger(a.verbose), nil)
}

func (a *app) config() (*internal.Config, error) {
	return internal.LoadMergedConfig(internal.NewRepoResolver(""))
}
