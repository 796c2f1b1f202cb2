package internal

import (
	"os"
	"path/filepath"
)

const ConfigFileName = ".retrail.yaml"

// RepoResolver locates the enclosing git repository and the config files that
// apply to it.
type RepoResolver struct {
	workDir string
}

func NewRepoResolver(workDir string) *RepoResolver {
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	return &RepoResolver{workDir: workDir}
}

// RepoRoot walks up from the working directory to the first directory
// containing .git.
func (r *RepoResolver) RepoRoot() (string, bool) {
	dir := r.workDir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// RepoConfigPath returns the repo-local config location. The second return is
// false when no enclosing repository exists.
func (r *RepoResolver) RepoConfigPath() (string, bool) {
	root, ok := r.RepoRoot()
	if !ok {
		return "", false
	}
	return filepath.Join(root, ConfigFileName), true
}

func (r *RepoResolver) GlobalConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "retrail", "config.yaml")
}
