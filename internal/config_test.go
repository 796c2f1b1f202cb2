package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trailer.Key != "Co-Authored-By" {
		t.Errorf("default key = %q", cfg.Trailer.Key)
	}
	if cfg.Ref != DefaultRef {
		t.Errorf("default ref = %q", cfg.Ref)
	}
}

func TestSaveLoadConfigRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &Config{
		Trailer: TrailerConfig{Key: testKey, Value: testValue},
		Ref:     "main",
	}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Trailer.Key != testKey || got.Trailer.Value != testValue {
		t.Errorf("trailer = %+v", got.Trailer)
	}
	if got.Ref != "main" {
		t.Errorf("ref = %q", got.Ref)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t???"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadMergedConfig(t *testing.T) {
	globalDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", globalDir)

	repoDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(repoDir, ".git"), 0755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}

	resolver := NewRepoResolver(repoDir)

	if err := os.MkdirAll(filepath.Dir(resolver.GlobalConfigPath()), 0755); err != nil {
		t.Fatalf("mkdir global: %v", err)
	}
	global := &Config{
		Trailer: TrailerConfig{Key: "Signed-off-by", Value: "Global <global@example.com>"},
		Ref:     "main",
	}
	if err := SaveConfig(resolver.GlobalConfigPath(), global); err != nil {
		t.Fatalf("save global: %v", err)
	}

	local := &Config{Trailer: TrailerConfig{Value: testValue}}
	if err := SaveConfig(filepath.Join(repoDir, ConfigFileName), local); err != nil {
		t.Fatalf("save local: %v", err)
	}

	merged, err := LoadMergedConfig(resolver)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	if merged.Trailer.Key != "Signed-off-by" {
		t.Errorf("key = %q, want global fallthrough", merged.Trailer.Key)
	}
	if merged.Trailer.Value != testValue {
		t.Errorf("value = %q, want local override", merged.Trailer.Value)
	}
	if merged.Ref != "main" {
		t.Errorf("ref = %q, want global", merged.Ref)
	}
}

func TestLoadMergedConfigLocalRefWins(t *testing.T) {
	globalDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", globalDir)

	repoDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(repoDir, ".git"), 0755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}

	resolver := NewRepoResolver(repoDir)

	if err := os.MkdirAll(filepath.Dir(resolver.GlobalConfigPath()), 0755); err != nil {
		t.Fatalf("mkdir global: %v", err)
	}
	global := &Config{Ref: "main"}
	if err := SaveConfig(resolver.GlobalConfigPath(), global); err != nil {
		t.Fatalf("save global: %v", err)
	}

	// An explicit repo-local ref overrides the global one, HEAD included.
	local := &Config{Ref: DefaultRef}
	if err := SaveConfig(filepath.Join(repoDir, ConfigFileName), local); err != nil {
		t.Fatalf("save local: %v", err)
	}

	merged, err := LoadMergedConfig(resolver)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Ref != DefaultRef {
		t.Errorf("ref = %q, want local override %q", merged.Ref, DefaultRef)
	}
}

func TestRepoResolverWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	resolver := NewRepoResolver(nested)

	got, ok := resolver.RepoRoot()
	if !ok {
		t.Fatal("repo root not found")
	}
	if got != root {
		t.Errorf("root = %q, want %q", got, root)
	}

	path, ok := resolver.RepoConfigPath()
	if !ok {
		t.Fatal("config path not found")
	}
	if path != filepath.Join(root, ConfigFileName) {
		t.Errorf("config path = %q", path)
	}
}

func TestRepoResolverNoRepo(t *testing.T) {
	resolver := NewRepoResolver(t.TempDir())

	if _, ok := resolver.RepoRoot(); ok {
		t.Error("found a repo root where none exists")
	}
}
