package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retrail/retrail/internal"
)

func TestConfigInitCmd(t *testing.T) {
	dir, _ := setupDiskRepo(t)
	t.Chdir(dir)

	cmd := NewRootCmd("test", newApp())
	cmd.SetArgs([]string{"config", "init", "--key", testKey, "--value", testValue})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	path := filepath.Join(dir, internal.ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trailer.Key != testKey || cfg.Trailer.Value != testValue {
		t.Errorf("trailer = %+v", cfg.Trailer)
	}
}

func TestConfigInitCmdOutsideRepo(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cmd := NewRootCmd("test", newApp())
	cmd.SetArgs([]string{"config", "init"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error outside a repository")
	}
}

func TestConfigShowCmd(t *testing.T) {
	dir, _ := setupDiskRepo(t)
	t.Chdir(dir)

	init := NewRootCmd("test", newApp())
	init.SetArgs([]string{"config", "init", "--key", "Signed-off-by", "--value", testValue})
	init.SetOut(&bytes.Buffer{})
	if err := init.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	show := NewRootCmd("test", newApp())
	show.SetArgs([]string{"config", "show"})

	var out bytes.Buffer
	show.SetOut(&out)
	if err := show.Execute(); err != nil {
		t.Fatalf("show: %v", err)
	}

	if !strings.Contains(out.String(), "Signed-off-by") {
		t.Errorf("merged config missing local key: %q", out.String())
	}
}
