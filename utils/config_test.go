package utils

import (
	"os"
	"path"
	"testing"

	"github.com/spf13/viper"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EDITOR", "micro")
	viper.Reset()

	cfg := NewConfig()

	if cfg.Extension != ".md" {
		t.Errorf("Extension = %q, want .md", cfg.Extension)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q, want en", cfg.Language)
	}
	if cfg.Editor != "micro" {
		t.Errorf("Editor = %q, want $EDITOR", cfg.Editor)
	}
	if cfg.IndexPath == "" {
		t.Error("IndexPath default should not be empty")
	}
	cwd, _ := os.Getwd()
	if cfg.RootPath != cwd {
		t.Errorf("RootPath = %q, want current directory", cfg.RootPath)
	}
}

func TestNewConfigReadsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()

	dir := path.Join(home, ".config/nvvim")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "root_path: /tmp/notes\nextension: .txt\nlanguage: de\neditor: nano\n"
	if err := os.WriteFile(path.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()

	if cfg.RootPath != "/tmp/notes" {
		t.Errorf("RootPath = %q", cfg.RootPath)
	}
	if cfg.Extension != ".txt" {
		t.Errorf("Extension = %q", cfg.Extension)
	}
	if cfg.Language != "de" {
		t.Errorf("Language = %q", cfg.Language)
	}
	if cfg.Editor != "nano" {
		t.Errorf("Editor = %q", cfg.Editor)
	}
	if cfg.IndexPath == "" {
		t.Error("IndexPath should fall back to its default")
	}
}
