package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Speech.Backend != "auto" {
		t.Fatalf("expected auto backend by default, got %q", cfg.Speech.Backend)
	}
	if cfg.Playback.Player != "auto" {
		t.Fatalf("expected auto player by default, got %q", cfg.Playback.Player)
	}
	if !cfg.Cache.Enabled {
		t.Fatal("expected cache enabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
speech:
  backend: mock
  voice: Kore
playback:
  auto_play: true
cache:
  enabled: false
export:
  dir: /tmp/exports
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Speech.Backend != "mock" {
		t.Errorf("backend = %q, want mock", cfg.Speech.Backend)
	}
	if cfg.Speech.Voice != "Kore" {
		t.Errorf("voice = %q, want Kore", cfg.Speech.Voice)
	}
	if !cfg.Playback.AutoPlay {
		t.Error("expected auto_play true")
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache disabled")
	}
	if cfg.Export.Dir != "/tmp/exports" {
		t.Errorf("export dir = %q", cfg.Export.Dir)
	}
	// Unset fields keep their defaults.
	if cfg.Playback.Player != "auto" {
		t.Errorf("player should keep its default, got %q", cfg.Playback.Player)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing named config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QUIZVOICE_BACKEND", "live")
	t.Setenv("QUIZVOICE_VOICE", "Fenrir")
	t.Setenv("QUIZVOICE_AUTO_PLAY", "true")
	t.Setenv("QUIZVOICE_CACHE_ENABLED", "false")
	t.Setenv("QUIZVOICE_CACHE_PATH", "/tmp/cache.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Speech.Backend != "live" {
		t.Errorf("expected backend override, got %q", cfg.Speech.Backend)
	}
	if cfg.Speech.Voice != "Fenrir" {
		t.Errorf("expected voice override, got %q", cfg.Speech.Voice)
	}
	if !cfg.Playback.AutoPlay {
		t.Error("expected auto_play override")
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache disabled via env")
	}
	if cfg.Cache.Path != "/tmp/cache.db" {
		t.Errorf("expected cache path override, got %q", cfg.Cache.Path)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	t.Setenv("QUIZVOICE_BACKEND", "carrier-pigeon")

	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}
