package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(cfg.Topics.List); got != 5 {
		t.Fatalf("default topics = %d, want 5", got)
	}
	if cfg.Topics.List[0] != "AI news" {
		t.Fatalf("first topic = %q", cfg.Topics.List[0])
	}
	if cfg.Schedule.Interval != 6*time.Hour || cfg.Schedule.PollInterval != time.Second {
		t.Fatalf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Render.Width != 720 || cfg.Render.Height != 1280 || cfg.Render.FPS != 24 {
		t.Fatalf("render frame = %dx%d@%d", cfg.Render.Width, cfg.Render.Height, cfg.Render.FPS)
	}
	if cfg.Upload.CategoryID != "22" || cfg.Upload.Visibility != "public" || cfg.Upload.ChunkSize != 16<<20 {
		t.Fatalf("upload = %+v", cfg.Upload)
	}
	if cfg.Footage.MaxBytes != 512<<20 {
		t.Fatalf("footage max bytes = %d", cfg.Footage.MaxBytes)
	}
}

func TestLoadOverridesAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
topics:
  list: ["Ocean facts", "Chess openings"]
script:
  model: gpt-4o-mini
schedule:
  interval: 30m
pipeline:
  stage_timeout: 90s
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Topics.List) != 2 || cfg.Topics.List[1] != "Chess openings" {
		t.Fatalf("topics = %v", cfg.Topics.List)
	}
	if cfg.Script.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q", cfg.Script.Model)
	}
	if cfg.Script.SystemPersona == "" {
		t.Fatalf("persona default not applied")
	}
	if cfg.Schedule.Interval != 30*time.Minute {
		t.Fatalf("interval = %v", cfg.Schedule.Interval)
	}
	if cfg.Pipeline.StageTimeout != 90*time.Second {
		t.Fatalf("stage timeout = %v", cfg.Pipeline.StageTimeout)
	}
	if cfg.Audio.ModelID != "eleven_turbo_v2" {
		t.Fatalf("tts model = %q", cfg.Audio.ModelID)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("topics: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSecretsMissing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ELEVENLABS_API_KEY", "")
	t.Setenv("PEXELS_API_KEY", "px")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "")

	missing := LoadSecrets().Missing()
	if len(missing) != 2 || missing[0] != "ELEVENLABS_API_KEY" || missing[1] != "YOUTUBE_CLIENT_SECRET" {
		t.Fatalf("missing = %v", missing)
	}
}
