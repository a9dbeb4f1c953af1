package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FORMNERD_DB", "FORMNERD_DEBUGGER_URL", "FORMNERD_HEADLESS", "FORMNERD_THRESHOLD"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `matching:
  threshold: 0.45
  min_prompt_length: 5
session:
  auto_playback: true
  proceed_delay_ms: 250
knowledge:
  database_path: /tmp/kb.db
browser:
  headless: true
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := DefaultConfig()
	want.Matching.Threshold = 0.45
	want.Matching.MinPromptLength = 5
	want.Session.AutoPlayback = true
	want.Session.ProceedDelayMs = 250
	want.Knowledge.DatabasePath = "/tmp/kb.db"
	want.Browser.Headless = true

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORMNERD_DB", "/var/data/answers.db")
	t.Setenv("FORMNERD_DEBUGGER_URL", "ws://127.0.0.1:9222")
	t.Setenv("FORMNERD_HEADLESS", "true")
	t.Setenv("FORMNERD_THRESHOLD", "0.75")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Knowledge.DatabasePath != "/var/data/answers.db" {
		t.Errorf("DatabasePath = %q", cfg.Knowledge.DatabasePath)
	}
	if cfg.Browser.DebuggerURL != "ws://127.0.0.1:9222" {
		t.Errorf("DebuggerURL = %q", cfg.Browser.DebuggerURL)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless override not applied")
	}
	if cfg.Matching.Threshold != 0.75 {
		t.Errorf("Threshold = %v", cfg.Matching.Threshold)
	}
}

func TestThresholdOverrideRejectsOutOfRange(t *testing.T) {
	clearEnv(t)

	for _, v := range []string{"0", "1", "1.5", "-0.2", "high"} {
		t.Setenv("FORMNERD_THRESHOLD", v)
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Matching.Threshold != 0.6 {
			t.Errorf("FORMNERD_THRESHOLD=%q accepted: threshold = %v", v, cfg.Matching.Threshold)
		}
	}
}
