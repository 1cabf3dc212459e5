package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "MOODIFY_GEMINI_API_KEY", "MOODIFY_GEMINI_MODEL", "MOODIFY_SEARCH_TIMEOUT", "MOODIFY_GEMINI_VERSIONS", "MOODIFY_SERVER_ADDR"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv(configPathEnv, "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gemini.Model != "models/gemini-2.5-flash" {
		t.Fatalf("model: %q", cfg.Gemini.Model)
	}
	if got := cfg.Gemini.VersionList(); len(got) != 2 || got[0] != "/v1beta" || got[1] != "/v1" {
		t.Fatalf("versions: %v", got)
	}
	if cfg.Search.Timeout != 5*time.Second {
		t.Fatalf("search timeout: %v", cfg.Search.Timeout)
	}
	if cfg.Gemini.Timeout != 30*time.Second {
		t.Fatalf("gemini timeout: %v", cfg.Gemini.Timeout)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "gemini:\n  model: models/from-file\n  api_key: file-key\nserver:\n  addr: \":9999\"\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv("MOODIFY_GEMINI_MODEL", "models/from-env")
	t.Setenv("MOODIFY_SEARCH_TIMEOUT", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gemini.Model != "models/from-env" {
		t.Fatalf("env should override file, got %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.APIKey != "file-key" {
		t.Fatalf("api key: %q", cfg.Gemini.APIKey)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("addr: %q", cfg.Server.Addr)
	}
	if cfg.Search.Timeout != 2*time.Second {
		t.Fatalf("search timeout: %v", cfg.Search.Timeout)
	}
}

func TestLoadAPIKeyFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gemini.APIKey != "google" {
		t.Fatalf("api key: %q", cfg.Gemini.APIKey)
	}

	t.Setenv("GEMINI_API_KEY", "gemini")
	cfg, _ = Load()
	if cfg.Gemini.APIKey != "gemini" {
		t.Fatalf("GEMINI_API_KEY should win, got %q", cfg.Gemini.APIKey)
	}
}

func TestVersionList(t *testing.T) {
	g := Gemini{Versions: " v1beta , /v1,, "}
	got := g.VersionList()
	if len(got) != 2 || got[0] != "/v1beta" || got[1] != "/v1" {
		t.Fatalf("unexpected versions: %v", got)
	}
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"MOODIFY_GEMINI_API_KEY":       "gemini.api_key",
		"MOODIFY_SEARCH_MAX_BODY_BYTES": "search.max_body_bytes",
		"MOODIFY_CONFIG":               "",
	}
	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Fatalf("envKey(%q)=%q want %q", in, got, want)
		}
	}
}
