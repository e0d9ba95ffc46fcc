package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := Parse(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.ChatModel != DefaultChatModel {
		t.Fatalf("expected default chat model, got %q", cfg.ChatModel)
	}
	if cfg.ChatTimeout != time.Minute {
		t.Fatalf("expected 60s chat timeout, got %v", cfg.ChatTimeout)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("MANDATO_HTTP_ADDR", "env-addr")
	t.Setenv("MANDATO_CHAT_TIMEOUT", "5s")
	t.Setenv("MANDATO_FIXTURES", "env.yaml")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := Parse(fs, []string{"-http-addr", ":9090", "-log-format", "json"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.ChatTimeout != 5*time.Second {
		t.Fatalf("expected env chat timeout, got %v", cfg.ChatTimeout)
	}
	if cfg.FixturesPath != "env.yaml" {
		t.Fatalf("expected env fixtures path, got %q", cfg.FixturesPath)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("expected flag log format, got %q", cfg.LogFormat)
	}
}

func TestChatAPIKey(t *testing.T) {
	if got := (Config{APIKey: "legacy"}).ChatAPIKey(); got != "legacy" {
		t.Fatalf("expected legacy key, got %q", got)
	}
	if got := (Config{GeminiAPIKey: "gemini", APIKey: "legacy"}).ChatAPIKey(); got != "gemini" {
		t.Fatalf("expected gemini key to win, got %q", got)
	}
	if got := (Config{APIKey: "   "}).ChatAPIKey(); got != "" {
		t.Fatalf("expected blank key, got %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MANDATO_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("MANDATO_TEST_DOTENV", "")
	os.Unsetenv("MANDATO_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("MANDATO_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
