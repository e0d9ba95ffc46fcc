// Package config loads server settings from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultChatModel is the Gemini model used by the chat assistant.
const DefaultChatModel = "gemini-2.5-flash"

// Config holds server configuration.
type Config struct {
	HTTPAddr     string `env:"MANDATO_HTTP_ADDR"   envDefault:":8080"`
	StaticPath   string `env:"MANDATO_STATIC_PATH"`
	FixturesPath string `env:"MANDATO_FIXTURES"`

	// GeminiAPIKey wins over APIKey; APIKey is the variable name the
	// original browser build read.
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	APIKey       string        `env:"API_KEY"`
	ChatModel    string        `env:"MANDATO_CHAT_MODEL"   envDefault:"gemini-2.5-flash"`
	ChatTimeout  time.Duration `env:"MANDATO_CHAT_TIMEOUT" envDefault:"60s"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadDotEnv loads variables from path into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseEnv loads configuration from environment variables only.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Parse reads the environment and then lets flags override it.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg, err := ParseEnv()
	if err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.StaticPath, "static", cfg.StaticPath, "directory with the built frontend (optional)")
	fs.StringVar(&cfg.FixturesPath, "fixtures", cfg.FixturesPath, "YAML file overriding the embedded seed data")
	fs.StringVar(&cfg.ChatModel, "chat-model", cfg.ChatModel, "Gemini model for Consill IA")
	fs.DurationVar(&cfg.ChatTimeout, "chat-timeout", cfg.ChatTimeout, "timeout of one chat completion")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if strings.TrimSpace(cfg.ChatModel) == "" {
		cfg.ChatModel = DefaultChatModel
	}
	return cfg, nil
}

// ChatAPIKey returns the credential for the chat assistant, or "" when the
// assistant must run offline.
func (c Config) ChatAPIKey() string {
	if k := strings.TrimSpace(c.GeminiAPIKey); k != "" {
		return k
	}
	return strings.TrimSpace(c.APIKey)
}
