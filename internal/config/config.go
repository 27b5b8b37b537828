package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/pdf-summarizer/internal/ai"
	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

// DefaultPath is read when no --config is given and the file exists.
const DefaultPath = "summarizer.yaml"

// Config represents runtime configuration for the CLI and the HTTP server.
type Config struct {
	Gemini  GeminiConfig         `yaml:"gemini"`
	Server  ServerConfig         `yaml:"server"`
	PDF     PDFConfig            `yaml:"pdf"`
	Timings orchestrator.Timings `yaml:"timings"`
	History HistoryConfig        `yaml:"history"`
	Log     LogConfig            `yaml:"log"`
}

type GeminiConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Address        string `yaml:"address"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	// SessionTTL drops a client session after this long without a request.
	SessionTTL  time.Duration `yaml:"session_ttl"`
	MaxSessions int           `yaml:"max_sessions"`
}

type PDFConfig struct {
	Backend  string `yaml:"backend"`
	Validate bool   `yaml:"validate"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type HistoryConfig struct {
	// Path of the bbolt file; empty disables history.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Gemini:  GeminiConfig{Model: ai.DefaultModel},
		Server:  ServerConfig{Address: ":8080", MaxUploadBytes: 32 << 20, SessionTTL: 30 * time.Minute, MaxSessions: 1024},
		PDF:     PDFConfig{Backend: "rsc", Validate: true, MaxBytes: 32 << 20},
		Timings: orchestrator.DefaultTimings(),
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, then applies environment overrides.
// An empty path falls back to DefaultPath when that file exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	b, err := os.ReadFile(absPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", absPath, err)
		}
		if cfg.History.Path != "" && !filepath.IsAbs(cfg.History.Path) {
			cfg.History.Path = filepath.Join(filepath.Dir(absPath), cfg.History.Path)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	} else if v := getenv("GOOGLE_API_KEY"); v != "" && c.Gemini.APIKey == "" {
		c.Gemini.APIKey = v
	}
	if v := getenv("SUMMARIZER_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := getenv("SUMMARIZER_ADDR"); v != "" {
		c.Server.Address = v
	}
	if v := getenv("SUMMARIZER_HISTORY"); v != "" {
		c.History.Path = v
	}
	if v := getenv("SUMMARIZER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) Validate() error {
	switch c.PDF.Backend {
	case "", "rsc", "ledongthuc":
	default:
		return fmt.Errorf("pdf.backend must be rsc or ledongthuc, got %q", c.PDF.Backend)
	}
	if c.Gemini.Timeout < 0 {
		return fmt.Errorf("gemini.timeout must not be negative")
	}
	if c.Timings.PhaseInterval < 0 {
		return fmt.Errorf("timings.phase_interval must not be negative")
	}
	if c.Server.SessionTTL < 0 || c.Server.MaxSessions < 0 {
		return fmt.Errorf("server.session_ttl and server.max_sessions must not be negative")
	}
	if c.Server.MaxUploadBytes < 0 || c.PDF.MaxBytes < 0 {
		return fmt.Errorf("size limits must not be negative")
	}
	return nil
}
