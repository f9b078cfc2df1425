// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete LinguaTax TUI configuration.
type Config struct {
	// Backend is the LinguaTax API backend.
	Backend BackendConfig `toml:"backend"`

	// Chat controls the conversation surface.
	Chat ChatConfig `toml:"chat"`

	// Ingest controls document ingestion polling.
	Ingest IngestConfig `toml:"ingest"`

	// Viewer controls the document viewer panel.
	Viewer ViewerConfig `toml:"viewer"`

	// Log controls file logging.
	Log LogConfig `toml:"log"`
}

// BackendConfig describes how to reach the LinguaTax API.
type BackendConfig struct {
	// BaseURL of the API (default: http://127.0.0.1:8000).
	BaseURL string `toml:"base_url"`
	// Timeout for non-streaming requests.
	Timeout time.Duration `toml:"-"`
	// TimeoutSeconds is the TOML-facing form of Timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// ChatConfig controls the conversation surface.
type ChatConfig struct {
	// Language is the BCP-47 tag answers are requested in (default "en").
	Language string `toml:"language"`
	// MaxAttachments caps images per message.
	MaxAttachments int `toml:"max_attachments"`
	// MaxAttachmentBytes caps a single image payload.
	MaxAttachmentBytes int64 `toml:"max_attachment_bytes"`
}

// IngestConfig controls the ingestion status gate.
type IngestConfig struct {
	// PollInterval between status reads.
	PollInterval time.Duration `toml:"-"`
	// PollIntervalSeconds is the TOML-facing form of PollInterval.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// ViewerConfig controls the document viewer panel.
type ViewerConfig struct {
	// PageGap is the fixed inter-page gap, in output pixels, used by the
	// native viewer projection when stacking pages vertically.
	PageGap float64 `toml:"page_gap"`
}

// LogConfig controls file logging.
type LogConfig struct {
	// FilePath of the log file (default ~/.linguatax/linguatax.log).
	FilePath string `toml:"file_path"`
	// Debug lowers the log level.
	Debug bool `toml:"debug"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:        "http://127.0.0.1:8000",
			Timeout:        30 * time.Second,
			TimeoutSeconds: 30,
		},
		Chat: ChatConfig{
			Language:           "en",
			MaxAttachments:     3,
			MaxAttachmentBytes: 5 << 20, // 5 MiB
		},
		Ingest: IngestConfig{
			PollInterval:        3 * time.Second,
			PollIntervalSeconds: 3,
		},
		Viewer: ViewerConfig{
			PageGap: 16,
		},
		Log: LogConfig{},
	}
}

// Path returns the config file location (~/.linguatax/config.toml).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".linguatax", "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from the default location, applies
// environment overrides and validates the result. A missing file is not
// an error; defaults are used.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies LINGUATAX_* environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("LINGUATAX_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("LINGUATAX_LANGUAGE"); v != "" {
		c.Chat.Language = v
	}
	if v := os.Getenv("LINGUATAX_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Ingest.PollIntervalSeconds = n
		}
	}
	if v := os.Getenv("LINGUATAX_LOG_FILE"); v != "" {
		c.Log.FilePath = v
	}
	if v := os.Getenv("LINGUATAX_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Debug = b
		}
	}
}

// normalize derives duration fields from their TOML-facing second counts.
func (c *Config) normalize() {
	if c.Backend.TimeoutSeconds > 0 {
		c.Backend.Timeout = time.Duration(c.Backend.TimeoutSeconds) * time.Second
	}
	if c.Ingest.PollIntervalSeconds > 0 {
		c.Ingest.PollInterval = time.Duration(c.Ingest.PollIntervalSeconds) * time.Second
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not a valid URL", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url scheme %q is not http(s)", u.Scheme)
	}

	if _, err := language.Parse(c.Chat.Language); err != nil {
		return fmt.Errorf("chat.language %q is not a valid BCP-47 tag: %w", c.Chat.Language, err)
	}

	if c.Chat.MaxAttachments < 0 {
		return errors.New("chat.max_attachments must not be negative")
	}
	if c.Chat.MaxAttachmentBytes < 0 {
		return errors.New("chat.max_attachment_bytes must not be negative")
	}
	if c.Ingest.PollInterval < time.Second {
		return errors.New("ingest.poll_interval_seconds must be at least 1")
	}
	if c.Viewer.PageGap < 0 {
		return errors.New("viewer.page_gap must not be negative")
	}
	return nil
}
