// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/emlinh-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete emlinh configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server" json:"server"`
	Realtime RealtimeConfig `toml:"realtime" yaml:"realtime" json:"realtime"`
	Chat     ChatConfig     `toml:"chat" yaml:"chat" json:"chat"`
	Video    VideoConfig    `toml:"video" yaml:"video" json:"video"`
	Library  LibraryConfig  `toml:"library" yaml:"library" json:"library"`
	Ideas    IdeasConfig    `toml:"ideas" yaml:"ideas" json:"ideas"`
	UI       UIConfig       `toml:"ui" yaml:"ui" json:"ui"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging" json:"logging"`
}

// ServerConfig points the client at the backend.
type ServerConfig struct {
	BaseURL           string  `toml:"base_url" yaml:"base_url" json:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second" json:"requests_per_second"`
}

// RealtimeConfig controls the Socket.IO connection.
type RealtimeConfig struct {
	Enabled              bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Path                 string `toml:"path" yaml:"path" json:"path"`
	MaxReconnectAttempts int    `toml:"max_reconnect_attempts" yaml:"max_reconnect_attempts" json:"max_reconnect_attempts"`
	ReconnectDelayMS     int    `toml:"reconnect_delay_ms" yaml:"reconnect_delay_ms" json:"reconnect_delay_ms"`
	ConnectTimeoutMS     int    `toml:"connect_timeout_ms" yaml:"connect_timeout_ms" json:"connect_timeout_ms"`
}

// ChatConfig holds chat defaults.
type ChatConfig struct {
	DefaultType        string `toml:"default_type" yaml:"default_type" json:"default_type"`
	QuickPromptDelayMS int    `toml:"quick_prompt_delay_ms" yaml:"quick_prompt_delay_ms" json:"quick_prompt_delay_ms"`
	ShowWelcome        bool   `toml:"show_welcome" yaml:"show_welcome" json:"show_welcome"`
}

// VideoConfig holds defaults for video creation.
type VideoConfig struct {
	Duration         int    `toml:"duration" yaml:"duration" json:"duration"`
	Composition      string `toml:"composition" yaml:"composition" json:"composition"`
	Background       string `toml:"background" yaml:"background" json:"background"`
	Voice            string `toml:"voice" yaml:"voice" json:"voice"`
	RejectConcurrent bool   `toml:"reject_concurrent" yaml:"reject_concurrent" json:"reject_concurrent"`
	DownloadDir      string `toml:"download_dir" yaml:"download_dir" json:"download_dir"`
}

// LibraryConfig controls the video library browser.
type LibraryConfig struct {
	PerPage          int `toml:"per_page" yaml:"per_page" json:"per_page"`
	SearchDebounceMS int `toml:"search_debounce_ms" yaml:"search_debounce_ms" json:"search_debounce_ms"`
}

// IdeasConfig controls the recent ideas panel.
type IdeasConfig struct {
	PerPage             int `toml:"per_page" yaml:"per_page" json:"per_page"`
	MinReloadIntervalMS int `toml:"min_reload_interval_ms" yaml:"min_reload_interval_ms" json:"min_reload_interval_ms"`
}

// UIConfig contains terminal presentation settings.
type UIConfig struct {
	Markdown       bool   `toml:"markdown" yaml:"markdown" json:"markdown"`
	ShowTimestamps bool   `toml:"show_timestamps" yaml:"show_timestamps" json:"show_timestamps"`
	GlamourStyle   string `toml:"glamour_style" yaml:"glamour_style" json:"glamour_style"`
	WordWrap       int    `toml:"word_wrap" yaml:"word_wrap" json:"word_wrap"`
}

// LoggingConfig configures the rotating log file.
type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level" json:"level"`
	File       string `toml:"file" yaml:"file" json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days" json:"max_age_days"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:           "http://127.0.0.1:5000",
			TimeoutSeconds:    60,
			RequestsPerSecond: 10,
		},
		Realtime: RealtimeConfig{
			Enabled:              true,
			Path:                 "/socket.io/",
			MaxReconnectAttempts: 5,
			ReconnectDelayMS:     1000,
			ConnectTimeoutMS:     60000,
		},
		Chat: ChatConfig{
			DefaultType:        "conversation",
			QuickPromptDelayMS: 500,
			ShowWelcome:        true,
		},
		Video: VideoConfig{
			Duration:    15,
			Composition: "Scene-Landscape",
			Background:  "office",
			Voice:       "nova",
		},
		Library: LibraryConfig{
			PerPage:          12,
			SearchDebounceMS: 500,
		},
		Ideas: IdeasConfig{
			PerPage:             5,
			MinReloadIntervalMS: 1000,
		},
		UI: UIConfig{
			Markdown:       true,
			ShowTimestamps: true,
			GlamourStyle:   "auto",
			WordWrap:       80,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// SetDefaults fills zero values with the built-in defaults.
// Booleans are left alone since false is a valid choice.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = d.Server.BaseURL
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = d.Server.TimeoutSeconds
	}
	if c.Realtime.Path == "" {
		c.Realtime.Path = d.Realtime.Path
	}
	if c.Realtime.MaxReconnectAttempts == 0 {
		c.Realtime.MaxReconnectAttempts = d.Realtime.MaxReconnectAttempts
	}
	if c.Realtime.ReconnectDelayMS == 0 {
		c.Realtime.ReconnectDelayMS = d.Realtime.ReconnectDelayMS
	}
	if c.Realtime.ConnectTimeoutMS == 0 {
		c.Realtime.ConnectTimeoutMS = d.Realtime.ConnectTimeoutMS
	}
	if c.Chat.DefaultType == "" {
		c.Chat.DefaultType = d.Chat.DefaultType
	}
	if c.Chat.QuickPromptDelayMS == 0 {
		c.Chat.QuickPromptDelayMS = d.Chat.QuickPromptDelayMS
	}
	if c.Video.Duration == 0 {
		c.Video.Duration = d.Video.Duration
	}
	if c.Video.Composition == "" {
		c.Video.Composition = d.Video.Composition
	}
	if c.Video.Background == "" {
		c.Video.Background = d.Video.Background
	}
	if c.Video.Voice == "" {
		c.Video.Voice = d.Video.Voice
	}
	if c.Library.PerPage == 0 {
		c.Library.PerPage = d.Library.PerPage
	}
	if c.Library.SearchDebounceMS == 0 {
		c.Library.SearchDebounceMS = d.Library.SearchDebounceMS
	}
	if c.Ideas.PerPage == 0 {
		c.Ideas.PerPage = d.Ideas.PerPage
	}
	if c.UI.GlamourStyle == "" {
		c.UI.GlamourStyle = d.UI.GlamourStyle
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = d.UI.WordWrap
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = d.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = d.Logging.MaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = d.Logging.MaxAgeDays
	}
}

// =============================================================================
// DURATION ACCESSORS
// =============================================================================

// Timeout is the HTTP request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// ReconnectDelay is the base reconnect backoff delay.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Realtime.ReconnectDelayMS) * time.Millisecond
}

// ConnectTimeout is the realtime handshake timeout.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Realtime.ConnectTimeoutMS) * time.Millisecond
}

// QuickPromptDelay is the wait before a quick prompt auto-sends.
func (c *Config) QuickPromptDelay() time.Duration {
	return time.Duration(c.Chat.QuickPromptDelayMS) * time.Millisecond
}

// SearchDebounce is the library search debounce.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.Library.SearchDebounceMS) * time.Millisecond
}

// IdeasReloadInterval is the minimum spacing between ideas reloads.
func (c *Config) IdeasReloadInterval() time.Duration {
	return time.Duration(c.Ideas.MinReloadIntervalMS) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the emlinh configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("EMLINH_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".emlinh"), nil
}

// ConfigPath returns the path of the config file with the given extension.
func ConfigPath(ext string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config."+ext), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// LogPath returns the configured log file, or the default under ConfigDir.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "emlinh.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// searchOrder is the order in which config files are tried.
var searchOrder = []string{"toml", "yaml", "json"}

// Load loads configuration. If path is empty the config directory is
// searched in TOML, YAML, JSON order, falling back to defaults. A .env
// file in the working directory is read before environment overrides.
func Load(path string) (*Config, error) {
	loadDotEnv(".env")

	if path != "" {
		return LoadFromPath(path)
	}

	cfg := Default()
	for _, ext := range searchOrder {
		candidate, err := ConfigPath(ext)
		if err != nil {
			break
		}
		if _, statErr := os.Stat(candidate); statErr != nil {
			continue
		}
		return LoadFromPath(candidate)
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file with full validation.
// The format is chosen by extension; unknown extensions are read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read JSON file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode JSON file: %w", err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read YAML file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode YAML file: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("failed to decode TOML file: %w", err)
		}
	}
	return nil
}

// loadDotEnv reads KEY=VALUE pairs without overriding variables already set.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to ~/.emlinh/config.toml.
func Save(cfg *Config) error {
	path, err := ConfigPath("toml")
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# emlinh configuration file\n")
	b.WriteString("# Values here are overridden by EMLINH_* environment variables.\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Server.BaseURL),
		})
	}
	if c.Server.TimeoutSeconds < 0 {
		errs = append(errs, ValidationError{Field: "server.timeout_seconds", Message: "must not be negative"})
	}
	if c.Server.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "server.requests_per_second", Message: "must not be negative"})
	}
	if !strings.HasPrefix(c.Realtime.Path, "/") {
		errs = append(errs, ValidationError{Field: "realtime.path", Message: "must start with '/'"})
	}
	if c.Realtime.MaxReconnectAttempts < 0 || c.Realtime.MaxReconnectAttempts > 20 {
		errs = append(errs, ValidationError{Field: "realtime.max_reconnect_attempts", Message: "must be between 0 and 20"})
	}
	if c.Realtime.ReconnectDelayMS < 0 {
		errs = append(errs, ValidationError{Field: "realtime.reconnect_delay_ms", Message: "must not be negative"})
	}

	switch c.Chat.DefaultType {
	case "conversation", "brainstorm", "planning":
	default:
		errs = append(errs, ValidationError{
			Field:   "chat.default_type",
			Message: fmt.Sprintf("invalid type '%s', must be one of: conversation, brainstorm, planning", c.Chat.DefaultType),
		})
	}

	if c.Video.Duration <= 0 || c.Video.Duration > 600 {
		errs = append(errs, ValidationError{Field: "video.duration", Message: "must be between 1 and 600 seconds"})
	}
	if c.Library.PerPage <= 0 || c.Library.PerPage > 100 {
		errs = append(errs, ValidationError{Field: "library.per_page", Message: "must be between 1 and 100"})
	}
	if c.Ideas.PerPage <= 0 || c.Ideas.PerPage > 50 {
		errs = append(errs, ValidationError{Field: "ideas.per_page", Message: "must be between 1 and 50"})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies EMLINH_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("EMLINH_SERVER"); v != "" {
		c.Server.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("EMLINH_TIMEOUT"); v != "" {
		_ = c.Set("server.timeout_seconds", v)
	}
	if v := os.Getenv("EMLINH_REALTIME"); v != "" {
		c.Realtime.Enabled = parseBool(v)
	}
	if v := os.Getenv("EMLINH_CHAT_TYPE"); v != "" {
		c.Chat.DefaultType = strings.ToLower(v)
	}
	if v := os.Getenv("EMLINH_VOICE"); v != "" {
		c.Video.Voice = v
	}
	if v := os.Getenv("EMLINH_REJECT_CONCURRENT_VIDEO"); v != "" {
		c.Video.RejectConcurrent = parseBool(v)
	}
	if v := os.Getenv("EMLINH_DOWNLOAD_DIR"); v != "" {
		c.Video.DownloadDir = v
	}
	if v := os.Getenv("EMLINH_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("EMLINH_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

// =============================================================================
// STRING / CLONE
// =============================================================================

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "<invalid config: " + err.Error() + ">"
	}
	return b.String()
}

// ErrUnknownKey is returned by Get and Set for keys that do not exist.
var ErrUnknownKey = errors.New("unknown config key")
