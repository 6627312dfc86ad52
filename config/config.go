// Package config loads server configuration from defaults, an optional TOML
// file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Config is the full server configuration.
type Config struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	Backend        string   `toml:"store_backend"`
	AllowedOrigins []string `toml:"allowed_origins"`

	Log      LogConfig      `toml:"log"`
	Telegram TelegramConfig `toml:"telegram"`
}

// LogConfig controls the console logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// TelegramConfig holds the optional creation-notification credentials.
// Notifications are disabled unless both BotToken and ChatID are set.
type TelegramConfig struct {
	BotToken string   `toml:"bot_token"`
	ChatID   string   `toml:"chat_id"`
	APIBase  string   `toml:"api_base"`
	Timeout  Duration `toml:"timeout"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Duration decodes TOML strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

const (
	DefaultHost       = "0.0.0.0"
	DefaultPort       = "8000"
	DefaultBackend    = "memory"
	DefaultAPIBase    = "https://api.telegram.org"
	DefaultTimeout    = 5 * time.Second
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultConfigFile = "todo.toml"
)

func setDefaults(cfg *Config) {
	cfg.Host = DefaultHost
	cfg.Port = DefaultPort
	cfg.Backend = DefaultBackend
	cfg.AllowedOrigins = []string{"*"}
	cfg.Log = LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat}
	cfg.Telegram = TelegramConfig{
		APIBase: DefaultAPIBase,
		Timeout: Duration{DefaultTimeout},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("store_backend: unsupported %q (supported: memory, sqlite)", c.Backend))
	}
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port: must not be empty"))
	}
	if c.Telegram.Timeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("telegram.timeout: must be positive, got %s", c.Telegram.Timeout.Duration))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unsupported %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// NewLogger builds the console logger described by the log settings.
// Unknown formats fall back to text.
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLogLevel(c.Log.Level),
		Formatter:       ParseLogFormatter(c.Log.Format),
		ReportTimestamp: true,
		Prefix:          "todo",
	})
}

// ParseLogLevel parses a string log level to a charmbracelet/log Level.
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseLogFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseLogFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
