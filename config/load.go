package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (-config flag, TODO_CONFIG, or ./todo.toml if present)
// 3. Environment variables
// 4. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	var (
		configPath string
		host       string
		port       string
		backend    string
		logLevel   string
	)
	fs.StringVar(&configPath, "config", "", "path to a TOML config file")
	fs.StringVar(&host, "host", "", "address to listen on")
	fs.StringVar(&port, "port", "", "port to listen on")
	fs.StringVar(&backend, "store", "", "store backend (memory, sqlite)")
	fs.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	path, explicit := resolveConfigFile(configPath)
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	loadFromEnv(cfg)

	// Flags override everything; only those actually set are applied.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = host
		case "port":
			cfg.Port = port
		case "store":
			cfg.Backend = backend
		case "log-level":
			cfg.Log.Level = logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveConfigFile returns the config path and whether it was asked for
// explicitly. An implicit ./todo.toml that does not exist is skipped.
func resolveConfigFile(flagPath string) (string, bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if v := os.Getenv("TODO_CONFIG"); v != "" {
		return v, true
	}
	return DefaultConfigFile, false
}

func loadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	setFromEnv(&cfg.Host, "HOST")
	setFromEnv(&cfg.Port, "PORT")
	setFromEnv(&cfg.Backend, "STORE_BACKEND")
	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")
	setFromEnv(&cfg.Log.Format, "LOG_FORMAT")
	setFromEnv(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setFromEnv(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setFromEnv(&cfg.Telegram.APIBase, "TELEGRAM_API_BASE")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
