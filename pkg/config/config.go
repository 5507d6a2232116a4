package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds everything read once at process start: the listen address,
// the bearer token, the sandbox root, and the deletion toggle. It is never
// mutated afterwards.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	AuthToken   string `yaml:"auth_token"`
	Root        string `yaml:"root"`
	AllowDelete bool   `yaml:"allow_delete"`
	WatchRoot   bool   `yaml:"watch_root"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies WARDEN_* environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr: ":8787",
		Root:       ".",
		LogLevel:   "info",
		LogFormat:  "json",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if addr := os.Getenv("WARDEN_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if token := os.Getenv("WARDEN_AUTH_TOKEN"); token != "" {
		cfg.AuthToken = token
	}
	if root := os.Getenv("WARDEN_ROOT"); root != "" {
		cfg.Root = root
	}
	if v := os.Getenv("WARDEN_ALLOW_DELETE"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse WARDEN_ALLOW_DELETE: %w", err)
		}
		cfg.AllowDelete = allow
	}
	if v := os.Getenv("WARDEN_WATCH_ROOT"); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse WARDEN_WATCH_ROOT: %w", err)
		}
		cfg.WatchRoot = watch
	}
	if level := os.Getenv("WARDEN_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if format := os.Getenv("WARDEN_LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}

	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("auth token is required (auth_token or WARDEN_AUTH_TOKEN)")
	}
	if info, err := os.Stat(cfg.Root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", cfg.Root)
	}

	return cfg, nil
}
