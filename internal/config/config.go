package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/zrbsprite/cell/internal/logging"
)

var ErrInvalid = errors.New("config: invalid")

// Config is the CLI configuration. Every field has a default, so a missing
// file key keeps it.
type Config struct {
	LogLevel string
	Pretty   bool
	Serve    Serve
}

type Serve struct {
	Addr      string
	HotReload bool
	Debounce  time.Duration
}

// fileConfig is the TOML layout of a config file.
type fileConfig struct {
	LogLevel string    `toml:"log_level"`
	Pretty   bool      `toml:"pretty"`
	Serve    fileServe `toml:"serve"`
}

type fileServe struct {
	Addr      string `toml:"addr"`
	HotReload bool   `toml:"hot_reload"`
	Debounce  string `toml:"debounce"`
}

func Default() Config {
	return Config{
		LogLevel: logging.DefaultLevel,
		Serve: Serve{
			Addr:      "127.0.0.1:8080",
			HotReload: true,
			Debounce:  100 * time.Millisecond,
		},
	}
}

// Load overlays the keys defined in the TOML file at path onto the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %s", ErrInvalid, undecoded[0])
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("pretty") {
		cfg.Pretty = raw.Pretty
	}
	if meta.IsDefined("serve", "addr") {
		cfg.Serve.Addr = strings.TrimSpace(raw.Serve.Addr)
	}
	if meta.IsDefined("serve", "hot_reload") {
		cfg.Serve.HotReload = raw.Serve.HotReload
	}
	if meta.IsDefined("serve", "debounce") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Serve.Debounce))
		if err != nil {
			return Config{}, fmt.Errorf("%w: serve.debounce: %v", ErrInvalid, err)
		}
		cfg.Serve.Debounce = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	if strings.TrimSpace(c.Serve.Addr) == "" {
		return fmt.Errorf("%w: serve.addr is required", ErrInvalid)
	}
	if c.Serve.Debounce < 0 {
		return fmt.Errorf("%w: serve.debounce must not be negative", ErrInvalid)
	}
	return nil
}
