// Package config reads server settings from an optional YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-stego-mcp/internal/pixel"
	"github.com/ironsheep/image-stego-mcp/internal/stego"
)

// Environment variable names.
const (
	EnvConfigFile = "IMAGE_STEGO_CONFIG"
	EnvLogLevel   = "IMAGE_STEGO_LOG_LEVEL"
	EnvChannel    = "IMAGE_STEGO_CHANNEL"
	EnvBitPlane   = "IMAGE_STEGO_BIT_PLANE"
	EnvWorkers    = "IMAGE_STEGO_WORKERS"
)

// Config holds the server defaults.
type Config struct {
	// Debug enables verbose logging to stderr.
	Debug bool
	// Options are applied when a tool call does not name a channel or bit plane.
	Options stego.Options
	// Workers bounds batch concurrency.
	Workers int
}

// File is the YAML form of the configuration. Every field is optional:
//
//	log_level: debug
//	channel: blue
//	bit_plane: 1
//	workers: 4
type File struct {
	LogLevel string `yaml:"log_level"`
	Channel  string `yaml:"channel"`
	BitPlane *int   `yaml:"bit_plane"`
	Workers  int    `yaml:"workers"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Options: stego.DefaultOptions(),
		Workers: runtime.NumCPU(),
	}
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a configuration from an environment lookup function.
// Values from the file named by IMAGE_STEGO_CONFIG are applied first; the
// individual variables override them.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup(EnvConfigFile); ok && strings.TrimSpace(path) != "" {
		f, err := ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := f.apply(&cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	if v, ok := lookup(EnvLogLevel); ok {
		cfg.Debug = isDebug(v)
	}

	if v, ok := lookup(EnvChannel); ok {
		if err := setChannel(&cfg, v); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvChannel, err)
		}
	}

	if v, ok := lookup(EnvBitPlane); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%s: %w: %q (must be 0-7)", EnvBitPlane, pixel.ErrInvalidPlane, v)
		}
		if err := setPlane(&cfg, n); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvBitPlane, err)
		}
	}

	if v, ok := lookup(EnvWorkers); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%s: invalid worker count %q", EnvWorkers, v)
		}
		if err := setWorkers(&cfg, n); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvWorkers, err)
		}
	}

	return cfg, nil
}

// ReadFile parses a YAML configuration file. Unknown keys are rejected so a
// misspelt setting does not silently fall back to its default.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &f, nil
}

func (f *File) apply(cfg *Config) error {
	if f.LogLevel != "" {
		cfg.Debug = isDebug(f.LogLevel)
	}
	if f.Channel != "" {
		if err := setChannel(cfg, f.Channel); err != nil {
			return fmt.Errorf("channel: %w", err)
		}
	}
	if f.BitPlane != nil {
		if err := setPlane(cfg, *f.BitPlane); err != nil {
			return fmt.Errorf("bit_plane: %w", err)
		}
	}
	if f.Workers != 0 {
		if err := setWorkers(cfg, f.Workers); err != nil {
			return fmt.Errorf("workers: %w", err)
		}
	}
	return nil
}

func isDebug(level string) bool {
	return strings.EqualFold(strings.TrimSpace(level), "debug")
}

func setChannel(cfg *Config, v string) error {
	c, err := pixel.ParseChannel(v)
	if err != nil {
		return err
	}
	cfg.Options.Channel = c
	return nil
}

func setPlane(cfg *Config, n int) error {
	if n < 0 || n > 7 {
		return fmt.Errorf("%w: %d (must be 0-7)", pixel.ErrInvalidPlane, n)
	}
	cfg.Options.Plane = pixel.Plane(n)
	return nil
}

func setWorkers(cfg *Config, n int) error {
	if n < 1 {
		return fmt.Errorf("invalid worker count %d", n)
	}
	cfg.Workers = n
	return nil
}
