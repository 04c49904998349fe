package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMinVersion is the oldest stegseek release known to support the
// seed and crack flags used by steghunt.
const DefaultMinVersion = "0.6.0"

// FileConfig is the on-disk YAML configuration shape for steghunt.
type FileConfig struct {
	Output    *string `yaml:"output"`
	Wordlist  *string `yaml:"wordlist"`
	Recursive *bool   `yaml:"recursive"`
	DupeSkip  *bool   `yaml:"dupe_skip"`
	MinSize   *int64  `yaml:"min_size"`
	Threads   *int    `yaml:"threads"`
	Include   *string `yaml:"include"`
	Exclude   *string `yaml:"exclude"`
	Log       *string `yaml:"log"`
	Quiet     *bool   `yaml:"quiet"`
	NoColor   *bool   `yaml:"no_color"`
	FailFast  *bool   `yaml:"fail_fast"`
	Resume    *bool   `yaml:"resume"`

	// Stegseek integration config
	Stegseek *StegseekConfig `yaml:"stegseek"`
}

// StegseekConfig holds configuration for the stegseek integration.
type StegseekConfig struct {
	// BinaryPath is an explicit path to the stegseek binary.
	// If empty, the binary is searched in $PATH and ~/.steghunt/bin.
	BinaryPath *string `yaml:"binary"`

	// MinVersion warns when the located binary is older than this.
	MinVersion *string `yaml:"min_version"`

	// ErrorMarker is a regular expression matched against every stderr
	// line. Empty means the literal substring "error:".
	ErrorMarker *string `yaml:"error_marker"`

	// Timeout bounds a single invocation (e.g. "90s"). Empty disables it.
	Timeout *string `yaml:"timeout"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a config file in dir.
// It supports .steghunt.yml/.yaml and steghunt.yml/.yaml.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".steghunt.yml", ".steghunt.yaml", "steghunt.yml", "steghunt.yaml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "steghunt", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// GetStegseekConfig returns the stegseek block, never nil.
func (fc FileConfig) GetStegseekConfig() StegseekConfig {
	if fc.Stegseek == nil {
		return StegseekConfig{}
	}
	return *fc.Stegseek
}

// GetBinaryPath returns the custom binary path or empty string.
func (sc StegseekConfig) GetBinaryPath() string {
	if sc.BinaryPath == nil {
		return ""
	}
	return *sc.BinaryPath
}

// GetMinVersion returns the configured minimum version or DefaultMinVersion.
func (sc StegseekConfig) GetMinVersion() string {
	if sc.MinVersion == nil || *sc.MinVersion == "" {
		return DefaultMinVersion
	}
	return *sc.MinVersion
}

// GetErrorMarker returns the configured marker pattern or empty string.
func (sc StegseekConfig) GetErrorMarker() string {
	if sc.ErrorMarker == nil {
		return ""
	}
	return *sc.ErrorMarker
}

// GetTimeout parses the configured timeout. Unset yields zero.
func (sc StegseekConfig) GetTimeout() (time.Duration, error) {
	if sc.Timeout == nil || *sc.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*sc.Timeout)
	if err != nil {
		return 0, fmt.Errorf("stegseek.timeout: %w", err)
	}
	return d, nil
}

// Merge returns sc with the set fields of override applied on top.
func (sc StegseekConfig) Merge(override StegseekConfig) StegseekConfig {
	out := sc
	if override.BinaryPath != nil {
		out.BinaryPath = override.BinaryPath
	}
	if override.MinVersion != nil {
		out.MinVersion = override.MinVersion
	}
	if override.ErrorMarker != nil {
		out.ErrorMarker = override.ErrorMarker
	}
	if override.Timeout != nil {
		out.Timeout = override.Timeout
	}
	return out
}
