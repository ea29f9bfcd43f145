// Package config loads, defaults and validates the diskview configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (DISKVIEW_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
//
// Loading never partially applies: Load returns either a fully defaulted,
// validated configuration or an error.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the complete diskview configuration.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Parser bounds the untrusted-structure walks
	Parser ParserConfig `mapstructure:"parser" yaml:"parser"`

	// Search sets analytic query defaults
	Search SearchConfig `mapstructure:"search" yaml:"search"`

	// Export sets export defaults
	Export ExportConfig `mapstructure:"export" yaml:"export"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// ParserConfig bounds the parse pipeline's traversal of untrusted structure.
//
// The limits exist to guarantee termination and forward progress on corrupt
// or adversarial images; they cannot be disabled, only sized.
type ParserConfig struct {
	// MaxTreeDepth caps directory-index recursion depth
	MaxTreeDepth int `mapstructure:"max_tree_depth" yaml:"max_tree_depth" validate:"required,gt=0,lte=64"`

	// MaxLeafEntries caps entries decoded per leaf node
	MaxLeafEntries int `mapstructure:"max_leaf_entries" yaml:"max_leaf_entries" validate:"required,gt=0"`

	// MaxChildPointers caps child pointers followed per internal node
	MaxChildPointers int `mapstructure:"max_child_pointers" yaml:"max_child_pointers" validate:"required,gt=0"`

	// MaxScanEntries caps entries visited per metadata-region scan
	MaxScanEntries int `mapstructure:"max_scan_entries" yaml:"max_scan_entries" validate:"required,gt=0"`

	// MinEntryStep is the minimum forward step per metadata entry in bytes
	MinEntryStep int `mapstructure:"min_entry_step" yaml:"min_entry_step" validate:"required,gte=8"`

	// BlockBudget caps total index blocks visited per traversal
	BlockBudget int `mapstructure:"block_budget" yaml:"block_budget" validate:"required,gt=0"`
}

// SearchConfig sets analytic query defaults.
type SearchConfig struct {
	// LargeFileThreshold is the minimum size in bytes for the large-file
	// query
	LargeFileThreshold uint64 `mapstructure:"large_file_threshold" yaml:"large_file_threshold" validate:"required,gt=0"`

	// RecentDays is the window for the recently-modified query
	RecentDays int `mapstructure:"recent_days" yaml:"recent_days" validate:"required,gt=0"`
}

// ExportConfig sets export defaults. Each field maps to the corresponding
// export option; the CLI may override all of them per call.
type ExportConfig struct {
	// Format is the default export format
	// Valid values: json, csv, xml, html
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=json csv xml html"`

	IncludeMetadata bool `mapstructure:"include_metadata" yaml:"include_metadata"`
	IncludeDeleted  bool `mapstructure:"include_deleted" yaml:"include_deleted"`
	IncludeHashes   bool `mapstructure:"include_hashes" yaml:"include_hashes"`
	Flatten         bool `mapstructure:"flatten" yaml:"flatten"`

	// Prefix names export artifacts
	Prefix string `mapstructure:"prefix" yaml:"prefix" validate:"required"`
}

// Load reads the configuration from the given file (or the default search
// paths when path is empty), applies environment overrides and defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("diskview")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.diskview")
	}

	v.SetEnvPrefix("DISKVIEW")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file anywhere on the search path: run on defaults.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the fully defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// DumpDefault renders the default configuration as YAML, for writing an
// initial config file.
func DumpDefault() ([]byte, error) {
	return yaml.Marshal(Default())
}
