package config

import "strings"

// Default values. Parser limits mirror image.DefaultLimits; they are spelled
// out here so a dumped config file is self-describing.
const (
	defaultLogLevel = "INFO"

	defaultMaxTreeDepth     = 10
	defaultMaxLeafEntries   = 100
	defaultMaxChildPointers = 50
	defaultMaxScanEntries   = 1000
	defaultMinEntryStep     = 128
	defaultBlockBudget      = 4096

	defaultLargeFileThreshold = 100 * 1024 * 1024
	defaultRecentDays         = 7

	defaultExportFormat = "json"
	defaultExportPrefix = "diskview-export"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields.
//
// Zero values (0, "", false) are replaced with defaults; explicit values are
// preserved. Booleans default to false by construction.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyParserDefaults(&cfg.Parser)
	applySearchDefaults(&cfg.Search)
	applyExportDefaults(&cfg.Export)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = defaultLogLevel
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)
}

func applyParserDefaults(cfg *ParserConfig) {
	if cfg.MaxTreeDepth == 0 {
		cfg.MaxTreeDepth = defaultMaxTreeDepth
	}
	if cfg.MaxLeafEntries == 0 {
		cfg.MaxLeafEntries = defaultMaxLeafEntries
	}
	if cfg.MaxChildPointers == 0 {
		cfg.MaxChildPointers = defaultMaxChildPointers
	}
	if cfg.MaxScanEntries == 0 {
		cfg.MaxScanEntries = defaultMaxScanEntries
	}
	if cfg.MinEntryStep == 0 {
		cfg.MinEntryStep = defaultMinEntryStep
	}
	if cfg.BlockBudget == 0 {
		cfg.BlockBudget = defaultBlockBudget
	}
}

func applySearchDefaults(cfg *SearchConfig) {
	if cfg.LargeFileThreshold == 0 {
		cfg.LargeFileThreshold = defaultLargeFileThreshold
	}
	if cfg.RecentDays == 0 {
		cfg.RecentDays = defaultRecentDays
	}
}

func applyExportDefaults(cfg *ExportConfig) {
	if cfg.Format == "" {
		cfg.Format = defaultExportFormat
	}
	cfg.Format = strings.ToLower(cfg.Format)

	if cfg.Prefix == "" {
		cfg.Prefix = defaultExportPrefix
	}
}
