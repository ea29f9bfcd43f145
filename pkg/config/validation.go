package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This uses go-playground/validator for declarative validation via struct
// tags, with additional custom validation for rules that cannot be expressed
// in tags. Log level normalization happens in ApplyDefaults, not here.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// The block budget must admit at least one internal node's fanout or a
	// two-level index can never reach its leaves.
	if cfg.Parser.BlockBudget < cfg.Parser.MaxChildPointers+1 {
		return fmt.Errorf("parser: block_budget %d is smaller than max_child_pointers+1 (%d)",
			cfg.Parser.BlockBudget, cfg.Parser.MaxChildPointers+1)
	}

	if cfg.Parser.MaxScanEntries > 1_000_000 {
		return fmt.Errorf("parser: max_scan_entries %d exceeds the 1000000 hard ceiling", cfg.Parser.MaxScanEntries)
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
