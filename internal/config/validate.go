package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateLedger()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.InputDir != "" && c.Paths.InputDir == c.Paths.OutputDir {
		return errors.New("paths.output_dir must differ from paths.input_dir")
	}
	return nil
}

// Quality is not range-checked here; ffmpeg rejects out-of-range values.
func (c *Config) validateExtraction() error {
	if c.Extraction.Workers <= 0 {
		return errors.New("extraction.workers must be positive")
	}
	if len(c.Extraction.Extensions) == 0 {
		return errors.New("extraction.extensions must list at least one extension")
	}
	switch c.Extraction.Layout {
	case LayoutStem, LayoutRelative:
	default:
		return fmt.Errorf("extraction.layout: unsupported value %q (use %q or %q)", c.Extraction.Layout, LayoutStem, LayoutRelative)
	}
	if c.Extraction.FFmpegBinary == "" {
		return errors.New("extraction.ffmpeg_binary must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.Enabled && c.Ledger.Path == "" {
		return errors.New("ledger.path must be set when ledger.enabled is true")
	}
	return nil
}
