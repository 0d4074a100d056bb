package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"keyframer/internal/config"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	config     *config.Config
	configPath string
	configErr  error
	loaded     bool
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

// ensureConfig loads the configuration once, applying any extraction flags
// the invoked command defines and the user set.
func (c *commandContext) ensureConfig(flags *pflag.FlagSet) (*config.Config, error) {
	if c.loaded {
		return c.config, c.configErr
	}
	c.loaded = true

	overrides, err := c.overrides(flags)
	if err != nil {
		c.configErr = err
		return nil, err
	}
	cfg, path, _, err := config.Load(c.configFilePath(), overrides...)
	if err != nil {
		c.configErr = err
		return nil, err
	}
	c.config = cfg
	c.configPath = path
	return c.config, nil
}

func (c *commandContext) configFilePath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// overrides maps changed command-line flags onto config fields. Flags the
// command does not define are ignored.
func (c *commandContext) overrides(flags *pflag.FlagSet) ([]config.Override, error) {
	var out []config.Override

	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		level := *c.logLevelFlag
		out = append(out, func(cfg *config.Config) { cfg.Logging.Level = level })
	}
	if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
		format := *c.logFormatFlag
		out = append(out, func(cfg *config.Config) { cfg.Logging.Format = format })
	}
	if flags == nil {
		return out, nil
	}

	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	stringFlag := func(name string, apply func(*config.Config, string)) error {
		if !changed(name) {
			return nil
		}
		value, err := flags.GetString(name)
		if err != nil {
			return fmt.Errorf("read --%s: %w", name, err)
		}
		out = append(out, func(cfg *config.Config) { apply(cfg, value) })
		return nil
	}
	intFlag := func(name string, apply func(*config.Config, int)) error {
		if !changed(name) {
			return nil
		}
		value, err := flags.GetInt(name)
		if err != nil {
			return fmt.Errorf("read --%s: %w", name, err)
		}
		out = append(out, func(cfg *config.Config) { apply(cfg, value) })
		return nil
	}
	boolFlag := func(name string, apply func(*config.Config, bool)) error {
		if !changed(name) {
			return nil
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return fmt.Errorf("read --%s: %w", name, err)
		}
		out = append(out, func(cfg *config.Config) { apply(cfg, value) })
		return nil
	}

	steps := []error{
		stringFlag("input", func(cfg *config.Config, v string) { cfg.Paths.InputDir = v }),
		stringFlag("output", func(cfg *config.Config, v string) { cfg.Paths.OutputDir = v }),
		intFlag("threads", func(cfg *config.Config, v int) { cfg.Extraction.Workers = v }),
		intFlag("quality", func(cfg *config.Config, v int) { cfg.Extraction.Quality = v }),
		stringFlag("extensions", func(cfg *config.Config, v string) { cfg.Extraction.Extensions = config.SplitExtensions(v) }),
		stringFlag("layout", func(cfg *config.Config, v string) { cfg.Extraction.Layout = v }),
		boolFlag("completion-marker", func(cfg *config.Config, v bool) { cfg.Extraction.CompletionMarker = v }),
		stringFlag("ffmpeg", func(cfg *config.Config, v string) { cfg.Extraction.FFmpegBinary = v }),
		boolFlag("ledger", func(cfg *config.Config, v bool) { cfg.Ledger.Enabled = v }),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
