package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"shipwright/internal/config"
	"shipwright/internal/logging"
)

type commandContext struct {
	configFlag *string
	setFlags   *[]string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, setFlags *[]string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		setFlags:   setFlags,
	}
}

func (c *commandContext) overrides() (map[string]string, error) {
	if c.setFlags == nil || len(*c.setFlags) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(*c.setFlags))
	for _, arg := range *c.setFlags {
		key, value, err := config.ParseOverride(arg)
		if err != nil {
			return nil, err
		}
		overrides[key] = value
	}
	return overrides, nil
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		overrides, err := c.overrides()
		if err != nil {
			c.configErr = err
			return
		}
		cfg, resolved, _, err := config.Load(path, overrides)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
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
