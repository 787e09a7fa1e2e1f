package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// overrideSetters maps recognized --set keys onto config fields. Unknown
// keys are a configuration error so typos never silently build the wrong
// distribution.
var overrideSetters = map[string]func(*Config, string) error{
	"product.version": func(c *Config, v string) error {
		c.Product.Version = v
		return nil
	},
	"product.version_build": func(c *Config, v string) error {
		c.Product.VersionBuild = v
		return nil
	},
	"product.release": func(c *Config, v string) error {
		return setBool(&c.Product.Release, v)
	},
	"product.publisher": func(c *Config, v string) error {
		c.Product.Publisher = v
		return nil
	},
	"product.update_channel": func(c *Config, v string) error {
		c.Product.UpdateChannel = v
		return nil
	},
	"signing.certificate_file": func(c *Config, v string) error {
		c.Signing.CertificateFile = v
		return nil
	},
	"signing.certificate_password": func(c *Config, v string) error {
		c.Signing.CertificatePassword = v
		return nil
	},
	"signing.timestamp_server": func(c *Config, v string) error {
		c.Signing.TimestampServer = v
		return nil
	},
	"signing.api_token": func(c *Config, v string) error {
		c.Signing.APIToken = v
		return nil
	},
	"signing.api_endpoint": func(c *Config, v string) error {
		c.Signing.APIEndpoint = v
		return nil
	},
	"paths.source_dir": func(c *Config, v string) error {
		c.Paths.SourceDir = v
		return nil
	},
	"paths.output_dir": func(c *Config, v string) error {
		c.Paths.OutputDir = v
		return nil
	},
	"paths.state_dir": func(c *Config, v string) error {
		c.Paths.StateDir = v
		return nil
	},
	"build.command": func(c *Config, v string) error {
		c.Build.Command = v
		return nil
	},
	"build.optimize": func(c *Config, v string) error {
		return setBool(&c.Build.Optimize, v)
	},
	"build.ui_access": func(c *Config, v string) error {
		return setBool(&c.Build.UIAccess, v)
	},
	"build.jobs": func(c *Config, v string) error {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("build.jobs: %w", err)
		}
		c.Build.Jobs = jobs
		return nil
	},
	"build.all_cores": func(c *Config, v string) error {
		return setBool(&c.Build.AllCores, v)
	},
	"logging.format": func(c *Config, v string) error {
		c.Logging.Format = v
		return nil
	},
	"logging.level": func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	},
}

func (c *Config) applyOverrides(overrides map[string]string) error {
	if len(overrides) == 0 {
		return nil
	}
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		setter, ok := overrideSetters[strings.TrimSpace(key)]
		if !ok {
			return fmt.Errorf("unknown option %q (see 'shipwright config options')", key)
		}
		if err := setter(c, overrides[key]); err != nil {
			return err
		}
	}
	return nil
}

// OverrideKeys lists every key recognized by --set, sorted.
func OverrideKeys() []string {
	keys := make([]string, 0, len(overrideSetters))
	for key := range overrideSetters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ParseOverride splits a key=value argument.
func ParseOverride(arg string) (string, string, error) {
	key, value, found := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", fmt.Errorf("invalid override %q: expected key=value", arg)
	}
	return key, value, nil
}

func setBool(target *bool, value string) error {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*target = parsed
	return nil
}
