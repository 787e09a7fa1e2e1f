package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProduct()
	c.normalizeSigning()
	c.normalizeBuild()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProduct() {
	c.Product.Name = strings.TrimSpace(c.Product.Name)
	c.Product.Version = strings.TrimSpace(c.Product.Version)
	c.Product.VersionBuild = strings.TrimSpace(c.Product.VersionBuild)
	c.Product.Publisher = strings.TrimSpace(c.Product.Publisher)
	c.Product.UpdateChannel = strings.TrimSpace(c.Product.UpdateChannel)
}

func (c *Config) normalizeSigning() {
	if c.Signing.APIToken == "" {
		if value, ok := os.LookupEnv("SHIPWRIGHT_SIGNING_TOKEN"); ok {
			c.Signing.APIToken = strings.TrimSpace(value)
		}
	}
	if c.Signing.CertificatePassword == "" {
		if value, ok := os.LookupEnv("SHIPWRIGHT_CERT_PASSWORD"); ok {
			c.Signing.CertificatePassword = value
		}
	}
	c.Signing.CertificateFile = strings.TrimSpace(c.Signing.CertificateFile)
	c.Signing.TimestampServer = strings.TrimSpace(c.Signing.TimestampServer)
	c.Signing.APIToken = strings.TrimSpace(c.Signing.APIToken)
	c.Signing.APIEndpoint = strings.TrimSpace(c.Signing.APIEndpoint)
}

func (c *Config) normalizeBuild() {
	c.Build.Command = strings.TrimSpace(c.Build.Command)
	if c.Build.Command == "" {
		c.Build.Command = defaultBuildCommand
	}
	c.Build.SourceLanguage = strings.TrimSpace(c.Build.SourceLanguage)
	if c.Build.SourceLanguage == "" {
		c.Build.SourceLanguage = defaultSourceLanguage
	}
	if c.Build.AllCores {
		c.Build.Jobs = runtime.NumCPU()
	}
	flags := make([]string, 0, len(c.Build.DebugFlags))
	for _, flag := range c.Build.DebugFlags {
		flag = strings.TrimSpace(flag)
		if flag != "" {
			flags = append(flags, flag)
		}
	}
	c.Build.DebugFlags = flags
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
