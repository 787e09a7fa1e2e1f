package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable. It runs before any build
// action so conflicting options never reach the graph.
func (c *Config) Validate() error {
	if err := c.validateProduct(); err != nil {
		return err
	}
	if err := c.validateSigning(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBuild(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProduct() error {
	if c.Product.Name == "" {
		return errors.New("product.name must be set")
	}
	if strings.ContainsAny(c.Product.Name, `/\`) {
		return fmt.Errorf("product.name must not contain path separators: %q", c.Product.Name)
	}
	if c.Product.Version == "" {
		return errors.New("product.version must be set")
	}
	if c.Product.Release && c.Product.VersionBuild != "" {
		return errors.New("product.version_build must be empty for release builds")
	}
	return nil
}

func (c *Config) validateSigning() error {
	if c.Signing.CertificateFile != "" && c.Signing.APIToken != "" {
		return errors.New("signing.certificate_file and signing.api_token are mutually exclusive; configure at most one")
	}
	if c.Signing.APIToken != "" && c.Signing.APIEndpoint == "" {
		return errors.New("signing.api_endpoint must be set when signing.api_token is configured")
	}
	if c.Signing.CertificatePassword != "" && c.Signing.CertificateFile == "" {
		return errors.New("signing.certificate_password requires signing.certificate_file")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		return errors.New("paths.source_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.SourceDir == c.Paths.OutputDir {
		return errors.New("paths.output_dir must differ from paths.source_dir")
	}
	return nil
}

func (c *Config) validateBuild() error {
	if c.Build.Jobs < 0 {
		return errors.New("build.jobs must be zero or positive")
	}
	if _, err := language.Parse(c.Build.SourceLanguage); err != nil {
		return fmt.Errorf("build.source_language %q is not a valid language tag: %w", c.Build.SourceLanguage, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
