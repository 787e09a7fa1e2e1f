// Package xgettext wraps the external translation-string extraction tool.
package xgettext

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"shipwright/internal/logging"
	"shipwright/internal/services"
)

var commandContext = exec.CommandContext

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default xgettext binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithLogger attaches a logger for invocation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// CLI invokes xgettext to produce a translation catalog template.
type CLI struct {
	binary         string
	packageName    string
	packageVersion string
	logger         *slog.Logger
}

// NewCLI constructs a client stamping the given package metadata into the
// generated template.
func NewCLI(packageName, packageVersion string, opts ...Option) *CLI {
	cli := &CLI{
		binary:         "xgettext",
		packageName:    packageName,
		packageVersion: packageVersion,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Extract runs the tool against the sources named in fileListPath and
// writes the template to outputPath. The file list is passed by path
// rather than expanded onto the command line because the source set can
// exceed command-line length limits.
func (c *CLI) Extract(ctx context.Context, outputPath, fileListPath string) error {
	args := []string{
		"-o", outputPath,
		"--package-name", c.packageName,
		"--package-version", c.packageVersion,
		"--foreign-user",
		"--add-comments=Translators:",
		"--keyword=ngettext:1,2",
		"--keyword=pgettext:1c,2",
		"--from-code=UTF-8",
		"--language=Python",
		"--files-from=" + fileListPath,
	}
	c.logger.Debug("running string extraction",
		logging.String("binary", c.binary),
		logging.String("output", outputPath),
	)
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "xgettext", "extract",
			outputPath, fmt.Errorf("%w: %s", err, string(output)))
	}
	return nil
}

// Binary returns the configured tool name, primarily for doctor checks.
func (c *CLI) Binary() string {
	return c.binary
}
