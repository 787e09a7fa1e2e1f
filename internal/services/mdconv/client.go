// Package mdconv wraps the external markdown to HTML converter used for
// the user documentation.
package mdconv

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

// WithBinary overrides the default converter binary name.
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

// CLI invokes the markdown converter for one document at a time.
type CLI struct {
	binary string
	logger *slog.Logger
}

// NewCLI constructs a converter client.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		binary: "pandoc",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert renders one markdown document to a standalone HTML file.
func (c *CLI) Convert(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"--from=markdown",
		"--to=html5",
		"--standalone",
		"-o", outputPath,
		inputPath,
	}
	c.logger.Debug("converting document",
		logging.String("input", inputPath),
		logging.String("output", outputPath),
	)
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "mdconv", "convert",
			inputPath, fmt.Errorf("%w: %s", err, string(output)))
	}
	return nil
}

// Binary returns the configured tool name, primarily for doctor checks.
func (c *CLI) Binary() string {
	return c.binary
}
