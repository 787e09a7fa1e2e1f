// Package nsis wraps the installer-script compiler.
package nsis

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"

	"shipwright/internal/logging"
	"shipwright/internal/services"
)

var commandContext = exec.CommandContext

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default makensis binary name.
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

// CLI invokes the installer-script compiler.
type CLI struct {
	binary string
	logger *slog.Logger
}

// NewCLI constructs a client for the installer compiler.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		binary: "makensis",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Compile builds the installer from the given script, passing defines as
// /D symbol definitions in sorted order so invocations are reproducible.
func (c *CLI) Compile(ctx context.Context, scriptPath string, defines map[string]string) error {
	args := []string{"/V2"}
	keys := make([]string, 0, len(defines))
	for key := range defines {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, "/D"+key+"="+defines[key])
	}
	args = append(args, scriptPath)

	c.logger.Info("compiling installer", logging.String("script", scriptPath))
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "nsis", "compile",
			scriptPath, fmt.Errorf("%w: %s", err, string(output)))
	}
	return nil
}

// Binary returns the configured tool name, primarily for doctor checks.
func (c *CLI) Binary() string {
	return c.binary
}
