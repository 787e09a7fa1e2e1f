// Package appbuild wraps the external application build command that
// compiles the source tree into the distribution directory.
package appbuild

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

// WithOptimize enables language-runtime optimization flags.
func WithOptimize(optimize bool) Option {
	return func(c *CLI) {
		c.optimize = optimize
	}
}

// WithUIAccess requests the elevated-UI capability in produced binaries.
func WithUIAccess(uiAccess bool) Option {
	return func(c *CLI) {
		c.uiAccess = uiAccess
	}
}

// WithDebugFlags forwards debug flags to the build command.
func WithDebugFlags(flags []string) Option {
	return func(c *CLI) {
		c.debugFlags = append([]string(nil), flags...)
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

// CLI invokes the configured application build command.
type CLI struct {
	command    string
	optimize   bool
	uiAccess   bool
	debugFlags []string
	logger     *slog.Logger
}

// NewCLI constructs a client around the given build command.
func NewCLI(command string, opts ...Option) *CLI {
	cli := &CLI{
		command: command,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Build compiles the application into outputDir. Any non-zero exit is
// fatal for the distribution being built.
func (c *CLI) Build(ctx context.Context, outputDir string) error {
	if c.command == "" {
		return services.Wrap(services.ErrConfiguration, "appbuild", "build", "build command required", nil)
	}
	args := []string{"--warn=all"}
	if c.optimize {
		args = append(args, "--optimize")
	}
	if c.uiAccess {
		args = append(args, "--ui-access")
	}
	for _, flag := range c.debugFlags {
		args = append(args, "--debug="+flag)
	}
	args = append(args, outputDir)

	c.logger.Info("running application build",
		logging.String("command", c.command),
		logging.String("output", outputDir),
	)
	cmd := commandContext(ctx, c.command, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "appbuild", "build",
			outputDir, fmt.Errorf("%w: %s", err, string(output)))
	}
	return nil
}

// Binary returns the configured command name, primarily for doctor checks.
func (c *CLI) Binary() string {
	return c.command
}
