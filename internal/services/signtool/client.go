// Package signtool wraps the local certificate signing tool.
package signtool

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"shipwright/internal/logging"
	"shipwright/internal/services"
)

var commandContext = exec.CommandContext

// signAttempts bounds retries per file. Timestamping against a remote
// server is flaky, so a failed invocation is repeated after a short delay.
const signAttempts = 3

const defaultRetryDelay = time.Second

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default signtool binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithPassword supplies the certificate password.
func WithPassword(password string) Option {
	return func(c *CLI) {
		c.password = password
	}
}

// WithTimestampServer enables countersigning against the given server.
func WithTimestampServer(server string) Option {
	return func(c *CLI) {
		c.timestampServer = server
	}
}

// WithRetryDelay overrides the delay between attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *CLI) {
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// WithLogger attaches a logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// CLI invokes the signing tool with a local certificate file.
type CLI struct {
	binary          string
	certificateFile string
	password        string
	timestampServer string
	retryDelay      time.Duration
	logger          *slog.Logger
}

// NewCLI constructs a client for the given certificate file.
func NewCLI(certificateFile string, opts ...Option) *CLI {
	cli := &CLI{
		binary:          "signtool",
		certificateFile: certificateFile,
		retryDelay:      defaultRetryDelay,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Sign embeds a signature into each file in place. Every file gets up to
// signAttempts invocations; the first zero exit wins, and the last failure
// is returned after retries are exhausted. A failed file aborts the batch
// because partially signed artifacts are not shippable.
func (c *CLI) Sign(ctx context.Context, files []string) error {
	if c.certificateFile == "" {
		return services.Wrap(services.ErrConfiguration, "signtool", "sign", "certificate file required", nil)
	}
	for _, file := range files {
		if err := c.signFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) signFile(ctx context.Context, file string) error {
	args := []string{"sign", "/fd", "SHA256", "/f", c.certificateFile}
	if c.password != "" {
		args = append(args, "/p", c.password)
	}
	if c.timestampServer != "" {
		args = append(args, "/tr", c.timestampServer, "/td", "SHA256")
	}
	args = append(args, file)

	var lastErr error
	for attempt := 1; attempt <= signAttempts; attempt++ {
		cmd := commandContext(ctx, c.binary, args...)
		output, err := cmd.CombinedOutput()
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("%w: %s", err, string(output))
		c.logger.Warn("signing attempt failed",
			logging.String("file", file),
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
		if attempt == signAttempts {
			break
		}
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return services.Wrap(services.ErrExternalTool, "signtool", "sign", file, lastErr)
}

// Binary returns the configured tool name, primarily for doctor checks.
func (c *CLI) Binary() string {
	return c.binary
}
