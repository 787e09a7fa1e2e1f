// Package signapi wraps the cloud signing service CLI used when an API
// token is configured instead of a local certificate.
package signapi

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"shipwright/internal/logging"
	"shipwright/internal/services"
)

var commandContext = exec.CommandContext

// signableExtensions lists the file types the service will accept. Other
// produced files (data, resources) are silently skipped.
var signableExtensions = map[string]struct{}{
	".exe": {},
	".dll": {},
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default service CLI name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithLogger attaches a logger for per-file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// CLI submits files to the signing service.
type CLI struct {
	binary   string
	endpoint string
	token    string
	logger   *slog.Logger
}

// NewCLI constructs a client for the given endpoint and token.
func NewCLI(endpoint, token string, opts ...Option) *CLI {
	cli := &CLI{
		binary:   "signclient",
		endpoint: endpoint,
		token:    token,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Sign submits each recognized executable or library for signing. Every
// failing file is logged; the last failure is returned so the caller sees
// a non-zero result when any file could not be signed.
func (c *CLI) Sign(ctx context.Context, files []string) error {
	if c.token == "" {
		return services.Wrap(services.ErrConfiguration, "signapi", "sign", "api token required", nil)
	}
	if c.endpoint == "" {
		return services.Wrap(services.ErrConfiguration, "signapi", "sign", "endpoint required", nil)
	}

	var lastErr error
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file))
		if _, ok := signableExtensions[ext]; !ok {
			continue
		}
		cmd := commandContext(ctx, c.binary, "sign", "--endpoint", c.endpoint, "--file", file)
		// The token travels via environment so it never appears in process
		// listings.
		cmd.Env = append(os.Environ(), "SIGNCLIENT_TOKEN="+c.token)
		output, err := cmd.CombinedOutput()
		if err != nil {
			c.logger.Error("service signing failed",
				logging.String("file", file),
				logging.Error(err),
			)
			lastErr = services.Wrap(services.ErrExternalTool, "signapi", "sign", file,
				fmt.Errorf("%w: %s", err, string(output)))
		}
	}
	return lastErr
}

// Binary returns the configured tool name, primarily for doctor checks.
func (c *CLI) Binary() string {
	return c.binary
}
