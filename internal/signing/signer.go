// Package signing resolves the configured code-signing strategy once and
// exposes it behind a single Sign operation.
//
// The strategy is a tagged variant over {certificate, api-token, disabled}
// selected at configuration load. Callers never re-branch on credentials;
// they hold a Signer and call Sign. Configuration validation guarantees the
// two credential kinds are never both present.
package signing

import (
	"context"
	"log/slog"

	"shipwright/internal/config"
	"shipwright/internal/services/signapi"
	"shipwright/internal/services/signtool"
)

// Signer embeds signatures into produced binaries in place. A non-nil
// error means the artifact must be treated as unshippable; there is no
// rollback of partially signed batches.
type Signer interface {
	Sign(ctx context.Context, files []string) error
	Mode() config.SigningMode
}

// FromConfig resolves the signing strategy for the given configuration.
func FromConfig(cfg *config.Config, logger *slog.Logger) Signer {
	switch cfg.SigningMode() {
	case config.SigningCertificate:
		return &certificateSigner{
			cli: signtool.NewCLI(cfg.Signing.CertificateFile,
				signtool.WithPassword(cfg.Signing.CertificatePassword),
				signtool.WithTimestampServer(cfg.Signing.TimestampServer),
				signtool.WithLogger(logger),
			),
		}
	case config.SigningAPIToken:
		return &serviceSigner{
			cli: signapi.NewCLI(cfg.Signing.APIEndpoint, cfg.Signing.APIToken,
				signapi.WithLogger(logger),
			),
		}
	default:
		return disabledSigner{}
	}
}

type certificateSigner struct {
	cli *signtool.CLI
}

func (s *certificateSigner) Sign(ctx context.Context, files []string) error {
	return s.cli.Sign(ctx, files)
}

func (s *certificateSigner) Mode() config.SigningMode {
	return config.SigningCertificate
}

type serviceSigner struct {
	cli *signapi.CLI
}

func (s *serviceSigner) Sign(ctx context.Context, files []string) error {
	return s.cli.Sign(ctx, files)
}

func (s *serviceSigner) Mode() config.SigningMode {
	return config.SigningAPIToken
}

type disabledSigner struct{}

func (disabledSigner) Sign(context.Context, []string) error {
	return nil
}

func (disabledSigner) Mode() config.SigningMode {
	return config.SigningDisabled
}
