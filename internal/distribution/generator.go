// Package distribution builds the distributable application tree: it
// stamps the version into the sources, runs the external application
// build, copies the platform runtime libraries, and signs the entry-point
// binaries.
package distribution

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shipwright/internal/config"
	"shipwright/internal/fileutil"
	"shipwright/internal/logging"
	"shipwright/internal/sdkpath"
	"shipwright/internal/services"
	"shipwright/internal/signing"
	"shipwright/internal/stamp"
)

// Builder compiles the source tree into the distribution directory.
// Satisfied by the appbuild CLI client; tests substitute a fake.
type Builder interface {
	Build(ctx context.Context, outputDir string) error
}

// Generator drives a single distribution build. Each step's failure is
// fatal: a partial distribution is never valid, so there are no retries
// at this level (the certificate signer retries internally).
type Generator struct {
	cfg      *config.Config
	builder  Builder
	resolver sdkpath.Resolver
	signer   signing.Signer
	arch     string
	logger   *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithArch overrides the redistributable architecture, default x86.
func WithArch(arch string) GeneratorOption {
	return func(g *Generator) {
		if arch != "" {
			g.arch = arch
		}
	}
}

// WithLogger attaches a logger for step progress.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator wires a generator from its collaborators.
func NewGenerator(cfg *config.Config, builder Builder, resolver sdkpath.Resolver, signer signing.Signer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		cfg:      cfg,
		builder:  builder,
		resolver: resolver,
		signer:   signer,
		arch:     "x86",
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EntryPointBinaries returns the distribution-relative names of the
// executables that must be signed: the launcher, the elevated-UI variant,
// the background service, and the updater.
func EntryPointBinaries(productName string) []string {
	name := strings.ToLower(strings.TrimSpace(productName))
	return []string{
		name + ".exe",
		name + "_uiAccess.exe",
		name + "_service.exe",
		name + "_updater.exe",
	}
}

// Generate runs the distribution build end to end. The version stamp is
// cleaned up unconditionally, even on failure, so a stale stamp never
// leaks into a later build.
func (g *Generator) Generate(ctx context.Context) error {
	info := stamp.Info{
		Version:       g.cfg.VersionString(),
		Publisher:     g.cfg.Product.Publisher,
		UpdateChannel: g.cfg.Product.UpdateChannel,
		Release:       g.cfg.Product.Release,
	}
	sourceDir := g.cfg.Paths.SourceDir
	outputDir := g.cfg.Paths.DistDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "distribution", "generate", outputDir, err)
	}

	stampPath, err := stamp.Write(sourceDir, info)
	if err != nil {
		return err
	}
	defer stamp.Cleanup(sourceDir, g.logger)
	g.logger.Info("version stamp written",
		logging.String("path", stampPath),
		logging.String("version", info.Version),
	)

	if err := g.builder.Build(ctx, outputDir); err != nil {
		return err
	}

	copied, err := g.copyRuntimeLibraries(outputDir)
	if err != nil {
		return err
	}
	g.logger.Info("runtime libraries copied", logging.Int("count", copied))

	if g.signer != nil && g.signer.Mode() != config.SigningDisabled {
		var targets []string
		for _, binary := range EntryPointBinaries(g.cfg.Product.Name) {
			targets = append(targets, filepath.Join(outputDir, binary))
		}
		if err := g.signer.Sign(ctx, targets); err != nil {
			return err
		}
		g.logger.Info("entry-point binaries signed", logging.Int("count", len(targets)))
	}
	return nil
}

// copyRuntimeLibraries copies every redistributable DLL from the SDK into
// the distribution output.
func (g *Generator) copyRuntimeLibraries(outputDir string) (int, error) {
	crtDir, err := g.resolver.LocateCRT(g.arch)
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(crtDir)
	if err != nil {
		return 0, services.Wrap(services.ErrNotFound, "distribution", "copy_runtime", crtDir, err)
	}
	copied := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".dll") {
			continue
		}
		src := filepath.Join(crtDir, entry.Name())
		dst := filepath.Join(outputDir, entry.Name())
		if err := fileutil.CopyVerified(src, dst); err != nil {
			return copied, services.Wrap(services.ErrConfiguration, "distribution", "copy_runtime",
				entry.Name(), err)
		}
		copied++
	}
	if copied == 0 {
		return 0, services.Wrap(services.ErrNotFound, "distribution", "copy_runtime", crtDir,
			fmt.Errorf("no redistributable libraries found"))
	}
	return copied, nil
}
