package targets

import (
	"log/slog"

	"shipwright/internal/config"
	"shipwright/internal/distribution"
	"shipwright/internal/gettext"
	"shipwright/internal/sdkpath"
	"shipwright/internal/services/appbuild"
	"shipwright/internal/services/mdconv"
	"shipwright/internal/services/nsis"
	"shipwright/internal/services/xgettext"
	"shipwright/internal/signing"
)

// Wire constructs the production collaborators for the build graph.
func Wire(cfg *config.Config, logger *slog.Logger) Options {
	signer := signing.FromConfig(cfg, logger)
	builder := appbuild.NewCLI(cfg.Build.Command,
		appbuild.WithOptimize(cfg.Build.Optimize),
		appbuild.WithUIAccess(cfg.Build.UIAccess),
		appbuild.WithDebugFlags(cfg.Build.DebugFlags),
		appbuild.WithLogger(logger),
	)
	generator := distribution.NewGenerator(cfg, builder, sdkpath.Default(), signer,
		distribution.WithLogger(logger))
	extractor := xgettext.NewCLI(cfg.Product.Name, cfg.VersionString(),
		xgettext.WithLogger(logger))
	template := gettext.NewPipeline(cfg.Paths.SourceDir, extractor, Copyright(cfg),
		gettext.WithSourceLanguage(cfg.Build.SourceLanguage),
		gettext.WithLogger(logger))
	return Options{
		Config:    cfg,
		Generator: generator,
		Template:  template,
		Installer: nsis.NewCLI(nsis.WithLogger(logger)),
		Converter: mdconv.NewCLI(mdconv.WithLogger(logger)),
		Signer:    signer,
	}
}
