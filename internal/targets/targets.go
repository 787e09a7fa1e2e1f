// Package targets assembles the build graph: the distribution itself plus
// the artifacts layered on top of it (installer, archives, translation
// template, module inventory, documentation).
package targets

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"shipwright/internal/archive"
	"shipwright/internal/config"
	"shipwright/internal/graph"
	"shipwright/internal/signing"
)

// DistributionGenerator builds the distribution tree.
type DistributionGenerator interface {
	Generate(ctx context.Context) error
}

// TemplateGenerator produces the translation catalog template.
type TemplateGenerator interface {
	Run(ctx context.Context, outputPath string) error
}

// InstallerCompiler compiles the installer script into an executable.
type InstallerCompiler interface {
	Compile(ctx context.Context, scriptPath string, defines map[string]string) error
}

// DocConverter renders one markdown document to HTML.
type DocConverter interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
}

// Options names the collaborators the graph's actions are built from.
type Options struct {
	Config    *config.Config
	Generator DistributionGenerator
	Template  TemplateGenerator
	Installer InstallerCompiler
	Converter DocConverter
	Signer    signing.Signer
}

// Build assembles and validates the full build graph.
func Build(opts Options) (*graph.Graph, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("targets: config is required")
	}
	cfg := opts.Config
	paths := cfg.Paths
	distDir := paths.DistDir()
	scriptPath := filepath.Join(paths.SourceDir, "installer", cfg.Product.Name+".nsi")
	installerPath := paths.ArtifactPath(artifactName(cfg, ".exe"))
	clientDir := filepath.Join(distDir, "client")
	docsDir := filepath.Join(paths.SourceDir, "docs")

	list := []graph.Target{
		{
			Name:    "dist",
			Doc:     "Build the application distribution tree",
			Sources: []string{paths.SourceDir},
			Outputs: []string{distDir},
			Action: func(ctx context.Context) error {
				return opts.Generator.Generate(ctx)
			},
		},
		{
			Name:    "installer",
			Doc:     "Compile and sign the installer executable",
			Deps:    []string{"dist"},
			Sources: []string{scriptPath, distDir},
			Outputs: []string{installerPath},
			Action: func(ctx context.Context) error {
				defines := map[string]string{
					"PRODUCT":   cfg.Product.Name,
					"VERSION":   cfg.VersionString(),
					"PUBLISHER": cfg.Product.Publisher,
					"DISTDIR":   distDir,
					"OUTFILE":   installerPath,
				}
				if err := opts.Installer.Compile(ctx, scriptPath, defines); err != nil {
					return err
				}
				if opts.Signer != nil && opts.Signer.Mode() != config.SigningDisabled {
					return opts.Signer.Sign(ctx, []string{installerPath})
				}
				return nil
			},
		},
		{
			Name:    "clientArchive",
			Doc:     "Archive the client API libraries",
			Deps:    []string{"dist"},
			Sources: []string{clientDir},
			Outputs: []string{paths.ArtifactPath(artifactName(cfg, "_client.zip"))},
			Action: func(ctx context.Context) error {
				return archive.Build(paths.ArtifactPath(artifactName(cfg, "_client.zip")), archive.Options{
					Sources:    []string{clientDir},
					RelativeTo: clientDir,
				})
			},
		},
		{
			Name:    "symbolsArchive",
			Doc:     "Archive the debug symbol files",
			Deps:    []string{"dist"},
			Sources: []string{distDir},
			Outputs: []string{paths.ArtifactPath(artifactName(cfg, "_symbols.zip"))},
			Action: func(ctx context.Context) error {
				symbols, err := collectByExtension(distDir, ".pdb")
				if err != nil {
					return err
				}
				return archive.Build(paths.ArtifactPath(artifactName(cfg, "_symbols.zip")), archive.Options{
					Sources:    symbols,
					RelativeTo: distDir,
				})
			},
		},
		{
			Name:    "pot",
			Doc:     "Generate the translation catalog template",
			Deps:    []string{"dist"},
			Sources: []string{paths.SourceDir},
			Outputs: []string{paths.ArtifactPath(artifactName(cfg, ".pot"))},
			Action: func(ctx context.Context) error {
				return opts.Template.Run(ctx, paths.ArtifactPath(artifactName(cfg, ".pot")))
			},
		},
		{
			Name:    "modlist",
			Doc:     "Generate the module inventory of the distribution",
			Deps:    []string{"dist"},
			Sources: []string{distDir},
			Outputs: []string{paths.ArtifactPath(artifactName(cfg, "_modules.txt"))},
			Action: func(ctx context.Context) error {
				return WriteModuleList(distDir, paths.ArtifactPath(artifactName(cfg, "_modules.txt")))
			},
		},
		{
			Name:    "docs",
			Doc:     "Convert the user documentation to HTML",
			Deps:    []string{"dist"},
			Sources: []string{docsDir},
			Outputs: []string{filepath.Join(distDir, "documentation")},
			Action: func(ctx context.Context) error {
				return convertDocs(ctx, opts.Converter, docsDir, filepath.Join(distDir, "documentation"))
			},
		},
		{
			Name: "all",
			Doc:  "Build every distribution artifact",
			Deps: []string{"dist", "installer", "clientArchive", "symbolsArchive", "pot", "modlist", "docs"},
		},
	}
	return graph.New(list)
}

// Copyright returns the notice stamped into the translation template.
func Copyright(cfg *config.Config) string {
	return fmt.Sprintf("# Copyright (C) %d %s", time.Now().Year(), cfg.Product.Publisher)
}

func artifactName(cfg *config.Config, suffix string) string {
	return cfg.Product.Name + "_" + cfg.VersionString() + suffix
}

func collectByExtension(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
