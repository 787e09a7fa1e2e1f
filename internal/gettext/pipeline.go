package gettext

import (
	"context"
	"log/slog"
	"os"

	"shipwright/internal/logging"
)

// Extractor produces a catalog template from the sources named in a file
// list. Satisfied by the xgettext CLI client; tests substitute a fake.
type Extractor interface {
	Extract(ctx context.Context, outputPath, fileListPath string) error
}

// Pipeline ties source enumeration, extraction, and header normalization
// into a single template-generation step.
type Pipeline struct {
	root           string
	extractor      Extractor
	copyright      string
	sourceLanguage string
	logger         *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger attaches a logger for progress diagnostics.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSourceLanguage sets the language tag stamped into the template's
// Language header. Empty leaves the header untouched.
func WithSourceLanguage(tag string) PipelineOption {
	return func(p *Pipeline) {
		p.sourceLanguage = tag
	}
}

// NewPipeline constructs a pipeline rooted at the given source directory.
// The copyright notice replaces the template's placeholder copyright line.
func NewPipeline(root string, extractor Extractor, copyright string, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		root:      root,
		extractor: extractor,
		copyright: copyright,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run generates the template at outputPath. The intermediate file list is
// written next to the output and removed afterwards.
func (p *Pipeline) Run(ctx context.Context, outputPath string) error {
	files, err := CollectSources(p.root)
	if err != nil {
		return err
	}
	p.logger.Info("collected translatable sources",
		logging.String("root", p.root),
		logging.Int("files", len(files)),
	)

	listPath := outputPath + ".files"
	if err := WriteFileList(listPath, files); err != nil {
		return err
	}
	defer os.Remove(listPath)

	if err := p.extractor.Extract(ctx, outputPath, listPath); err != nil {
		return err
	}
	return PostProcess(outputPath, p.copyright, p.sourceLanguage)
}
