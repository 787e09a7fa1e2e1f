package targets

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"shipwright/internal/services"
)

// convertDocs renders every markdown document under docsDir into HTML
// files of the same base name under outputDir. A missing docs directory
// is not an error; the documentation target is then a no-op.
func convertDocs(ctx context.Context, converter DocConverter, docsDir, outputDir string) error {
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return services.Wrap(services.ErrConfiguration, "targets", "docs", docsDir, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "targets", "docs", outputDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}
		input := filepath.Join(docsDir, entry.Name())
		output := filepath.Join(outputDir, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))+".html")
		if err := converter.Convert(ctx, input, output); err != nil {
			return err
		}
	}
	return nil
}
