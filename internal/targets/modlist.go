package targets

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"shipwright/internal/services"
)

var moduleExtensions = []string{".py", ".pyd", ".dll"}

// WriteModuleList writes an inventory of the loadable modules in the
// distribution tree, one root-relative path per line in lexical walk
// order.
func WriteModuleList(distDir, outputPath string) error {
	var builder strings.Builder
	err := filepath.WalkDir(distDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !isModuleFile(entry.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(distDir, path)
		if relErr != nil {
			return relErr
		}
		builder.WriteString(filepath.ToSlash(rel))
		builder.WriteByte('\n')
		return nil
	})
	if err != nil {
		return services.Wrap(services.ErrNotFound, "targets", "module_list", distDir, err)
	}
	if err := os.WriteFile(outputPath, []byte(builder.String()), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "targets", "module_list", outputPath, err)
	}
	return nil
}

func isModuleFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range moduleExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
