// Package gettext produces the translation catalog template for the
// application sources: it enumerates translatable source files, hands them
// to the external extraction tool, and normalizes the resulting template
// header.
package gettext

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"shipwright/internal/services"
)

// excludedSubtrees are directories under the source root whose contents
// never carry translatable strings: generated interop wrappers and the
// developer's scratch configuration. The match is a prefix match on the
// root-relative path.
var excludedSubtrees = []string{"comInterfaces", "userConfig"}

var sourceExtensions = []string{".py", ".pyw"}

// CollectSources walks root and returns the root-relative paths of all
// translatable source files, in lexical walk order.
func CollectSources(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if entry.IsDir() {
			if rel != "." && excludedSubtree(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if hasSourceExtension(entry.Name()) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gettext", "collect_sources", root, err)
	}
	return files, nil
}

func excludedSubtree(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, prefix := range excludedSubtrees {
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
	}
	return false
}

func hasSourceExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range sourceExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// WriteFileList writes the collected paths one per line for consumption
// via the extraction tool's --files-from flag.
func WriteFileList(path string, files []string) error {
	var builder strings.Builder
	for _, file := range files {
		builder.WriteString(file)
		builder.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "gettext", "write_file_list", path, err)
	}
	return nil
}
