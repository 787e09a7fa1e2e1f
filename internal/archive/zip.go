// Package archive builds the zip artifacts shipwright distributes: the
// client library bundle and the debug symbol bundle.
//
// Entry names are computed against an optional base directory; paths that
// escape the base are flattened to the archive root instead of carrying
// parent-traversal segments into the archive. The compression level is a
// per-call parameter, never process state.
package archive

import (
	"compress/flate"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NoCompression stores entries uncompressed instead of deflating them.
const NoCompression = -1

// Options controls one archive build.
type Options struct {
	// Sources lists files and directories to include. Directories are
	// walked recursively in lexical order.
	Sources []string
	// RelativeTo, when set, is the base directory against which entry
	// names are computed. Entries outside it are flattened to the root.
	RelativeTo string
	// Level is the deflate compression level (1 through 9). Zero means
	// flate.BestCompression; NoCompression stores entries as-is.
	Level int
}

// Build writes a zip archive at target from the configured sources.
func Build(target string, opts Options) error {
	if target == "" {
		return errors.New("archive: target path is required")
	}
	if len(opts.Sources) == 0 {
		return errors.New("archive: at least one source is required")
	}
	level := opts.Level
	if level == 0 {
		level = flate.BestCompression
	}

	if dir := filepath.Dir(target); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("archive: ensure target directory: %w", err)
		}
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", target, err)
	}
	defer out.Close()

	zw := newZipWriter(out, level)

	for _, source := range opts.Sources {
		info, err := os.Stat(source)
		if err != nil {
			return fmt.Errorf("archive: stat %s: %w", source, err)
		}
		if info.IsDir() {
			if err := addTree(zw, source, opts.RelativeTo); err != nil {
				return err
			}
			continue
		}
		if err := addFile(zw, source, entryName(source, opts.RelativeTo), info); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: finalize %s: %w", target, err)
	}
	return out.Close()
}

// EntryName exposes the naming rule for tests and callers that need to
// predict archive layout.
func EntryName(path, relativeTo string) string {
	return entryName(path, relativeTo)
}

func addTree(zw *zipWriter, root, relativeTo string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("archive: walk %s: %w", path, err)
		}
		name := entryName(path, relativeTo)
		if entry.IsDir() {
			// The archive root needs no explicit entry.
			if name == "" {
				return nil
			}
			return zw.addDir(name + "/")
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("archive: stat %s: %w", path, err)
		}
		return addFile(zw, path, name, info)
	})
}

func addFile(zw *zipWriter, path, name string, info fs.FileInfo) error {
	if name == "" {
		return fmt.Errorf("archive: %s resolves to the archive root; only directories may do that", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer file.Close()
	return zw.addFile(name, info, file)
}

// entryName maps a source path onto its archive-relative name. With a base
// directory, the name is the path relative to it with any leading parent
// segments stripped; the base itself maps to "" (the archive root).
// Without a base, the cleaned path is used with volume and leading
// separators removed.
func entryName(path, relativeTo string) string {
	if relativeTo != "" {
		rel, err := filepath.Rel(relativeTo, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		rel = filepath.ToSlash(rel)
		for {
			switch {
			case rel == "." || rel == "..":
				return ""
			case strings.HasPrefix(rel, "../"):
				rel = strings.TrimPrefix(rel, "../")
			default:
				return rel
			}
		}
	}

	cleaned := filepath.ToSlash(filepath.Clean(path))
	cleaned = strings.TrimPrefix(cleaned, filepath.VolumeName(path))
	cleaned = strings.TrimLeft(cleaned, "/")
	for strings.HasPrefix(cleaned, "../") {
		cleaned = strings.TrimPrefix(cleaned, "../")
	}
	if cleaned == "." || cleaned == ".." {
		return ""
	}
	return cleaned
}
