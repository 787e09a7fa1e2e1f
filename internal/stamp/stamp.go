// Package stamp writes the generated version module consumed by the
// external application build and removes it afterwards.
//
// The stamp's lifetime is strictly nested inside one packaging invocation:
// it exists only so the build can embed version, publisher, and update
// channel metadata, and it is removed unconditionally once the build chain
// finishes, successfully or not.
package stamp

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shipwright/internal/logging"
)

// FileName is the generated module written into the application source
// tree.
const FileName = "buildVersion.py"

// Info is the metadata recorded in the stamp.
type Info struct {
	Version       string
	Publisher     string
	UpdateChannel string
	Release       bool
}

// Write creates the stamp inside sourceDir and returns its path.
func Write(sourceDir string, info Info) (string, error) {
	path := filepath.Join(sourceDir, FileName)

	var b strings.Builder
	b.WriteString("# Generated by shipwright; removed after packaging.\n")
	fmt.Fprintf(&b, "version = %q\n", info.Version)
	fmt.Fprintf(&b, "publisher = %q\n", info.Publisher)
	fmt.Fprintf(&b, "updateVersionType = %q\n", info.UpdateChannel)
	fmt.Fprintf(&b, "isRelease = %s\n", pythonBool(info.Release))

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write version stamp: %w", err)
	}
	return path, nil
}

// Cleanup removes the stamp and its compiled-cache counterparts. Failures
// are logged and never escalated; the stamp may already be gone or the
// build may have moved it.
func Cleanup(sourceDir string, logger *slog.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}
	base := strings.TrimSuffix(FileName, ".py")

	candidates := []string{
		filepath.Join(sourceDir, FileName),
		filepath.Join(sourceDir, base+".pyc"),
	}
	cacheGlob := filepath.Join(sourceDir, "__pycache__", base+".*.pyc")
	if matches, err := filepath.Glob(cacheGlob); err == nil {
		candidates = append(candidates, matches...)
	}

	for _, path := range candidates {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("stamp cleanup failed",
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
}

func pythonBool(value bool) string {
	if value {
		return "True"
	}
	return "False"
}
