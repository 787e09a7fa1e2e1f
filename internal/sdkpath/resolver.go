// Package sdkpath locates the platform SDK's runtime-redistributable (CRT)
// libraries.
//
// On Windows the SDK installation root comes from the registry; elsewhere
// it comes from environment variables so development machines and CI can
// run the same code paths. The Resolver interface lets tests substitute a
// fake without touching either source.
package sdkpath

import (
	"fmt"
	"os"
	"path/filepath"

	"shipwright/internal/services"
)

// Resolver locates the directory holding the CRT redistributable DLLs for
// an architecture such as "x86" or "amd64".
type Resolver interface {
	LocateCRT(arch string) (string, error)
}

// NotFoundError reports a missing SDK resource and the path that was
// expected to contain it.
type NotFoundError struct {
	Resource string
	Path     string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found (expected %s)", e.Resource, e.Path)
}

// Is ties NotFoundError into the shared error taxonomy.
func (e *NotFoundError) Is(target error) bool {
	return target == services.ErrNotFound
}

// Default returns the platform resolver.
func Default() Resolver {
	return newPlatformResolver()
}

// probeRedist checks the primary redistributable layout and the alternate
// convention that nests a trailing SDK version directory.
func probeRedist(root, version, arch string) (string, error) {
	primary := filepath.Join(root, "Redist", "ucrt", "DLLs", arch)
	if dirExists(primary) {
		return primary, nil
	}
	if version != "" {
		alternate := filepath.Join(root, "Redist", version, "ucrt", "DLLs", arch)
		if dirExists(alternate) {
			return alternate, nil
		}
	}
	return "", &NotFoundError{Resource: "CRT DLLs", Path: primary}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
