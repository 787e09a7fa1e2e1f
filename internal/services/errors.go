package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks invalid or conflicting options. Surfaces before
	// any build action runs.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool marks a non-zero exit from an invoked tool. Fatal for
	// the dependent subtree.
	ErrExternalTool = errors.New("external tool error")
	// ErrNotFound marks a missing resource such as an SDK install or
	// runtime library directory.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks a locally recoverable failure, such as a flaky
	// timestamp server during signing.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
