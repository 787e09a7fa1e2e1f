package testsupport

import (
	"testing"

	"shipwright/internal/config"
	"shipwright/internal/state"
)

// MustOpenStore opens a fingerprint store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *state.Store {
	t.Helper()

	store, err := state.Open(cfg.Paths.StateDir)
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
