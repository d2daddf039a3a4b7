package testsupport

import (
	"testing"

	"feedrebuild/internal/config"
	"feedrebuild/internal/history"
)

// MustOpenHistory opens the history store named by cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.Paths.HistoryPath)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
