package testsupport

import (
	"path/filepath"
	"testing"

	"keyframer/internal/ledger"
)

// MustOpenLedger opens a history database in a temp directory and closes it
// when the test ends.
func MustOpenLedger(t testing.TB) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
