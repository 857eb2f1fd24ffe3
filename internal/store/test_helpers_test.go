package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/dtengine/internal/coerce"
	"github.com/roach88/dtengine/internal/dtype"
	"github.com/roach88/dtengine/internal/testutil"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestStore creates a new store in a temp dir. Runs are stamped
// testEpoch, testEpoch+1s, and so on.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(testutil.NewClock(testEpoch, time.Second).Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestReport builds an int64 failure report from index/value pairs.
func createTestReport(cases ...coerce.FailureCase) *coerce.FailureReport {
	return &coerce.FailureReport{Target: dtype.Int64, Cases: cases}
}
