package dtype

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRegistry returns a sealed registry with the built-in equivalences
// and logging suppressed.
func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	r, err := InitializeRegistry(opts...)
	require.NoError(t, err)
	return r
}
