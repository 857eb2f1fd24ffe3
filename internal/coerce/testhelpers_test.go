package coerce

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/dtengine/internal/convert"
	"github.com/roach88/dtengine/internal/dtype"
	"github.com/stretchr/testify/require"
)

// sliceContainer is a minimal Container. A non-nil castErr makes every
// bulk cast fail, as a backend stricter than element conversion would.
type sliceContainer struct {
	vals    []any
	castErr error
}

func (s *sliceContainer) Len() int          { return len(s.vals) }
func (s *sliceContainer) At(i int) any      { return s.vals[i] }
func (s *sliceContainer) IsNull(i int) bool { return convert.IsNull(s.vals[i]) }

func (s *sliceContainer) Cast(t dtype.Type) (Container, error) {
	if s.castErr != nil {
		return nil, s.castErr
	}
	out, err := convert.Slice(t, s.vals)
	if err != nil {
		return nil, err
	}
	return &sliceContainer{vals: out}, nil
}

func (s *sliceContainer) FromValues(vals []any) Container {
	return &sliceContainer{vals: vals}
}

var errStrictBackend = errors.New("backend refuses mixed input")

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	reg, err := dtype.InitializeRegistry(dtype.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	e, err := New(reg, opts...)
	require.NoError(t, err)
	return e
}

// rowModel accepts rows whose "age" field is a non-negative int.
type rowModel struct{}

func (*rowModel) Name() string { return "person" }

func (*rowModel) Validate(row map[string]any) (map[string]any, []dtype.FieldError) {
	age, ok := row["age"].(int)
	if !ok {
		return nil, []dtype.FieldError{{Field: "age", Message: "must be an int"}}
	}
	if age < 0 {
		return nil, []dtype.FieldError{{Field: "age", Message: "must be non-negative"}}
	}
	return map[string]any{"age": age, "name": row["name"]}, nil
}
