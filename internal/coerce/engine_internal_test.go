package coerce

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/roach88/dtengine/internal/dtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullPolicyFor(t *testing.T) {
	tests := []struct {
		kind dtype.Kind
		want NullPolicy
	}{
		{dtype.KindCategory, HardFailure},
		{dtype.KindInt, QuietNull},
		{dtype.KindFloat, QuietNull},
		{dtype.KindString, QuietNull},
		{dtype.KindDatetime, QuietNull},
		{dtype.KindDecimal, QuietNull},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, NullPolicyFor(tt.kind))
		})
	}
	assert.Equal(t, "hard_failure", HardFailure.String())
	assert.Equal(t, "quiet_null", QuietNull.String())
}

func TestTryCoerceReturnsRetriedValuesWhenNoElementFails(t *testing.T) {
	e := newTestEngine(t)
	dt, err := e.DataType("int64")
	require.NoError(t, err)

	c := &sliceContainer{vals: []any{1, "2", 3.0}, castErr: errStrictBackend}
	_, err = dt.Coerce(c)
	require.ErrorIs(t, err, errStrictBackend)

	out, err := dt.TryCoerce(c)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, Values(out))
}

func TestTryCoerceKeepsBackendErrorAsCause(t *testing.T) {
	e := newTestEngine(t)
	dt, err := e.DataType("int64")
	require.NoError(t, err)

	c := &sliceContainer{vals: []any{1, "x"}, castErr: errStrictBackend}
	_, err = dt.TryCoerce(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, errStrictBackend)

	report, ok := FailureCases(err)
	require.True(t, ok)
	assert.Equal(t, map[int]any{1: "x"}, report.Map())
}

func TestTryCoercePropagatesCoercionErrorsFromCoerce(t *testing.T) {
	e := newTestEngine(t)
	rt, err := dtype.NewRecord(&rowModel{})
	require.NoError(t, err)
	dt, err := e.DataType(rt)
	require.NoError(t, err)

	c := &sliceContainer{vals: []any{
		map[string]any{"age": 3},
		map[string]any{"age": -1},
	}}
	_, coerceErr := dt.Coerce(c)
	_, tryErr := dt.TryCoerce(c)
	require.Error(t, coerceErr)
	assert.Equal(t, coerceErr.Error(), tryErr.Error())
	assert.True(t, IsValidationError(tryErr))
}

func TestDiagnoseParallelMatchesSequential(t *testing.T) {
	vals := make([]any, 1000)
	for i := range vals {
		if i%7 == 3 {
			vals[i] = "bad"
			continue
		}
		vals[i] = i
	}
	c := &sliceContainer{vals: vals}

	seq := newTestEngine(t, WithParallelism(1, 1))
	par := newTestEngine(t, WithParallelism(4, 10))

	seqDT, err := seq.DataType("int32")
	require.NoError(t, err)
	parDT, err := par.DataType("int32")
	require.NoError(t, err)

	seqVals, seqCases := seq.diagnose(seqDT, c)
	parVals, parCases := par.diagnose(parDT, c)
	assert.Equal(t, seqVals, parVals)
	assert.Equal(t, seqCases, parCases)
	assert.Len(t, parCases, 143)
	for _, fc := range parCases {
		assert.Equal(t, 3, fc.Index%7)
		assert.Equal(t, "bad", fc.Value)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	e := newTestEngine(t, WithMetrics(m))

	_, err = e.TryCoerce("int64", &sliceContainer{vals: []any{1, "x", "y"}})
	require.Error(t, err)
	_, err = e.TryCoerce("int64", &sliceContainer{vals: []any{1}})
	require.NoError(t, err)
	_, err = e.CoerceValue("bool", "yes")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.coercions.WithLabelValues("int", opTryCoerce, "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.coercions.WithLabelValues("int", opTryCoerce, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.coercions.WithLabelValues("bool", opCoerceValue, "failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.failureCases.WithLabelValues("int")))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "metrics register once per registry")
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(dtype.Int64, opCoerce, nil, 0)
		m.failures(dtype.Int64, 3)
	})
}
