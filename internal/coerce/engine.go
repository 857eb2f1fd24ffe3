package coerce

import (
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/roach88/dtengine/internal/dtype"
)

// DefaultParallelThreshold is the container length above which failing
// elements are diagnosed in parallel.
const DefaultParallelThreshold = 4096

// Engine coerces containers to types resolved through a registry.
// An Engine is safe for concurrent use.
type Engine struct {
	reg       *dtype.Registry
	logger    *slog.Logger
	metrics   *Metrics
	workers   int
	threshold int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records coercion metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithParallelism sets the number of goroutines used to diagnose failing
// containers and the container length from which they are used.
func WithParallelism(workers, threshold int) Option {
	return func(e *Engine) {
		if workers > 0 {
			e.workers = workers
		}
		if threshold > 0 {
			e.threshold = threshold
		}
	}
}

// New returns an engine over a sealed registry.
func New(reg *dtype.Registry, opts ...Option) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("coerce: nil registry")
	}
	if !reg.Sealed() {
		return nil, errors.New("coerce: registry must be sealed before use")
	}
	e := &Engine{
		reg:       reg,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:   runtime.GOMAXPROCS(0),
		threshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Registry returns the registry the engine resolves descriptors with.
func (e *Engine) Registry() *dtype.Registry {
	return e.reg
}

// DataType resolves descriptor and returns its DataType.
func (e *Engine) DataType(descriptor any) (DataType, error) {
	t, err := e.reg.Resolve(descriptor)
	if err != nil {
		return nil, err
	}
	return newDataType(e, t), nil
}

// Coerce casts c to the type of descriptor.
func (e *Engine) Coerce(descriptor any, c Container) (Container, error) {
	dt, err := e.DataType(descriptor)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := dt.Coerce(c)
	e.metrics.observe(dt.Type(), opCoerce, err, time.Since(start))
	return out, err
}

// TryCoerce casts c to the type of descriptor, reporting every failing
// element on error.
func (e *Engine) TryCoerce(descriptor any, c Container) (Container, error) {
	dt, err := e.DataType(descriptor)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := dt.TryCoerce(c)
	e.metrics.observe(dt.Type(), opTryCoerce, err, time.Since(start))
	if report, ok := FailureCases(err); ok {
		e.metrics.failures(dt.Type(), report.Len())
	}
	return out, err
}

// CoerceValue converts v to the type of descriptor.
func (e *Engine) CoerceValue(descriptor any, v any) (any, error) {
	dt, err := e.DataType(descriptor)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := dt.CoerceValue(v)
	e.metrics.observe(dt.Type(), opCoerceValue, err, time.Since(start))
	return out, err
}

// tryCoerce runs the fast path and falls back to element diagnosis.
func (e *Engine) tryCoerce(dt DataType, c Container) (Container, error) {
	out, err := dt.Coerce(c)
	if err == nil {
		return out, nil
	}
	if IsCoercionError(err) {
		return nil, err
	}

	t := dt.Type()
	e.logger.Debug("bulk coercion failed, diagnosing elements",
		"target", t.String(),
		"len", c.Len(),
		"error", err,
	)
	vals, cases := e.diagnose(dt, c)
	if len(cases) == 0 {
		// Every element converts on its own; the container's bulk cast
		// was stricter than element conversion.
		e.logger.Debug("element retry succeeded", "target", t.String())
		return c.FromValues(vals), nil
	}
	return nil, &CoercionError{
		Target: t,
		Report: &FailureReport{Target: t, Cases: cases},
		Err:    err,
	}
}

// diagnose converts every element on its own, in parallel chunks for long
// containers. It returns the converted values and the failing elements in
// index order.
func (e *Engine) diagnose(dt DataType, c Container) ([]any, []FailureCase) {
	n := c.Len()
	out := make([]any, n)
	failed := make([]bool, n)

	run := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v, err := dt.element(c.At(i))
			if err != nil {
				failed[i] = true
				continue
			}
			out[i] = v
		}
	}

	if n < e.threshold || e.workers < 2 {
		run(0, n)
	} else {
		chunk := (n + e.workers - 1) / e.workers
		var wg sync.WaitGroup
		for lo := 0; lo < n; lo += chunk {
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				run(lo, hi)
			}(lo, min(lo+chunk, n))
		}
		wg.Wait()
	}

	var cases []FailureCase
	for i, f := range failed {
		if f {
			cases = append(cases, FailureCase{Index: i, Value: c.At(i)})
		}
	}
	return out, cases
}
