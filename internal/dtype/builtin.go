package dtype

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// Option configures InitializeRegistry.
type Option func(*initOptions)

type initOptions struct {
	packs  []AliasPack
	logger *slog.Logger
}

// WithAliases registers an alias pack after the built-in equivalences.
func WithAliases(pack AliasPack) Option {
	return func(o *initOptions) {
		o.packs = append(o.packs, pack)
	}
}

// WithLogger sets the logger used during initialization.
func WithLogger(logger *slog.Logger) Option {
	return func(o *initOptions) {
		o.logger = logger
	}
}

// InitializeRegistry builds a registry holding the built-in equivalences
// and any alias packs, then seals it. Call it once at startup and pass the
// result to consumers.
func InitializeRegistry(opts ...Option) (*Registry, error) {
	o := initOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	r := NewRegistry()
	for _, p := range builtinParametrized {
		if err := r.RegisterParametrized(p.class, p.hook); err != nil {
			return nil, err
		}
	}
	for _, b := range builtinEquivalences() {
		if err := r.Register(b.typ, b.equivalents...); err != nil {
			return nil, fmt.Errorf("register %s: %w", b.typ, err)
		}
	}
	for _, pack := range o.packs {
		if err := pack.apply(r); err != nil {
			return nil, err
		}
	}
	r.Seal()

	o.logger.Info("dtype registry initialized",
		"types", len(r.order),
		"descriptors", len(r.table),
		"alias_packs", len(o.packs),
	)
	return r, nil
}

type builtin struct {
	typ         Type
	equivalents []any
}

// builtinEquivalences lists the built-in descriptor bindings. Order matters
// only for display: Entries reports types in this order.
func builtinEquivalences() []builtin {
	return []builtin{
		{Bool, []any{"bool", "boolean", "Bool", "BooleanDtype", GoType[bool]()}},

		{Int64, []any{"int64", "Int64", "int", "Int", "integer", GoType[int64](), GoType[int]()}},
		{Int32, []any{"int32", "Int32", GoType[int32]()}},
		{Int16, []any{"int16", "Int16", GoType[int16]()}},
		{Int8, []any{"int8", "Int8", GoType[int8]()}},

		{Uint64, []any{"uint64", "UInt64", "uint", "UInt", GoType[uint64](), GoType[uint](), GoType[uintptr]()}},
		{Uint32, []any{"uint32", "UInt32", GoType[uint32]()}},
		{Uint16, []any{"uint16", "UInt16", GoType[uint16]()}},
		{Uint8, []any{"uint8", "UInt8", GoType[uint8]()}},

		{Float64, []any{"float64", "Float64", "float", "Float", "floating", "mixed-integer-float", GoType[float64]()}},
		{Float32, []any{"float32", "Float32", GoType[float32]()}},

		{Complex128, []any{"complex128", "complex", GoType[complex128]()}},
		{Complex64, []any{"complex64", GoType[complex64]()}},

		{Decimal, []any{"decimal", "Decimal", GoType[apd.Decimal](), GoType[*apd.Decimal]()}},

		{String, []any{"str", "string", "String", "StringDtype", GoType[string](), GoType[[]rune]()}},
		{Object, []any{"object", "object_", "object0", "O", "bytes", "mixed", "mixed-integer", GoType[[]byte](), GoType[any]()}},

		{Category, []any{"category", "categorical", "CategoricalDtype", GoType[CategoricalDtype]()}},

		{Datetime, []any{"datetime", "datetime64", "timestamp", "Timestamp", "time", "M8[ns]", "<M8[ns]", GoType[time.Time]()}},
		{Date, []any{"date", "Date"}},
		{Timedelta, []any{"timedelta", "timedelta64", "Timedelta", "m8[ns]", "<m8[ns]", GoType[time.Duration]()}},

		{UUID, []any{"uuid", "UUID", GoType[uuid.UUID]()}},
	}
}
