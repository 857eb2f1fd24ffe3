// Package record validates rows against CUE definitions.
//
// A Model wraps one CUE definition and implements dtype.RowModel, so a
// record type built with dtype.NewRecord coerces each row of a container
// by unifying it with the definition.
package record

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dtengine/internal/canon"
	"github.com/roach88/dtengine/internal/dtype"
)

// Model is a row model backed by a CUE definition.
type Model struct {
	name   string
	def    cue.Value
	prefix []string

	// cue.Value operations on a shared context are not safe for
	// concurrent use.
	mu sync.Mutex
}

var _ dtype.RowModel = (*Model)(nil)

// Compile compiles source and returns a model for the named definition,
// e.g. "#Person". filename is used in error positions.
func Compile(filename, source, definition string) (*Model, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(source, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := v.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return nil, &CompileError{Field: definition, Message: "definition not found", Pos: v.Pos()}
	}
	if err := def.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if k := def.IncompleteKind(); k&cue.StructKind == 0 {
		return nil, &CompileError{Field: definition, Message: fmt.Sprintf("definition must be a struct, got %s", k), Pos: def.Pos()}
	}

	var prefix []string
	for _, sel := range def.Path().Selectors() {
		prefix = append(prefix, sel.String())
	}
	return &Model{name: strings.TrimPrefix(definition, "#"), def: def, prefix: prefix}, nil
}

// CompileFile reads a CUE file and compiles the named definition.
func CompileFile(path, definition string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Compile(path, string(data), definition)
}

// Name returns the definition name without the leading '#'.
func (m *Model) Name() string {
	return m.name
}

// Fields returns the regular fields declared by the definition in
// declaration order.
func (m *Model) Fields() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var fields []string
	iter, err := m.def.Fields(cue.Optional(true))
	if err != nil {
		return nil
	}
	for iter.Next() {
		fields = append(fields, iter.Selector().Unquoted())
	}
	return fields
}

// Validate unifies row with the definition and requires every field to be
// concrete. It returns the decoded row, which includes defaults filled in
// by the definition, or one FieldError per rejected field.
func (m *Model) Validate(row map[string]any) (map[string]any, []dtype.FieldError) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rv := m.def.Context().Encode(row)
	if err := rv.Err(); err != nil {
		return nil, m.fieldErrors(err)
	}
	unified := m.def.Unify(rv)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, m.fieldErrors(err)
	}

	var out map[string]any
	if err := unified.Decode(&out); err != nil {
		return nil, m.fieldErrors(err)
	}
	return out, nil
}

// fieldErrors maps CUE errors to one FieldError per field, sorted by field.
func (m *Model) fieldErrors(err error) []dtype.FieldError {
	seen := make(map[string]bool)
	var out []dtype.FieldError
	for _, e := range errors.Errors(err) {
		field := m.fieldOf(e.Path())
		if seen[field] {
			continue
		}
		seen[field] = true
		format, args := e.Msg()
		out = append(out, dtype.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	if len(out) == 0 {
		out = append(out, dtype.FieldError{Field: "*", Message: err.Error()})
	}
	sort.Slice(out, func(i, j int) bool {
		return canon.CompareKeys(out[i].Field, out[j].Field) < 0
	})
	return out
}

// fieldOf strips the definition's own path from an error path and
// returns the top-level field name. Errors on the row itself map to "*".
func (m *Model) fieldOf(path []string) string {
	for i := 0; i < len(m.prefix) && len(path) > 0 && path[0] == m.prefix[i]; i++ {
		path = path[1:]
	}
	if len(path) == 0 {
		return "*"
	}
	return path[0]
}

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
