package coerce

import (
	"fmt"

	"github.com/roach88/dtengine/internal/dtype"
)

// recordType validates each element, a row, through the type's row model.
// Coerce collects every rejected row, so TryCoerce has nothing to add.
type recordType struct {
	base
	model dtype.RowModel
}

func (d *recordType) Coerce(c Container) (Container, error) {
	rows := make([]any, c.Len())
	var failures []RowFailure
	for i := 0; i < c.Len(); i++ {
		row, failure := d.validate(i, c.At(i))
		if failure != nil {
			failures = append(failures, *failure)
			continue
		}
		rows[i] = row
	}
	if len(failures) > 0 {
		report := &FailureReport{Target: d.t, Cases: make([]FailureCase, len(failures))}
		for i, f := range failures {
			report.Cases[i] = FailureCase{Index: f.Index, Value: f.Fields}
		}
		return nil, &CoercionError{
			Target: d.t,
			Report: report,
			Err:    &ValidationError{Model: d.model.Name(), Rows: failures},
		}
	}
	return c.FromValues(rows), nil
}

func (d *recordType) CoerceValue(v any) (any, error) {
	row, failure := d.validate(0, v)
	if failure != nil {
		return nil, &CoercionError{
			Target: d.t,
			Err:    &ValidationError{Model: d.model.Name(), Rows: []RowFailure{*failure}},
		}
	}
	return row, nil
}

func (d *recordType) TryCoerce(c Container) (Container, error) {
	return d.Coerce(c)
}

func (d *recordType) CheckValues(c Container) []bool {
	ok := make([]bool, c.Len())
	for i := range ok {
		_, failure := d.validate(i, c.At(i))
		ok[i] = failure == nil
	}
	return ok
}

func (d *recordType) element(v any) (any, error) {
	return d.CoerceValue(v)
}

// validate runs the row model on one element. Fields of the failure hold
// the original values of the rejected fields.
func (d *recordType) validate(index int, v any) (map[string]any, *RowFailure) {
	row, ok := v.(map[string]any)
	if !ok {
		fe := dtype.FieldError{Field: "*", Message: fmt.Sprintf("row is %T, not a record", v)}
		return nil, &RowFailure{Index: index, Fields: map[string]any{"*": v}, Errors: []dtype.FieldError{fe}}
	}
	out, errs := d.model.Validate(row)
	if len(errs) == 0 {
		return out, nil
	}
	fields := make(map[string]any, len(errs))
	for _, fe := range errs {
		if fe.Field == "*" {
			fields[fe.Field] = row
			continue
		}
		fields[fe.Field] = row[fe.Field]
	}
	return nil, &RowFailure{Index: index, Fields: fields, Errors: errs}
}
