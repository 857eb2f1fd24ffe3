package coerce_test

import (
	"errors"
	"testing"

	"github.com/roach88/dtengine/internal/coerce"
	"github.com/roach88/dtengine/internal/column"
	"github.com/roach88/dtengine/internal/dtype"
	"github.com/roach88/dtengine/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderSchema = `
#Order: {
	id:       int & >0
	quantity: int & >=1
	note:     string | *""
}
`

func orderType(t *testing.T) dtype.Type {
	t.Helper()
	m, err := record.Compile("order.cue", orderSchema, "#Order")
	require.NoError(t, err)
	rt, err := dtype.NewRecord(m)
	require.NoError(t, err)
	return rt
}

func TestRecordCoercion(t *testing.T) {
	e := newEngine(t)
	rt := orderType(t)

	rows := column.Of(
		map[string]any{"id": 1, "quantity": 2},
		map[string]any{"id": 2, "quantity": 0},
		map[string]any{"id": -3, "quantity": "many"},
		"not a row",
	)
	_, err := e.TryCoerce(rt, rows)
	require.Error(t, err)

	var ce *coerce.CoercionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []int{1, 2, 3}, ce.Report.Indices())

	var ve *coerce.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Order", ve.Model)
	fields := ve.Fields()
	assert.Equal(t, map[string]any{"quantity": 0}, fields[1])
	assert.Equal(t, map[string]any{"id": -3, "quantity": "many"}, fields[2])
	assert.Equal(t, map[string]any{"*": "not a row"}, fields[3])
}

// rangeModel rejects rows whose bounds are out of order. The failure
// concerns the row, not a single field.
type rangeModel struct{}

func (*rangeModel) Name() string { return "Range" }

func (*rangeModel) Validate(row map[string]any) (map[string]any, []dtype.FieldError) {
	lo, _ := row["lo"].(int)
	hi, _ := row["hi"].(int)
	if lo > hi {
		return nil, []dtype.FieldError{{Field: "*", Message: "lo must not exceed hi"}}
	}
	return row, nil
}

func TestRecordCoercionKeepsRowOnRowLevelError(t *testing.T) {
	e := newEngine(t)
	rt, err := dtype.NewRecord(&rangeModel{})
	require.NoError(t, err)

	bad := map[string]any{"lo": 5, "hi": 1}
	_, err = e.TryCoerce(rt, column.Of(map[string]any{"lo": 1, "hi": 5}, bad))
	require.Error(t, err)

	var ve *coerce.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, map[string]any{"*": bad}, ve.Fields()[1])
}

func TestRecordCoercionFillsDefaults(t *testing.T) {
	e := newEngine(t)
	rt := orderType(t)

	out, err := e.TryCoerce(rt, column.Of(map[string]any{"id": 1, "quantity": 2}))
	require.NoError(t, err)
	row := coerce.Values(out)[0].(map[string]any)
	assert.Equal(t, "", row["note"])
	assert.EqualValues(t, 2, row["quantity"])
}

func TestRecordCoerceValue(t *testing.T) {
	e := newEngine(t)
	rt := orderType(t)

	_, err := e.CoerceValue(rt, map[string]any{"id": 0, "quantity": 1})
	require.Error(t, err)
	assert.True(t, coerce.IsValidationError(err))
	assert.Contains(t, err.Error(), "row 0: id:")
}
