package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readInput returns the contents of path, or of stdin when path is "-"
// or empty.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// sourceName names the input in stored reports.
func sourceName(path, column string) string {
	if path == "" || path == "-" {
		path = "stdin"
	}
	if column != "" {
		return path + ":" + column
	}
	return path
}

// decodeValues decodes a JSON array. Numbers are kept as json.Number so
// decimal targets see their exact text.
func decodeValues(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var values []any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode JSON array: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode JSON array: trailing data after array")
	}
	if values == nil {
		values = []any{}
	}
	return values, nil
}

// decodeRows decodes a JSON array of rows for a row model. Integral
// numbers become int64 and the rest float64.
func decodeRows(data []byte) ([]any, error) {
	values, err := decodeValues(data)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = plainNumbers(v)
	}
	return values, nil
}

func plainNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, x := range val {
			val[k] = plainNumbers(x)
		}
	case []any:
		for i, x := range val {
			val[i] = plainNumbers(x)
		}
	}
	return v
}

// readCSVColumn returns the named column of a CSV document with a header
// row. Empty cells are null.
func readCSVColumn(data []byte, column string) ([]any, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("read CSV: missing header row")
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	idx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("read CSV: no column %q in header", column)
	}

	values := []any{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		if cell := record[idx]; cell != "" {
			values = append(values, cell)
		} else {
			values = append(values, nil)
		}
	}
	return values, nil
}
