package dtype

// RowModel validates a single record against an external schema.
// Implementations must be comparable (pointer receivers) because record
// Types embed them.
type RowModel interface {
	// Name identifies the model in type descriptors and reports.
	Name() string

	// Validate checks row and returns the normalized row. A non-empty
	// error slice means the row was rejected.
	Validate(row map[string]any) (map[string]any, []FieldError)
}

// FieldError describes a single field a row model rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}
