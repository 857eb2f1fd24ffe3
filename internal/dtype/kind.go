package dtype

// Kind identifies the semantic category of a Type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindComplex
	KindDecimal
	KindString
	KindObject
	KindCategory
	KindDatetime
	KindDate
	KindTimedelta
	KindPeriod
	KindInterval
	KindUUID
	KindRecord
)

var kindNames = map[Kind]string{
	KindInvalid:   "invalid",
	KindBool:      "bool",
	KindInt:       "int",
	KindUint:      "uint",
	KindFloat:     "float",
	KindComplex:   "complex",
	KindDecimal:   "decimal",
	KindString:    "string",
	KindObject:    "object",
	KindCategory:  "category",
	KindDatetime:  "datetime",
	KindDate:      "date",
	KindTimedelta: "timedelta",
	KindPeriod:    "period",
	KindInterval:  "interval",
	KindUUID:      "uuid",
	KindRecord:    "record",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsNumeric reports whether values of the kind are real numbers.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt, KindUint, KindFloat:
		return true
	}
	return false
}

// validWidths lists the bit widths each sized kind accepts.
var validWidths = map[Kind][]uint16{
	KindInt:     {8, 16, 32, 64},
	KindUint:    {8, 16, 32, 64},
	KindFloat:   {32, 64},
	KindComplex: {64, 128},
}

func (k Kind) sized() bool {
	_, ok := validWidths[k]
	return ok
}

func (k Kind) acceptsWidth(bits uint16) bool {
	for _, w := range validWidths[k] {
		if w == bits {
			return true
		}
	}
	return false
}
