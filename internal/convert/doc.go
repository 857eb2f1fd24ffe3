// Package convert implements element-wise conversion of native Go values to
// the value representation of a canonical type.
//
// Each canonical kind has one Go representation:
//
//	bool        bool
//	int         int8, int16, int32, int64 by width
//	uint        uint8, uint16, uint32, uint64 by width
//	float       float32, float64
//	complex     complex64, complex128
//	decimal     *apd.Decimal
//	string      string (NFC)
//	object      the value unchanged
//	category    string
//	datetime    time.Time, truncated to the type's unit
//	date        time.Time at midnight UTC
//	timedelta   time.Duration
//	period      Period
//	interval    Interval
//	uuid        uuid.UUID
//
// Null inputs (nil, NaN, and null tokens such as "NaN" or "NaT" for
// numeric and temporal kinds) convert to nil. Conversion failures are
// reported as *Error.
package convert
