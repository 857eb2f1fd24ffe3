package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/roach88/dtengine/internal/dtype"
	"golang.org/x/text/unicode/norm"
)

// ToString renders v as an NFC-normalized string. Floats use the shortest
// representation that round-trips; timestamps use RFC 3339.
func ToString(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	case []rune:
		s = string(x)
	case float64:
		s = strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		s = x.Format(time.RFC3339Nano)
	case *apd.Decimal:
		s = x.Text('f')
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(v)
	}
	return norm.NFC.String(s)
}

// ToUUID converts UUIDs, 16-byte arrays and UUID strings in any of the
// forms accepted by uuid.Parse.
func ToUUID(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case []byte:
		id, err := uuid.FromBytes(x)
		if err != nil {
			return uuid.Nil, failWith(v, dtype.UUID, err)
		}
		return id, nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(x))
		if err != nil {
			return uuid.Nil, failWith(v, dtype.UUID, err)
		}
		return id, nil
	}
	return uuid.Nil, fail(v, dtype.UUID, "not a uuid")
}

// CategorySet holds the declared categories of a categorical type for
// membership tests.
type CategorySet struct {
	members map[string]bool
}

// NewCategorySet returns the category set of t. A type with inferred
// categories accepts every value.
func NewCategorySet(t dtype.Type) CategorySet {
	if !t.HasCategories() {
		return CategorySet{}
	}
	cats := t.Categories()
	members := make(map[string]bool, len(cats))
	for _, c := range cats {
		members[c] = true
	}
	return CategorySet{members: members}
}

// Contains reports whether the string form of v is a member.
func (cs CategorySet) Contains(v any) bool {
	if cs.members == nil {
		return true
	}
	return cs.members[ToString(v)]
}

// ToCategory converts v to its category label. ok is false when the label
// is not a declared category.
func ToCategory(v any, cs CategorySet) (label string, ok bool) {
	label = ToString(v)
	return label, cs.members == nil || cs.members[label]
}
