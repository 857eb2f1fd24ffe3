package coerce

import "github.com/roach88/dtengine/internal/dtype"

// NullPolicy decides what happens when a non-null value becomes null
// during a cast.
type NullPolicy int

const (
	// QuietNull accepts the null.
	QuietNull NullPolicy = iota

	// HardFailure treats the element as a conversion failure.
	HardFailure
)

func (p NullPolicy) String() string {
	if p == HardFailure {
		return "hard_failure"
	}
	return "quiet_null"
}

// NullPolicyFor returns the null-cast policy of a kind. Categorical casts
// map unknown labels to null, so nulls that were not nulls before the
// cast are failures.
func NullPolicyFor(k dtype.Kind) NullPolicy {
	switch k {
	case dtype.KindCategory:
		return HardFailure
	}
	return QuietNull
}
