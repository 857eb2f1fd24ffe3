// Package coerce converts containers of values to canonical types and
// reports which elements could not be converted.
//
// An Engine maps descriptors to DataTypes through a sealed dtype.Registry.
// Each DataType offers three levels of conversion:
//
//   - Coerce casts a whole container and fails on the first problem.
//   - CoerceValue converts a single value.
//   - TryCoerce casts a container and, on failure, retries element by
//     element to build a FailureReport of every failing index and its
//     original value.
//
// Containers are supplied by the caller through the Container interface;
// the engine never inspects their concrete type. Whether a value that
// becomes null during a cast counts as a failure is decided per kind by
// NullPolicyFor.
package coerce
