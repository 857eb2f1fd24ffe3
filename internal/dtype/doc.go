// Package dtype provides the canonical semantic type system and the
// registry that resolves type descriptors to it.
//
// A Type is a flat tagged value {Kind, BitWidth, params}. Numeric widths are
// parameters, not subtypes: Int32 and Int64 share behavior through Kind.
//
// A descriptor is any caller-facing spelling of a type: a Type, a string
// alias ("int64", "decimal(5,2)", "datetime64[ns, UTC]"), the reflect.Type
// of a native Go type, a parametrized descriptor value (CategoricalDtype,
// DatetimeTZDtype, ...) or the reflect.Type of a parametrized descriptor
// struct. Resolution precedence:
//
//  1. exact descriptor match in the equivalence table
//  2. parametrized descriptors through their registered hook
//  3. native fallback: alias normalization and parametrized string syntax
//     for strings, reflect.Kind normalization for Go types
//
// There is no package-level registry. InitializeRegistry builds and seals
// one; callers pass it explicitly. A sealed registry is read-only and safe
// for concurrent use without locks.
package dtype
