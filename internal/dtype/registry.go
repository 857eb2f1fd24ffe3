package dtype

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// descKey is the equivalence-table key of a descriptor. Exactly one field
// is set.
type descKey struct {
	alias  string
	goType reflect.Type
	typ    Type
	value  any
}

// Entry is a canonical type and its registered equivalents, in
// registration order.
type Entry struct {
	Type        Type
	Equivalents []any
}

// Registry maps descriptors to canonical types.
//
// Registration happens during warm-up under a mutex: the first writer of a
// descriptor wins and conflicting writers fail fast. Seal ends warm-up;
// afterwards the registry is read-only and lookups take no lock.
type Registry struct {
	mu     sync.Mutex
	sealed atomic.Bool

	table       map[descKey]Type
	equivalents map[Type][]any
	order       []Type
	hooks       map[reflect.Type]FromParametrized
}

// NewRegistry creates an empty, unsealed registry. Most callers want
// InitializeRegistry instead.
func NewRegistry() *Registry {
	return &Registry{
		table:       make(map[descKey]Type),
		equivalents: make(map[Type][]any),
		hooks:       make(map[reflect.Type]FromParametrized),
	}
}

// Register binds t, its canonical string and every equivalent descriptor
// to t. Re-registering a descriptor to the same type is a no-op.
func (r *Registry) Register(t Type, equivalents ...any) error {
	if !t.IsValid() {
		return fmt.Errorf("cannot register invalid type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return ErrRegistrySealed
	}

	descriptors := append([]any{t, t.String()}, equivalents...)

	// Validate the whole batch before mutating so a conflict leaves the
	// registry untouched.
	keys := make([]descKey, len(descriptors))
	for i, d := range descriptors {
		k, ok := keyOf(d)
		if !ok {
			return fmt.Errorf("descriptor %s is not comparable and cannot be registered", describe(d))
		}
		if existing, found := r.table[k]; found && existing != t {
			return &DuplicateRegistrationError{Descriptor: d, Existing: existing, Requested: t}
		}
		keys[i] = k
	}

	if _, known := r.equivalents[t]; !known {
		r.order = append(r.order, t)
		r.equivalents[t] = nil
	}
	for i, k := range keys {
		if _, found := r.table[k]; found {
			continue
		}
		r.table[k] = t
		if i > 0 {
			r.equivalents[t] = append(r.equivalents[t], descriptors[i])
		}
	}
	return nil
}

// RegisterParametrized binds a parametrized descriptor struct type to the
// hook that derives a canonical type from its values.
func (r *Registry) RegisterParametrized(class reflect.Type, hook FromParametrized) error {
	if class == nil || hook == nil {
		return fmt.Errorf("parametrized registration requires a class and a hook")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return ErrRegistrySealed
	}
	if _, found := r.hooks[class]; found {
		return fmt.Errorf("parametrized class %s already registered", class)
	}
	r.hooks[class] = hook
	return nil
}

// Seal ends warm-up. Further registration returns ErrRegistrySealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed.Store(true)
}

// Sealed reports whether warm-up has ended.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Resolve maps a descriptor to exactly one canonical type.
func (r *Registry) Resolve(descriptor any) (Type, error) {
	if descriptor == nil {
		return Type{}, &UnresolvedTypeError{Descriptor: descriptor, Reason: "nil descriptor"}
	}

	// 1. exact match
	if k, ok := keyOf(descriptor); ok {
		if t, found := r.lookup(k); found {
			return t, nil
		}
	}

	// A valid canonical type is its own descriptor even when it was never
	// registered, e.g. a category with a specific category set.
	if t, ok := descriptor.(Type); ok {
		if t.IsValid() {
			return t, nil
		}
		return Type{}, &UnresolvedTypeError{Descriptor: descriptor, Reason: "invalid type"}
	}

	// 2. parametrized descriptors
	if t, handled, err := r.resolveParametrized(descriptor); handled {
		return t, err
	}

	// 3. native fallback
	switch d := descriptor.(type) {
	case string:
		return r.resolveAlias(d)
	case reflect.Type:
		return r.resolveGoType(d)
	}

	return Type{}, &UnresolvedTypeError{
		Descriptor: descriptor,
		Reason:     fmt.Sprintf("unsupported descriptor of type %T", descriptor),
	}
}

// MustResolve is like Resolve but panics on error.
// Use only with descriptors known to be registered.
func (r *Registry) MustResolve(descriptor any) Type {
	t, err := r.Resolve(descriptor)
	if err != nil {
		panic(err)
	}
	return t
}

// Equivalents returns the descriptors registered for t, excluding t itself.
func (r *Registry) Equivalents(t Type) []any {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return append([]any(nil), r.equivalents[t]...)
}

// Entries returns a snapshot of every registered type in registration order.
func (r *Registry) Entries() []Entry {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	entries := make([]Entry, len(r.order))
	for i, t := range r.order {
		entries[i] = Entry{Type: t, Equivalents: append([]any(nil), r.equivalents[t]...)}
	}
	return entries
}

func (r *Registry) lookup(k descKey) (Type, bool) {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	t, ok := r.table[k]
	return t, ok
}

func (r *Registry) hook(class reflect.Type) (FromParametrized, bool) {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	h, ok := r.hooks[class]
	return h, ok
}

// resolveParametrized handles parametrized descriptor values and their
// struct types. handled is false when no hook applies.
func (r *Registry) resolveParametrized(descriptor any) (t Type, handled bool, err error) {
	if class, ok := descriptor.(reflect.Type); ok {
		h, found := r.hook(class)
		if !found {
			return Type{}, false, nil
		}
		// The class itself was not registered: instantiate it with no
		// arguments and derive the type from the zero value.
		t, err := h(r, reflect.Zero(class).Interface())
		if err != nil {
			return Type{}, true, &UnresolvedTypeError{
				Descriptor: descriptor,
				Reason:     fmt.Sprintf("%s cannot be instantiated: %v; use a value or a string alias", class, err),
			}
		}
		return t, true, nil
	}

	rv := reflect.ValueOf(descriptor)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	h, found := r.hook(rv.Type())
	if !found {
		return Type{}, false, nil
	}
	t, err = h(r, rv.Interface())
	if err != nil {
		return Type{}, true, &UnresolvedTypeError{Descriptor: descriptor, Reason: err.Error()}
	}
	return t, true, nil
}

// keyOf returns the table key for a descriptor. ok is false for values
// that cannot be map keys.
func keyOf(d any) (descKey, bool) {
	switch v := d.(type) {
	case string:
		return descKey{alias: v}, true
	case reflect.Type:
		return descKey{goType: v}, true
	case Type:
		if v.model != nil && !reflect.TypeOf(v.model).Comparable() {
			return descKey{}, false
		}
		return descKey{typ: v}, true
	}
	if d == nil || !isComparable(reflect.ValueOf(d)) {
		return descKey{}, false
	}
	return descKey{value: d}, true
}

// isComparable reports whether v can be used as a map key without
// panicking, looking through interface-typed fields.
func isComparable(v reflect.Value) bool {
	if !v.Type().Comparable() {
		return false
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return true
		}
		return isComparable(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !isComparable(v.Field(i)) {
				return false
			}
		}
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !isComparable(v.Index(i)) {
				return false
			}
		}
	}
	return true
}
