package compose

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateName is wrapped by DuplicateError when strict composition finds
// more than one entry with the same key.
var ErrDuplicateName = errors.New("duplicate name")

// Keyed is implemented by every table entry. Key is the entry's name within
// its table.
type Keyed interface {
	Key() string
}

// Membership reports whether a named dependency is part of the current build.
type Membership interface {
	Has(name string) bool
}

// MembershipFunc adapts a plain function to the Membership interface.
type MembershipFunc func(name string) bool

// Has implements Membership.
func (f MembershipFunc) Has(name string) bool { return f(name) }

// Set is a Membership backed by a fixed set of names.
type Set map[string]struct{}

// NewSet builds a Set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has implements Membership.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Entry is an addition, optionally guarded by the names it requires.
// Override marks an intended redefinition of an existing key; only strict
// composition looks at it.
type Entry[T Keyed] struct {
	Value    T
	Requires []string
	Override bool
}

// Always wraps values as unguarded additions.
func Always[T Keyed](values ...T) []Entry[T] {
	out := make([]Entry[T], 0, len(values))
	for _, v := range values {
		out = append(out, Entry[T]{Value: v})
	}
	return out
}

// Layer describes one composition step over a table.
type Layer[T Keyed] struct {
	Add    []Entry[T]
	Remove []string
}

// DuplicateError reports a key defined more than once without an explicit
// override.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %q is already defined", ErrDuplicateName, e.Name)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateName }

type options struct {
	strict bool
}

// Option configures Compose.
type Option func(*options)

// Strict makes Compose fail when an addition reuses an existing key without
// being marked as an override.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Compose appends the layer's additions to base, skipping additions whose
// requirements are not members, and then removes every entry whose key is in
// the layer's removal list. base is not modified. A nil membership treats
// every guarded addition as satisfied.
func Compose[T Keyed](base []T, layer Layer[T], deps Membership, opts ...Option) ([]T, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var seen Set
	if o.strict {
		if err := CheckUnique(base); err != nil {
			return nil, err
		}
		seen = NewSet(Names(base)...)
	}

	merged := make([]T, 0, len(base)+len(layer.Add))
	merged = append(merged, base...)
	for _, add := range layer.Add {
		if !satisfied(add.Requires, deps) {
			continue
		}
		key := add.Value.Key()
		if o.strict {
			if seen.Has(key) && !add.Override {
				return nil, &DuplicateError{Name: key}
			}
			seen[key] = struct{}{}
		}
		merged = append(merged, add.Value)
	}

	return RemoveNames(merged, layer.Remove...), nil
}

func satisfied(requires []string, deps Membership) bool {
	if deps == nil {
		return true
	}
	for _, r := range requires {
		if !deps.Has(r) {
			return false
		}
	}
	return true
}

// RemoveNames deletes every entry whose key is in names. Absent names are
// ignored.
func RemoveNames[T Keyed](entries []T, names ...string) []T {
	if len(names) == 0 {
		return entries
	}
	drop := NewSet(names...)
	return Remove(entries, func(e T) bool { return drop.Has(e.Key()) })
}

// Remove deletes, in place, every entry for which match returns true and
// returns the shortened slice.
func Remove[T any](entries []T, match func(T) bool) []T {
	return slices.DeleteFunc(entries, match)
}

// Resolve collapses shadowed entries. Each key appears once, at the position
// of its first occurrence, carrying the value of its last occurrence.
func Resolve[T Keyed](entries []T) []T {
	index := make(map[string]int, len(entries))
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Key()]; ok {
			out[i] = e
			continue
		}
		index[e.Key()] = len(out)
		out = append(out, e)
	}
	return out
}

// Lookup returns the effective entry for name, which is its last occurrence.
func Lookup[T Keyed](entries []T, name string) (T, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Key() == name {
			return entries[i], true
		}
	}
	var zero T
	return zero, false
}

// CheckUnique returns a *DuplicateError for the first key found more than
// once.
func CheckUnique[T Keyed](entries []T) error {
	seen := make(Set, len(entries))
	for _, e := range entries {
		if seen.Has(e.Key()) {
			return &DuplicateError{Name: e.Key()}
		}
		seen[e.Key()] = struct{}{}
	}
	return nil
}

// Names lists the keys of entries in order.
func Names[T Keyed](entries []T) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key())
	}
	return out
}
