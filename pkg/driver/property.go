package driver

import (
	"maps"
)

// Setter applies a raw property value to target.
type Setter[T any] func(target T, value string) error

// PropertyTable maps property names to typed setters for one object kind.
// Tables are built once at package initialization.
type PropertyTable[T any] map[string]Setter[T]

// Apply runs the setter registered for name. It reports whether name is
// known; an unknown name is not an error.
func (pt PropertyTable[T]) Apply(target T, name, value string) (bool, error) {
	set, ok := pt[name]
	if !ok {
		return false, nil
	}
	return true, set(target, value)
}

// Only returns a copy of the table restricted to names.
func (pt PropertyTable[T]) Only(names ...string) PropertyTable[T] {
	out := make(PropertyTable[T], len(names))
	for _, n := range names {
		if set, ok := pt[n]; ok {
			out[n] = set
		}
	}
	return out
}

// With returns a copy of the table extended with extra. Entries in extra
// win.
func (pt PropertyTable[T]) With(extra PropertyTable[T]) PropertyTable[T] {
	out := maps.Clone(pt)
	if out == nil {
		out = make(PropertyTable[T], len(extra))
	}
	maps.Copy(out, extra)
	return out
}
