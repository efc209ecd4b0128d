package resolver

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyReference is returned for an empty reference string.
	ErrEmptyReference = errors.New("empty reference")

	// ErrUnterminatedQuote is returned when a quoted reference has no
	// closing quote.
	ErrUnterminatedQuote = errors.New("missing closing quote")

	// ErrMissingKind is returned when a quoted reference has nothing before
	// its opening quote.
	ErrMissingKind = errors.New("missing kind before quote")

	// ErrMissingName is returned when a reference has no name after its
	// last dot.
	ErrMissingName = errors.New("missing name")
)

// Reference identifies a named object across documents.
//
// A Reference is a value: it cannot change after construction. Two
// references are the same object when their keys are equal, whatever text
// they were parsed from.
type Reference struct {
	kind     string
	location string
	name     string
	raw      string
}

// NewReference builds a reference from its parts.
func NewReference(kind, location, name string) Reference {
	return Reference{kind: kind, location: location, name: name}
}

// ParseReference parses "Kind'Location.Name'", "Kind'Name'",
// "Location.Name" or "Name". Location and name are split on the last dot;
// without a dot, location is currentLocation. Bare references have an empty
// kind, see WithKind.
func ParseReference(raw, currentLocation string) (Reference, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Reference{}, ErrEmptyReference
	}

	var kind, body string
	if q := strings.IndexByte(s, '\''); q >= 0 {
		if q == 0 {
			return Reference{}, fmt.Errorf("parse reference %q: %w", raw, ErrMissingKind)
		}
		if len(s) < q+2 || !strings.HasSuffix(s, "'") {
			return Reference{}, fmt.Errorf("parse reference %q: %w", raw, ErrUnterminatedQuote)
		}
		kind = s[:q]
		body = s[q+1 : len(s)-1]
	} else {
		body = s
	}

	location := currentLocation
	name := body
	if dot := strings.LastIndexByte(body, '.'); dot >= 0 {
		location = body[:dot]
		name = body[dot+1:]
	}
	if name == "" {
		return Reference{}, fmt.Errorf("parse reference %q: %w", raw, ErrMissingName)
	}

	return Reference{kind: kind, location: location, name: name, raw: raw}, nil
}

// MustParse is ParseReference that panics on error. For tests and
// constant tables.
func MustParse(raw, currentLocation string) Reference {
	ref, err := ParseReference(raw, currentLocation)
	if err != nil {
		panic(err)
	}
	return ref
}

// Kind returns the object category, for example "Material".
func (r Reference) Kind() string { return r.kind }

// Location returns the dot-separated container path.
func (r Reference) Location() string { return r.location }

// Name returns the bare object name.
func (r Reference) Name() string { return r.name }

// Raw returns the text the reference was parsed from, if any.
func (r Reference) Raw() string { return r.raw }

// IsZero reports whether r is the zero Reference.
func (r Reference) IsZero() bool { return r.kind == "" && r.location == "" && r.name == "" }

// WithKind returns a copy of r with kind replaced.
func (r Reference) WithKind(kind string) Reference {
	r.kind = kind
	return r
}

// WithDefaultKind returns r with kind set only if it is empty.
func (r Reference) WithDefaultKind(kind string) Reference {
	if r.kind != "" {
		return r
	}
	return r.WithKind(kind)
}

// Key returns the canonical identity "Kind'Location.Name'".
func (r Reference) Key() string {
	if r.location == "" {
		return r.kind + "'" + r.name + "'"
	}
	return r.kind + "'" + r.location + "." + r.name + "'"
}

// Equal reports whether r and o identify the same object.
func (r Reference) Equal(o Reference) bool { return r.Key() == o.Key() }

// String returns the canonical key.
func (r Reference) String() string { return r.Key() }

// Dir returns the location as a slash-separated relative directory.
func (r Reference) Dir() string { return strings.ReplaceAll(r.location, ".", "/") }
