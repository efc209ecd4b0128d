package assets

import (
	"context"
	"maps"
	"strings"
	"time"
)

// Store constructs and locates target objects. It is the only owner of
// objects; importers hold *Object handles without owning them.
type Store interface {
	// LocateOrCreate returns the object at location/name, creating an empty
	// one of the given kind if none exists. It is idempotent.
	LocateOrCreate(ctx context.Context, kind, location, name string) (*Object, error)

	// Lookup returns an existing object or ErrNotFound.
	Lookup(ctx context.Context, location, name string) (*Object, error)

	// ApplyProperty assigns a raw property value. Names outside the
	// store's schema for the object's kind yield ErrUnsupportedProperty.
	ApplyProperty(ctx context.Context, obj *Object, name, value string) error

	// Link points a slot of obj at target.
	Link(ctx context.Context, obj *Object, slot string, target *Object) error

	// Reset clears the properties and links of obj before a re-import.
	Reset(ctx context.Context, obj *Object) error

	// Finalize commits obj once all its properties are applied.
	Finalize(ctx context.Context, obj *Object) error

	// Objects lists objects of one kind, or all objects for an empty kind,
	// ordered by path.
	Objects(ctx context.Context, kind string) ([]*Object, error)

	// Close releases the store's resources.
	Close() error
}

// Pinger is implemented by stores that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Object is a constructed target object.
type Object struct {
	ID       string
	Kind     string
	Location string
	Name     string

	// Properties holds raw property values by name.
	Properties map[string]string

	// Links maps a slot name to the path of the linked object.
	Links map[string]string

	// Finalized counts Finalize calls.
	Finalized int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Path returns the object path "<location>/<name>.<name>".
func (o *Object) Path() string {
	return ObjectPath(o.Location, o.Name)
}

// Property returns a property value.
func (o *Object) Property(name string) (string, bool) {
	v, ok := o.Properties[name]
	return v, ok
}

// Link returns the path linked in slot.
func (o *Object) Link(slot string) (string, bool) {
	v, ok := o.Links[slot]
	return v, ok
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	c := *o
	c.Properties = maps.Clone(o.Properties)
	c.Links = maps.Clone(o.Links)
	if c.Properties == nil {
		c.Properties = make(map[string]string)
	}
	if c.Links == nil {
		c.Links = make(map[string]string)
	}
	return &c
}

// PackagePath joins a destination root and a dot-separated location into
// a "/Game/..." package path.
func PackagePath(destination, location string) string {
	parts := []string{"/Game"}
	if destination != "" {
		parts = append(parts, strings.Trim(destination, "/"))
	}
	if location != "" {
		parts = append(parts, strings.ReplaceAll(location, ".", "/"))
	}
	return strings.Join(parts, "/")
}

// ObjectPath returns "<location>/<name>.<name>".
func ObjectPath(location, name string) string {
	return location + "/" + name + "." + name
}

// Compatible reports whether an object of kind have can satisfy a
// reference asking for kind want.
func Compatible(want, have string) bool {
	switch {
	case want == have:
		return true
	case want == "DecalMaterial":
		return have == "Material"
	case strings.HasPrefix(want, "Texture"):
		return strings.HasPrefix(have, "Texture")
	case want == "MaterialInstanceConstant", want == "MaterialInterface":
		return have == "Material" || have == "MaterialInstanceConstant"
	default:
		return false
	}
}
