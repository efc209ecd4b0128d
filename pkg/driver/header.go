package driver

import (
	"errors"
	"slices"

	"forge-hq/t3dport/pkg/t3d"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

// ErrUnexpectedClass is wrapped by ReadHeader when the object class is not
// one the caller accepts.
var ErrUnexpectedClass = errors.New("unexpected class")

// Header is the "Begin Object Class=<Class> Name=<Name>" line of a block.
type Header struct {
	Class string
	Name  string
	Line  int
}

// ReadHeader advances to the first line of an object document and parses
// its header. The line is mandatory. When accept is non-empty, a class
// outside it yields a structural error wrapping ErrUnexpectedClass; the
// header is returned alongside so callers can reclassify.
func ReadHeader(cur *t3d.Cursor, accept ...string) (Header, error) {
	if !cur.Next() {
		return Header{}, t3derrors.Structural("empty document, expected Begin Object")
	}
	return ParseHeader(cur, accept...)
}

// ParseHeader parses the header on the current line.
func ParseHeader(cur *t3d.Cursor, accept ...string) (Header, error) {
	h := Header{Line: cur.LineNumber()}

	class, ok := cur.IsBeginObject()
	if !ok {
		return h, t3derrors.Structural("expected Begin Object, got %q", cur.Line()).At("", h.Line)
	}
	if class == "" {
		return h, t3derrors.Structural("object header has no Class=").At("", h.Line)
	}
	h.Class = class

	name, ok := cur.Value(" Name=", t3d.AnyOffset)
	if !ok || name == "" {
		return h, t3derrors.Structural("%s header has no Name=", class).At("", h.Line)
	}
	h.Name = name

	if len(accept) > 0 && !slices.Contains(accept, class) {
		return h, t3derrors.Wrap(t3derrors.ErrorTypeStructural, ErrUnexpectedClass,
			"class %s is not one of %v", class, accept).At("", h.Line).For(name)
	}
	return h, nil
}
