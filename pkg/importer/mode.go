package importer

import (
	"errors"
	"fmt"
	"strings"

	"forge-hq/t3dport/pkg/driver/instance"
	"forge-hq/t3dport/pkg/driver/material"
)

// ErrUnknownMode is returned by ParseMode for unrecognized names.
var ErrUnknownMode = errors.New("unknown import mode")

// Mode selects what an import run reads.
type Mode string

const (
	// ModeScene imports the level document and everything it references.
	ModeScene Mode = "scene"

	// ModeMesh scans for static mesh documents and binds them to existing
	// meshes.
	ModeMesh Mode = "mesh"

	// ModeMaterial scans for material documents and builds them.
	ModeMaterial Mode = "material"

	// ModeMaterialInstance scans for material instance documents and builds
	// them, parents first.
	ModeMaterialInstance Mode = "material-instance"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeScene, ModeMesh, ModeMaterial, ModeMaterialInstance}

// ParseMode parses a mode name or one of its aliases, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scene", "map":
		return ModeScene, nil
	case "mesh", "staticmesh":
		return ModeMesh, nil
	case "material":
		return ModeMaterial, nil
	case "material-instance", "materialinstanceconstant", "mic":
		return ModeMaterialInstance, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String returns the canonical mode name.
func (m Mode) String() string {
	return string(m)
}

// IsBatch reports whether the mode scans the source tree.
func (m Mode) IsBatch() bool {
	return m == ModeMesh || m == ModeMaterial || m == ModeMaterialInstance
}

// ResourceKind returns the reference kind registered for scanned documents
// in batch modes.
func (m Mode) ResourceKind() string {
	switch m {
	case ModeMesh:
		return "StaticMesh"
	case ModeMaterial:
		return material.Kind
	case ModeMaterialInstance:
		return instance.Kind
	default:
		return ""
	}
}

// NormalizeSource converts backslashes to slashes and strips one trailing
// slash.
func NormalizeSource(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimSuffix(p, "/")
}

// NormalizeDestination converts backslashes to slashes, then strips one
// trailing and one leading slash.
func NormalizeDestination(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimSuffix(p, "/")
	return strings.TrimPrefix(p, "/")
}
