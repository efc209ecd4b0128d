package t3d

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// UnrRotToDeg converts fixed-point rotation units to degrees (360/65536).
	UnrRotToDeg = 0.00549316540360483

	// IntensityMultiplier rescales legacy light brightness to intensity.
	IntensityMultiplier = 5000
)

// Vector is a 3-component vector.
type Vector struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v*s.
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s, v.Z * s} }

// Mul returns the component-wise product.
func (v Vector) Mul(o Vector) Vector { return Vector{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Cross returns the cross product v×o.
func (v Vector) Cross(o Vector) Vector {
	return Vector{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Size returns the length of v.
func (v Vector) Size() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// IsZero reports whether all components are zero.
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Normal returns v scaled to unit length and false if v is too small.
func (v Vector) Normal() (Vector, bool) {
	size := v.Size()
	if size < 1e-8 {
		return Vector{}, false
	}
	return v.Scale(1 / size), true
}

// Rotation returns the rotator pointing along v. Roll is always zero.
func (v Vector) Rotation() Rotator {
	return Rotator{
		Pitch: math.Atan2(v.Z, math.Sqrt(v.X*v.X+v.Y*v.Y)) * 180 / math.Pi,
		Yaw:   math.Atan2(v.Y, v.X) * 180 / math.Pi,
	}
}

// String formats v as "X=..,Y=..,Z=..".
func (v Vector) String() string {
	return fmt.Sprintf("X=%s,Y=%s,Z=%s", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
}

// Rotator is a rotation in degrees.
type Rotator struct {
	Pitch, Yaw, Roll float64
}

// Vector returns the unit direction the rotator points along.
func (r Rotator) Vector() Vector {
	sp, cp := math.Sincos(r.Pitch * math.Pi / 180)
	sy, cy := math.Sincos(r.Yaw * math.Pi / 180)
	return Vector{cp * cy, cp * sy, sp}
}

// RotateVector rotates v by r (yaw about Z, pitch about Y, roll about X).
func (r Rotator) RotateVector(v Vector) Vector {
	sp, cp := math.Sincos(r.Pitch * math.Pi / 180)
	sy, cy := math.Sincos(r.Yaw * math.Pi / 180)
	sr, cr := math.Sincos(r.Roll * math.Pi / 180)

	x := Vector{cp * cy, cp * sy, sp}
	y := Vector{sr*sp*cy - cr*sy, sr*sp*sy + cr*cy, -sr * cp}
	z := Vector{-(cr*sp*cy + sr*sy), cy*sr - cr*sp*sy, cr * cp}

	return x.Scale(v.X).Add(y.Scale(v.Y)).Add(z.Scale(v.Z))
}

// IsZero reports whether all components are zero.
func (r Rotator) IsZero() bool { return r.Pitch == 0 && r.Yaw == 0 && r.Roll == 0 }

// String formats r as "P=..,Y=..,R=..".
func (r Rotator) String() string {
	return fmt.Sprintf("P=%s,Y=%s,R=%s", formatFloat(r.Pitch), formatFloat(r.Yaw), formatFloat(r.Roll))
}

// Color is an RGBA color. Legacy 8-bit colors keep their 0-255 range.
type Color struct {
	R, G, B, A float64
}

// String formats c as "(R=..,G=..,B=..,A=..)".
func (c Color) String() string {
	return fmt.Sprintf("(R=%s,G=%s,B=%s,A=%s)", formatFloat(c.R), formatFloat(c.G), formatFloat(c.B), formatFloat(c.A))
}

// ParseVector parses "X=1,Y=2,Z=3", "(X=1,Y=2,Z=3)" or positional
// "+1.0,-2.0,+3.0". Missing trailing components are zero. A malformed
// component is zero and reported in the returned error along with the
// partial vector.
func ParseVector(s string) (Vector, error) {
	if fields := keyedFields(s); hasAnyKey(fields, "X", "Y", "Z") {
		var bad []string
		get := func(key string) float64 {
			raw, ok := fields[key]
			if !ok {
				return 0
			}
			f, err := ParseFloat(raw)
			if err != nil {
				bad = append(bad, key)
			}
			return f
		}
		v := Vector{get("X"), get("Y"), get("Z")}
		if len(bad) > 0 {
			return v, fmt.Errorf("vector %q: invalid %s", s, strings.Join(bad, ", "))
		}
		return v, nil
	}

	vals, err := parseComponents(s, 3)
	return Vector{vals[0], vals[1], vals[2]}, err
}

// ParseRotation parses "Pitch=..,Yaw=..,Roll=.." fixed-point units into
// degrees. A missing component is zero and reported as an error.
func ParseRotation(s string) (Rotator, error) {
	fields := keyedFields(s)

	var missing []string
	get := func(key string) float64 {
		raw, ok := fields[key]
		if !ok {
			missing = append(missing, key)
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil {
				missing = append(missing, key)
				return 0
			}
			n = int(f)
		}
		return float64(n) * UnrRotToDeg
	}

	r := Rotator{Pitch: get("Pitch"), Yaw: get("Yaw"), Roll: get("Roll")}
	if len(missing) > 0 {
		return r, fmt.Errorf("rotation %q: missing or invalid %s", s, strings.Join(missing, ", "))
	}
	return r, nil
}

// ParseColor parses "(R=..,G=..,B=..,A=..)" in any component order. Missing
// components are zero.
func ParseColor(s string) (Color, error) {
	fields := keyedFields(s)
	if len(fields) == 0 {
		return Color{}, fmt.Errorf("color %q: no components", s)
	}

	var bad []string
	get := func(key string) float64 {
		raw, ok := fields[key]
		if !ok {
			return 0
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			bad = append(bad, key)
			return 0
		}
		return f
	}

	c := Color{R: get("R"), G: get("G"), B: get("B"), A: get("A")}
	if len(bad) > 0 {
		return c, fmt.Errorf("color %q: invalid %s", s, strings.Join(bad, ", "))
	}
	return c, nil
}

// ParseFloat parses a legacy float, tolerating a leading '+'. Malformed
// input yields zero and an error.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// ParseInt parses a legacy integer, tolerating a leading '+'.
func ParseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func parseComponents(s string, n int) ([]float64, error) {
	vals := make([]float64, n)
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	if s == "" {
		return vals, fmt.Errorf("empty vector")
	}

	var errs []string
	for i, part := range strings.Split(s, ",") {
		if i >= n {
			break
		}
		if eq := strings.IndexByte(part, '='); eq >= 0 {
			part = part[eq+1:]
		}
		f, err := ParseFloat(part)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		vals[i] = f
	}

	if len(errs) > 0 {
		return vals, fmt.Errorf("vector %q: %s", s, strings.Join(errs, "; "))
	}
	return vals, nil
}

// keyedFields splits "(A=1,B=2)" into a map. Keys keep their case.
func keyedFields(s string) map[string]string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")

	fields := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return fields
}

func hasAnyKey(fields map[string]string, keys ...string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
