// Package tile contains the pure data model for a single map tile.
// This is part of the Functional Core - no I/O, only pure functions.
package tile

import (
	"fmt"
	"strconv"
	"strings"
)

// BoundingBox is a rectangle in a planar coordinate reference system.
// Invariant: X1 > X0 and Y1 > Y0.
type BoundingBox struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the box width in ground units.
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the box height in ground units.
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// Valid reports whether the box has positive extent on both axes.
func (b BoundingBox) Valid() bool {
	return b.X1 > b.X0 && b.Y1 > b.Y0
}

// Coords returns the coordinates in WMS BBOX order.
func (b BoundingBox) Coords() [4]float64 {
	return [4]float64{b.X0, b.Y0, b.X1, b.Y1}
}

// String returns the comma-joined coordinate list used in query strings.
func (b BoundingBox) String() string {
	c := b.Coords()
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = FormatCoord(v)
	}
	return strings.Join(parts, ",")
}

// FormatCoord formats a coordinate with the shortest decimal representation
// that round-trips, so equal coordinates always format identically.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Key is the deterministic identifier of a tile, derived from its coordinates.
type Key string

// KeyOf derives the tile key for a bounding box.
func KeyOf(b BoundingBox) Key {
	c := b.Coords()
	return Key(fmt.Sprintf("%s_%s_%s_%s",
		FormatCoord(c[0]), FormatCoord(c[1]), FormatCoord(c[2]), FormatCoord(c[3])))
}

// Filename returns the on-disk file name shared by the label and image files.
func (k Key) Filename() string {
	return string(k) + ".png"
}

// ParseKey parses a key (or a file name with extension) back into a bounding box.
func ParseKey(s string) (BoundingBox, error) {
	if i := strings.LastIndex(s, "."); i > 0 && !isNumericSuffix(s[i+1:]) {
		s = s[:i]
	}
	parts := strings.Split(s, "_")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("invalid tile key %q: want 4 coordinates", s)
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("invalid tile key %q: %w", s, err)
		}
		vals[i] = v
	}
	b := BoundingBox{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}
	if !b.Valid() {
		return BoundingBox{}, fmt.Errorf("invalid tile key %q: empty box", s)
	}
	return b, nil
}

func isNumericSuffix(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
