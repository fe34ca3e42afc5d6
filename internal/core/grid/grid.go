// Package grid computes the overlapping bounding boxes that cover an extent.
// This is part of the Functional Core - no I/O, only pure functions.
package grid

import (
	"errors"
	"fmt"

	"github.com/example/tilegrab/internal/core/tile"
)

// Overlap is the fraction of a tile shared with its neighbour on each axis.
const Overlap = 0.5

var (
	// ErrInvalidExtent is returned when end is not strictly after start, or
	// when the tile size is not positive.
	ErrInvalidExtent = errors.New("grid: invalid extent")

	// ErrExtentTooSmall is returned when an axis is shorter than one tile.
	ErrExtentTooSmall = errors.New("grid: extent smaller than one tile")
)

// Point is a planar coordinate.
type Point struct {
	X, Y float64
}

// Size is a tile size in ground units.
type Size struct {
	W, H float64
}

// SizeFor returns the ground size of a tile of the given pixel dimensions.
func SizeFor(widthPx, heightPx int, resolution float64) Size {
	return Size{W: float64(widthPx) * resolution, H: float64(heightPx) * resolution}
}

// Generate returns the boxes covering [start, end], x-major.
func Generate(start, end Point, size Size) ([]tile.BoundingBox, error) {
	xs, err := Positions(start.X, end.X, size.W)
	if err != nil {
		return nil, fmt.Errorf("x axis: %w", err)
	}
	ys, err := Positions(start.Y, end.Y, size.H)
	if err != nil {
		return nil, fmt.Errorf("y axis: %w", err)
	}

	boxes := make([]tile.BoundingBox, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			boxes = append(boxes, tile.BoundingBox{X0: x, Y0: y, X1: x + size.W, Y1: y + size.H})
		}
	}
	return boxes, nil
}

// Count returns the number of boxes Generate would produce.
func Count(start, end Point, size Size) (int, error) {
	xs, err := Positions(start.X, end.X, size.W)
	if err != nil {
		return 0, fmt.Errorf("x axis: %w", err)
	}
	ys, err := Positions(start.Y, end.Y, size.H)
	if err != nil {
		return 0, fmt.Errorf("y axis: %w", err)
	}
	return len(xs) * len(ys), nil
}

// Positions returns the near-edge positions along one axis. Positions are
// stepped by half the tile size; when the last step falls short of end a
// final position is anchored so the tile's far edge lands exactly on end.
func Positions(start, end, size float64) ([]float64, error) {
	if size <= 0 || end <= start {
		return nil, ErrInvalidExtent
	}
	limit := end - size
	if start > limit {
		return nil, ErrExtentTooSmall
	}

	step := size * (1 - Overlap)
	var out []float64
	for i := 0; ; i++ {
		// start + i*step, never accumulated.
		p := start + float64(i)*step
		if p > limit {
			break
		}
		out = append(out, p)
	}

	if out[len(out)-1]+size < end {
		out = append(out, limit)
	}
	return out, nil
}
