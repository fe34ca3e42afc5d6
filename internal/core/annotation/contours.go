// Package annotation turns binarized label masks into detection annotations.
// This is part of the Functional Core - no I/O, only pure functions.
package annotation

import (
	"image"
	"sort"
)

// Rect is an axis-aligned pixel rectangle: top-left corner plus size.
type Rect struct {
	X, Y, W, H int
}

// ExternalBoxes returns the bounding rectangle of every external contour in
// mask. Any non-zero pixel is foreground. Foreground is 8-connected; a
// component lying entirely inside a hole of another component has no
// external contour and is omitted. Results are sorted top-to-bottom, then
// left-to-right.
func ExternalBoxes(mask *image.Gray) []Rect {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	fg := func(x, y int) bool {
		return mask.Pix[mask.PixOffset(b.Min.X+x, b.Min.Y+y)] != 0
	}

	// Background reachable from outside the raster, 4-connected (the dual
	// of 8-connected foreground).
	outside := make([]bool, w*h)
	var stack []int
	push := func(x, y int) {
		i := y*w + x
		if !outside[i] && !fg(x, y) {
			outside[i] = true
			stack = append(stack, i)
		}
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}

	seen := make([]bool, w*h)
	var rects []Rect
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			if seen[sy*w+sx] || !fg(sx, sy) {
				continue
			}

			minX, minY, maxX, maxY := sx, sy, sx, sy
			external := false
			seen[sy*w+sx] = true
			stack = append(stack[:0], sy*w+sx)
			for len(stack) > 0 {
				i := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				x, y := i%w, i/w
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
				if x == 0 || y == 0 || x == w-1 || y == h-1 {
					external = true
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := x+dx, y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						j := ny*w + nx
						if (dx == 0) != (dy == 0) && outside[j] {
							external = true
						}
						if !seen[j] && fg(nx, ny) {
							seen[j] = true
							stack = append(stack, j)
						}
					}
				}
			}

			if external {
				rects = append(rects, Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1})
			}
		}
	}

	sort.SliceStable(rects, func(i, j int) bool {
		if rects[i].Y != rects[j].Y {
			return rects[i].Y < rects[j].Y
		}
		return rects[i].X < rects[j].X
	})
	return rects
}
