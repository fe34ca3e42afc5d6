package annotation

import (
	"image"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// maskFrom builds a mask from rows of '#' (foreground) and '.' (background).
func maskFrom(rows ...string) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				m.Pix[m.PixOffset(x, y)] = 255
			}
		}
	}
	return m
}

func TestExternalBoxes(t *testing.T) {
	tests := []struct {
		name string
		mask *image.Gray
		want []Rect
	}{
		{
			name: "empty mask",
			mask: maskFrom(
				"....",
				"....",
			),
			want: nil,
		},
		{
			name: "two separate blobs",
			mask: maskFrom(
				"##....",
				"##..#.",
				"....#.",
			),
			want: []Rect{{X: 0, Y: 0, W: 2, H: 2}, {X: 4, Y: 1, W: 1, H: 2}},
		},
		{
			name: "diagonal pixels join under 8-connectivity",
			mask: maskFrom(
				"#...",
				".#..",
				"..#.",
			),
			want: []Rect{{X: 0, Y: 0, W: 3, H: 3}},
		},
		{
			name: "blob inside a ring is not external",
			mask: maskFrom(
				".......",
				".#####.",
				".#...#.",
				".#.#.#.",
				".#...#.",
				".#####.",
				".......",
			),
			want: []Rect{{X: 1, Y: 1, W: 5, H: 5}},
		},
		{
			name: "full mask",
			mask: maskFrom(
				"###",
				"###",
			),
			want: []Rect{{X: 0, Y: 0, W: 3, H: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExternalBoxes(tt.mask)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExternalBoxes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestYOLOLines(t *testing.T) {
	lines, err := YOLOLines([]Rect{{X: 0, Y: 0, W: 2, H: 2}, {X: 4, Y: 1, W: 1, H: 2}}, 8, 4, 0)
	if err != nil {
		t.Fatalf("YOLOLines failed: %v", err)
	}
	want := []string{
		"0 0.125 0.25 0.25 0.5",
		"0 0.5625 0.5 0.125 0.5",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("YOLOLines() mismatch (-want +got):\n%s", diff)
	}

	if _, err := YOLOLines(nil, 0, 4, 0); err == nil || !strings.Contains(err.Error(), "invalid image size") {
		t.Errorf("expected invalid size error, got %v", err)
	}
}
