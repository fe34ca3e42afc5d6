// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"bufio"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // imagery may be served as JPEG
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/example/tilegrab/internal/core/tile"
	"github.com/example/tilegrab/internal/ports/secondary"
)

// Directory names under a run root.
const (
	ImagesDir      = "images"
	LabelsDir      = "labels"
	AnnotationsDir = "annotations"
)

// RootName returns the run directory name keyed by extent, resolution and tile pixel size.
func RootName(startX, startY, endX, endY, resolution float64, widthPx, heightPx int) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s_%d_%d",
		tile.FormatCoord(startX), tile.FormatCoord(startY),
		tile.FormatCoord(endX), tile.FormatCoord(endY),
		tile.FormatCoord(resolution), widthPx, heightPx)
}

// TileStore implements secondary.TileStore and secondary.MaskSource on a
// local directory tree.
type TileStore struct {
	root string
}

// NewTileStore creates a store rooted at root. Nothing is created on disk
// until EnsureLayout is called.
func NewTileStore(root string) *TileStore {
	return &TileStore{root: root}
}

// Root returns the run's output directory.
func (s *TileStore) Root() string {
	return s.root
}

// ImagesPath returns the images/ directory.
func (s *TileStore) ImagesPath() string {
	return filepath.Join(s.root, ImagesDir)
}

// LabelsPath returns the labels/ directory.
func (s *TileStore) LabelsPath() string {
	return filepath.Join(s.root, LabelsDir)
}

// AnnotationsPath returns the annotations/ directory.
func (s *TileStore) AnnotationsPath() string {
	return filepath.Join(s.root, AnnotationsDir)
}

// EnsureLayout creates the images/ and labels/ directories.
func (s *TileStore) EnsureLayout(ctx context.Context) error {
	for _, dir := range []string{s.ImagesPath(), s.LabelsPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// ExistingImages returns the names of *.png files already in images/.
// A missing directory yields an empty set.
func (s *TileStore) ExistingImages(ctx context.Context) (map[string]struct{}, error) {
	names, err := listPNG(s.ImagesPath())
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set, nil
}

// WriteMask encodes mask as PNG into labels/.
func (s *TileStore) WriteMask(ctx context.Context, filename string, mask *image.Gray) (err error) {
	path := filepath.Join(s.LabelsPath(), filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create label file: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	w := bufio.NewWriter(f)
	if err := png.Encode(w, mask); err != nil {
		return fmt.Errorf("failed to encode label %s: %w", filename, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write label %s: %w", filename, err)
	}
	return nil
}

// WriteImage writes raw image bytes into images/.
func (s *TileStore) WriteImage(ctx context.Context, filename string, data []byte) error {
	path := filepath.Join(s.ImagesPath(), filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// ListMasks returns the mask file names in labels/, sorted.
func (s *TileStore) ListMasks(ctx context.Context) ([]string, error) {
	return listPNG(s.LabelsPath())
}

// ReadMask decodes a mask from labels/ as grayscale.
func (s *TileStore) ReadMask(ctx context.Context, filename string) (*image.Gray, error) {
	f, err := os.Open(filepath.Join(s.LabelsPath(), filename))
	if err != nil {
		return nil, fmt.Errorf("failed to open mask: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask %s: %w", filename, err)
	}
	if g, ok := img.(*image.Gray); ok {
		return g, nil
	}
	b := img.Bounds()
	g := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Set(x, y, img.At(x, y))
		}
	}
	return g, nil
}

// ImageSize returns the pixel dimensions of an image in images/ without
// decoding its pixels.
func (s *TileStore) ImageSize(ctx context.Context, filename string) (int, int, error) {
	f, err := os.Open(filepath.Join(s.ImagesPath(), filename))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header %s: %w", filename, err)
	}
	return cfg.Width, cfg.Height, nil
}

// WriteAnnotation writes one annotation file (mask name with .txt) into annotations/.
func (s *TileStore) WriteAnnotation(ctx context.Context, filename string, lines []string) error {
	if err := os.MkdirAll(s.AnnotationsPath(), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	name := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".txt"
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(s.AnnotationsPath(), name), []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write annotation: %w", err)
	}
	return nil
}

func listPNG(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Ensure TileStore implements the interfaces
var (
	_ secondary.TileStore  = (*TileStore)(nil)
	_ secondary.MaskSource = (*TileStore)(nil)
)
