package secondary

import (
	"context"
	"image"
)

// TileStore defines the secondary port for persisting tile pairs.
// Paths are per-tile unique, so concurrent writes for different keys never
// contend.
type TileStore interface {
	// Root returns the run's output directory.
	Root() string

	// EnsureLayout creates the images/ and labels/ directories.
	EnsureLayout(ctx context.Context) error

	// ExistingImages returns the file names already present in images/.
	ExistingImages(ctx context.Context) (map[string]struct{}, error)

	// WriteMask persists a binarized label mask.
	WriteMask(ctx context.Context, filename string, mask *image.Gray) error

	// WriteImage persists raw image bytes.
	WriteImage(ctx context.Context, filename string, data []byte) error
}

// MaskSource defines the secondary port read by the annotation converter.
type MaskSource interface {
	ListMasks(ctx context.Context) ([]string, error)
	ReadMask(ctx context.Context, filename string) (*image.Gray, error)
	ImageSize(ctx context.Context, filename string) (width, height int, err error)
	WriteAnnotation(ctx context.Context, filename string, lines []string) error
}
