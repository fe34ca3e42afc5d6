package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/example/tilegrab/internal/core/annotation"
	"github.com/example/tilegrab/internal/logging"
	"github.com/example/tilegrab/internal/ports/primary"
	"github.com/example/tilegrab/internal/ports/secondary"
)

// MaskSourceFactory returns the mask source rooted at a run directory.
type MaskSourceFactory func(root string) secondary.MaskSource

// ConvertServiceImpl implements the ConvertService interface.
type ConvertServiceImpl struct {
	newSource MaskSourceFactory
}

// NewConvertService creates a new ConvertService with injected dependencies.
func NewConvertService(newSource MaskSourceFactory) *ConvertServiceImpl {
	return &ConvertServiceImpl{newSource: newSource}
}

// Convert writes one annotation file per mask. Masks without a paired image
// are skipped; per-mask errors are counted and logged, not returned.
func (s *ConvertServiceImpl) Convert(ctx context.Context, req primary.ConvertRequest) (*primary.ConvertSummary, error) {
	logger := logging.FromContext(ctx).WithValues("root", req.Root)
	src := s.newSource(req.Root)

	masks, err := src.ListMasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list masks: %w", err)
	}

	summary := &primary.ConvertSummary{Masks: len(masks)}
	for _, name := range masks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		w, h, err := src.ImageSize(ctx, name)
		if errors.Is(err, fs.ErrNotExist) {
			summary.MissingImages++
			logger.V(logging.VERBOSE).Info("no paired image, skipping mask", "mask", name)
			continue
		}
		if err != nil {
			summary.Errors++
			logger.Error(err, "failed to read image size", "mask", name)
			continue
		}

		mask, err := src.ReadMask(ctx, name)
		if err != nil {
			summary.Errors++
			logger.Error(err, "failed to read mask", "mask", name)
			continue
		}

		rects := annotation.ExternalBoxes(mask)
		lines, err := annotation.YOLOLines(rects, w, h, req.ClassID)
		if err != nil {
			summary.Errors++
			logger.Error(err, "failed to format annotation", "mask", name)
			continue
		}
		if err := src.WriteAnnotation(ctx, name, lines); err != nil {
			summary.Errors++
			logger.Error(err, "failed to write annotation", "mask", name)
			continue
		}

		summary.Written++
		summary.Boxes += len(lines)
	}

	logger.Info("conversion finished", "masks", summary.Masks, "written", summary.Written, "boxes", summary.Boxes)
	return summary, nil
}

// Ensure ConvertServiceImpl implements the interface
var _ primary.ConvertService = (*ConvertServiceImpl)(nil)
