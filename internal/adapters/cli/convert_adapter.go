package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/tilegrab/internal/ports/primary"
)

// ConvertAdapter translates the convert command to ConvertService calls.
type ConvertAdapter struct {
	service primary.ConvertService
	out     io.Writer
}

// NewConvertAdapter creates a new ConvertAdapter with the given service.
func NewConvertAdapter(service primary.ConvertService, out io.Writer) *ConvertAdapter {
	return &ConvertAdapter{
		service: service,
		out:     out,
	}
}

// Convert writes annotations for every mask under root.
func (a *ConvertAdapter) Convert(ctx context.Context, root string, classID int) error {
	summary, err := a.service.Convert(ctx, primary.ConvertRequest{Root: root, ClassID: classID})
	if err != nil {
		return fmt.Errorf("failed to convert masks: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Wrote %d annotation files (%d boxes) from %d masks\n", summary.Written, summary.Boxes, summary.Masks)
	if summary.MissingImages > 0 {
		fmt.Fprintf(a.out, "  %d masks had no paired image\n", summary.MissingImages)
	}
	if summary.Errors > 0 {
		fmt.Fprintf(a.out, "  %d masks failed, see log\n", summary.Errors)
	}
	return nil
}
