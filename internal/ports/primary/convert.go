package primary

import "context"

// ConvertService defines the primary port for mask-to-annotation conversion.
type ConvertService interface {
	// Convert writes one annotation file per mask found under root.
	Convert(ctx context.Context, req ConvertRequest) (*ConvertSummary, error)
}

// ConvertRequest contains parameters for a conversion pass.
type ConvertRequest struct {
	Root    string
	ClassID int
}

// ConvertSummary reports what a conversion pass produced.
type ConvertSummary struct {
	Masks         int
	Written       int
	MissingImages int
	Boxes         int
	Errors        int
}
