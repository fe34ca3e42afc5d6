// Package secondary defines the secondary ports (driven adapters) for the application.
package secondary

import "context"

// Fetcher performs one logical fetch, including its retries.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// URLBuilder builds the label and image request URLs for a tile.
type URLBuilder interface {
	LabelURL(bbox [4]float64, width, height int) string
	ImageURL(bbox [4]float64, width, height int) string
}
