// Package wms contains the WMS GetMap adapter: URL construction and a
// retrying fetch client.
package wms

import (
	"strconv"
	"strings"

	"github.com/example/tilegrab/internal/core/tile"
	"github.com/example/tilegrab/internal/ports/secondary"
)

// Protocol constants for GetMap requests.
const (
	Version       = "1.3.0"
	DefaultFormat = "image/png"
	DefaultCRS    = "EPSG:25832"
)

// Endpoint is a WMS base URL plus the layers requested from it.
type Endpoint struct {
	BaseURL string
	Layers  []string
}

// BuildURL constructs a GetMap query. Parameter order and spelling are fixed;
// servers in the reference deployment accept commas and slashes unescaped.
func BuildURL(base string, layers []string, bbox [4]float64, width, height int, format, crs string) string {
	if format == "" {
		format = DefaultFormat
	}
	if crs == "" {
		crs = DefaultCRS
	}

	coords := make([]string, len(bbox))
	for i, v := range bbox {
		coords[i] = tile.FormatCoord(v)
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("?VERSION=")
	sb.WriteString(Version)
	sb.WriteString("&service=WMS&request=GetMap&Format=")
	sb.WriteString(format)
	sb.WriteString("&GetFeatureInfo=text/plain&CRS=")
	sb.WriteString(crs)
	sb.WriteString("&Layers=")
	sb.WriteString(strings.Join(layers, ","))
	sb.WriteString("&BBox=")
	sb.WriteString(strings.Join(coords, ","))
	sb.WriteString("&width=")
	sb.WriteString(strconv.Itoa(width))
	sb.WriteString("&height=")
	sb.WriteString(strconv.Itoa(height))
	return sb.String()
}

// Requests builds label and image URLs from two endpoints.
type Requests struct {
	Label  Endpoint
	Image  Endpoint
	Format string
	CRS    string
}

// LabelURL returns the label GetMap URL for bbox.
func (r Requests) LabelURL(bbox [4]float64, width, height int) string {
	return BuildURL(r.Label.BaseURL, r.Label.Layers, bbox, width, height, r.Format, r.CRS)
}

// ImageURL returns the imagery GetMap URL for bbox.
func (r Requests) ImageURL(bbox [4]float64, width, height int) string {
	return BuildURL(r.Image.BaseURL, r.Image.Layers, bbox, width, height, r.Format, r.CRS)
}

// Ensure Requests implements the interface
var _ secondary.URLBuilder = Requests{}
