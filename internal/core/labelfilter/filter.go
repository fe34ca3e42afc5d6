// Package labelfilter decides whether a fetched label raster carries enough
// foreground to be worth fetching the paired image for.
package labelfilter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

const (
	// DefaultThreshold is the minimum foreground ratio for acceptance.
	DefaultThreshold = 0.01

	// DefaultBackground is the grayscale value meaning "no feature".
	DefaultBackground uint8 = 255
)

// ErrDecode wraps any failure to decode the label bytes.
var ErrDecode = errors.New("labelfilter: decode failed")

// Decision is the outcome of evaluating one label raster.
// An accepted decision always carries a mask; a rejected one never does.
type Decision struct {
	Accepted bool
	Mask     *image.Gray
	Ratio    float64
	Err      error
}

// Filter holds the acceptance policy.
type Filter struct {
	Threshold  float64
	Background uint8
}

// Default returns the reference policy: 1% non-white pixels.
func Default() Filter {
	return Filter{Threshold: DefaultThreshold, Background: DefaultBackground}
}

// Evaluate evaluates data with the default policy.
func Evaluate(data []byte) Decision {
	return Default().Evaluate(data)
}

// Evaluate decodes data as a raster and applies the policy. Decode failures
// are reported as a rejection with Err set.
func (f Filter) Evaluate(data []byte) Decision {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Decision{Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return f.EvaluateImage(img)
}

// EvaluateImage applies the policy to an already decoded raster.
func (f Filter) EvaluateImage(img image.Image) Decision {
	gray := ToGray(img)
	b := gray.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return Decision{Err: fmt.Errorf("%w: empty raster", ErrDecode)}
	}

	mask := image.NewGray(b)
	foreground := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := gray.Pix[gray.PixOffset(b.Min.X, y):]
		dst := mask.Pix[mask.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if src[x] != f.Background {
				dst[x] = 0xff
				foreground++
			}
		}
	}

	ratio := float64(foreground) / float64(total)
	if ratio >= f.Threshold {
		return Decision{Accepted: true, Mask: mask, Ratio: ratio}
	}
	return Decision{Ratio: ratio}
}

// ToGray converts img to 8-bit luma. Alpha is ignored: a transparent pixel
// keeps its stored color.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	b := img.Bounds()
	out := image.NewGray(b)
	switch src := img.(type) {
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := src.NRGBAAt(x, y)
				out.SetGray(x, y, luma(c.R, c.G, c.B))
			}
		}
	case *image.Paletted:
		lut := make([]color.Gray, len(src.Palette))
		for i, c := range src.Palette {
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			lut[i] = luma(n.R, n.G, n.B)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				idx := src.ColorIndexAt(x, y)
				if int(idx) < len(lut) {
					out.SetGray(x, y, lut[idx])
				}
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
			}
		}
	}
	return out
}

// luma uses the ITU-R 601-2 weights.
func luma(r, g, b uint8) color.Gray {
	y := (299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000
	return color.Gray{Y: uint8(y)}
}
