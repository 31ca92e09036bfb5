// Package img holds the shared full-resolution surface and scales it for display.
package img

import (
	"context"
	"image"

	"github.com/oov/downscale"
	"github.com/oov/psd/blend"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ScaleQuality represents the quality of image resizing
type ScaleQuality int

const (
	// ScaleQualityBeautiful uses gamma-corrected area averaging when shrinking
	// and bilinear interpolation when enlarging
	ScaleQualityBeautiful ScaleQuality = iota
	// ScaleQualityFast uses nearest neighbor
	ScaleQualityFast
)

func (q ScaleQuality) String() string {
	if q == ScaleQualityFast {
		return "fast"
	}
	return "beautiful"
}

// SmoothThreshold is the target side, in pixels, from which scaling
// switches to nearest neighbor.
const SmoothThreshold = 1000

// MinDisplaySide is the smallest side a preview is scaled to.
const MinDisplaySide = 50

// bandHeight is the number of destination rows scaled between
// cancellation checks.
const bandHeight = 64

// QualityFor picks the quality for a target side.
// A threshold <= 0 means SmoothThreshold.
func QualityFor(side, threshold int) ScaleQuality {
	if threshold <= 0 {
		threshold = SmoothThreshold
	}
	if side < threshold {
		return ScaleQualityBeautiful
	}
	return ScaleQualityFast
}

// Scale returns a new side x side surface with src drawn to fill it.
// It returns the context error, and no surface, if ctx is cancelled
// while drawing.
func Scale(ctx context.Context, src *image.NRGBA, side int, quality ScaleQuality) (*image.NRGBA, error) {
	if side <= 0 {
		return nil, errors.Errorf("img: invalid side %d", side)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sr := src.Rect
	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	if sr.Empty() {
		return dst, nil
	}

	var err error
	switch {
	case sr.Dx() == side && sr.Dy() == side:
		blend.Copy.Draw(dst, dst.Rect, src, sr.Min)
	case quality == ScaleQualityBeautiful && sr.Dx() >= side && sr.Dy() >= side && sr.Min == (image.Point{}):
		if err = downscale.NRGBAGamma(ctx, dst, src, 2.2); err != nil {
			return nil, errors.Wrap(err, "img: downscale failed")
		}
	case quality == ScaleQualityBeautiful:
		err = scaleBands(ctx, dst, src, draw.BiLinear)
	default:
		err = scaleBands(ctx, dst, src, draw.NearestNeighbor)
	}
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return dst, nil
}

// scaleBands maps src onto the whole of dst, a band of rows at a time.
func scaleBands(ctx context.Context, dst, src *image.NRGBA, interp draw.Interpolator) error {
	sr, dr := src.Rect, dst.Rect
	sx := float64(dr.Dx()) / float64(sr.Dx())
	sy := float64(dr.Dy()) / float64(sr.Dy())
	s2d := f64.Aff3{
		sx, 0, float64(dr.Min.X) - sx*float64(sr.Min.X),
		0, sy, float64(dr.Min.Y) - sy*float64(sr.Min.Y),
	}
	for y := dr.Min.Y; y < dr.Max.Y; y += bandHeight {
		if err := ctx.Err(); err != nil {
			return err
		}
		band := image.Rect(dr.Min.X, y, dr.Max.X, min(y+bandHeight, dr.Max.Y))
		interp.Transform(dst.SubImage(band).(*image.NRGBA), s2d, src, sr, draw.Src, nil)
	}
	return nil
}
