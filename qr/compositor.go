// Package qr composites a QR symbol, its finder patterns and an optional
// centred logo into a raster image.
package qr

import (
	"context"
	"image"
	"image/color"
	"strings"

	"github.com/gogpu/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"qrtoolkit/failure"
	"qrtoolkit/ods"
)

// DefaultMaxPixels bounds the surface area of a single render.
const DefaultMaxPixels = 16384 * 16384

// roundedRadius is the radius of a rounded module relative to its cell.
const roundedRadius = 0.45

// Result is a rendered symbol and the content it encodes.
type Result struct {
	Image      *image.NRGBA
	Payload    string
	PayloadLen int
}

// Compositor renders symbols. It holds no mutable state and may be used
// from several goroutines at once.
type Compositor struct {
	Encoder   SymbolEncoder
	LoadLogo  LogoLoader
	MaxPixels int
}

// NewCompositor returns a Compositor using go-qrcode and logos from disk.
func NewCompositor() *Compositor {
	return &Compositor{
		Encoder:   GoQRCode{},
		LoadLogo:  LoadLogoFile,
		MaxPixels: DefaultMaxPixels,
	}
}

// Render draws payload with st. A blank payload yields a nil Result and no error.
// ctx is checked after encoding, after allocation and before the final copy.
func (c *Compositor) Render(ctx context.Context, payload string, st Style) (*Result, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, nil
	}
	if st.Size <= 0 {
		return nil, failure.Invalid("qr: size %d", st.Size)
	}
	if st.Margin < 0 || st.Margin > MaxMargin {
		return nil, failure.Invalid("qr: margin %d", st.Margin)
	}

	m, err := c.Encoder.Encode(payload, st.Margin, st.Level)
	if err != nil {
		return nil, errors.Wrap(err, "qr: cannot build matrix")
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	size := st.Size
	maxPixels := c.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if int64(size)*int64(size) > int64(maxPixels) {
		return nil, errors.Wrapf(failure.ErrResourceExhausted, "qr: %dx%d surface", size, size)
	}
	mp := size / m.Size
	if mp < 1 {
		return nil, errors.Wrapf(failure.ErrSizeTooSmall, "qr: %dpx for %d modules", size, m.Size)
	}
	offset := (size - m.Size*mp) / 2

	dc := gg.NewContext(size, size)
	defer dc.Close()
	dc.ClearWithColor(gg.FromColor(st.Background))
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if err = paintModules(dc, m, offset, mp, st); err != nil {
		return nil, err
	}
	n, mg := m.Modules(), m.Margin
	for _, p := range [...]image.Point{
		{mg, mg},
		{mg + n - finderModules, mg},
		{mg, mg + n - finderModules},
	} {
		if err = paintFinder(dc, offset+p.X*mp, offset+p.Y*mp, mp, st); err != nil {
			return nil, err
		}
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(out, out.Rect, dc.Image(), image.Point{}, draw.Src)

	if st.Logo != "" && st.Ratio > 0 {
		c.paintLogo(out, st)
	}
	return &Result{
		Image:      out,
		Payload:    payload,
		PayloadLen: len(payload),
	}, nil
}

func paintModules(dc *gg.Context, m *Matrix, offset, mp int, st Style) error {
	dc.SetColor(st.Foreground)
	f := float64(mp)
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			if !m.Dark(x, y) {
				continue
			}
			px, py := float64(offset+x*mp), float64(offset+y*mp)
			if st.Shape == ShapeRounded {
				dc.DrawCircle(px+f/2, py+f/2, f*roundedRadius)
			} else {
				dc.DrawRectangle(px, py, f, f)
			}
		}
	}
	return errors.Wrap(dc.Fill(), "qr: cannot paint modules")
}

// paintLogo clears a centred box and draws the logo fitted inside it.
// A logo that cannot be loaded leaves the box empty.
func (c *Compositor) paintLogo(dst *image.NRGBA, st Style) {
	box := int(float64(st.Size) * st.Ratio)
	if box <= 0 {
		return
	}
	if box > st.Size {
		box = st.Size
	}
	half := st.Size / 2
	r := image.Rect(half-box/2, half-box/2, half-box/2+box, half-box/2+box)
	draw.Draw(dst, r, image.NewUniform(color.Color(st.Background)), image.Point{}, draw.Src)

	if c.LoadLogo == nil {
		return
	}
	src, err := c.LoadLogo(st.Logo)
	if err != nil {
		ods.ODS("qr: logo ignored: %v", err)
		return
	}
	logo := fitLogo(src, box)
	lr := logo.Rect.Sub(logo.Rect.Min)
	lr = lr.Add(image.Pt(r.Min.X+(box-lr.Dx())/2, r.Min.Y+(box-lr.Dy())/2))
	draw.Draw(dst, lr, logo, logo.Rect.Min, draw.Over)
}
