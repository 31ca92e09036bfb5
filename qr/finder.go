package qr

import (
	"github.com/gogpu/gg"
	"github.com/pkg/errors"
)

const finderModules = 7

// paintFinder draws one locator pattern whose top-left corner is (x, y) in
// pixels. The 7x7 area is cleared first so nothing from the module pass
// shows through.
func paintFinder(dc *gg.Context, x, y, mp int, st Style) error {
	fx, fy, f := float64(x), float64(y), float64(mp)
	rounded := st.Shape == ShapeRounded

	layers := []struct {
		inset   float64
		modules float64
		radius  float64
		dark    bool
	}{
		{0, 7, 0, false},
		{0, 7, 2, true},
		{1, 5, 1.5, false},
		{2, 3, 1, true},
	}
	for _, l := range layers {
		if l.dark {
			dc.SetColor(st.Foreground)
		} else {
			dc.SetColor(st.Background)
		}
		px, py, side := fx+l.inset*f, fy+l.inset*f, l.modules*f
		if rounded && l.radius > 0 {
			dc.DrawRoundedRectangle(px, py, side, side, l.radius*f)
		} else {
			dc.DrawRectangle(px, py, side, side)
		}
		if err := dc.Fill(); err != nil {
			return errors.Wrap(err, "qr: cannot paint finder pattern")
		}
	}
	return nil
}
