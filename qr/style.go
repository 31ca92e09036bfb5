package qr

import (
	"image/color"
	"strings"

	"github.com/pkg/errors"
)

// Shape is how a dark module is drawn.
type Shape int

const (
	ShapeSquare Shape = iota
	ShapeRounded
)

func (s Shape) String() string {
	if s == ShapeRounded {
		return "rounded"
	}
	return "square"
}

// ParseShape is the inverse of Shape.String.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "square":
		return ShapeSquare, nil
	case "rounded", "round", "circle":
		return ShapeRounded, nil
	}
	return ShapeSquare, errors.Errorf("qr: unknown module shape %q", s)
}

// MaxMargin is the widest quiet zone accepted, in modules.
const MaxMargin = 10

// Style holds every visual parameter of a rendered symbol.
type Style struct {
	Size       int     // side of the output in pixels
	Margin     int     // quiet zone in modules
	Ratio      float64 // logo box side relative to Size
	Foreground color.NRGBA
	Background color.NRGBA
	Shape      Shape
	Logo       string // path of the logo image, empty for none
	Level      Level
}

// DefaultStyle is black on white, 400px, 3 modules of quiet zone.
func DefaultStyle() Style {
	return Style{
		Size:       400,
		Margin:     3,
		Foreground: color.NRGBA{A: 0xff},
		Background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Shape:      ShapeSquare,
		Level:      LevelM,
	}
}
