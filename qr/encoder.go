package qr

import (
	"strings"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"

	"qrtoolkit/failure"
)

// Level is the error correction level of the symbol.
type Level int

const (
	LevelL Level = iota
	LevelM
	LevelQ
	LevelH
)

func (l Level) String() string {
	return [...]string{"L", "M", "Q", "H"}[l&3]
}

// ParseLevel accepts L, M, Q or H.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return LevelL, nil
	case "", "M":
		return LevelM, nil
	case "Q":
		return LevelQ, nil
	case "H":
		return LevelH, nil
	}
	return LevelM, errors.Errorf("qr: unknown error correction level %q", s)
}

// Matrix is the module grid of a symbol surrounded by Margin light modules
// on every side. Size includes the margin.
type Matrix struct {
	Size   int
	Margin int
	bits   []bool
}

// NewMatrix wraps a square grid of modules with a quiet zone of margin modules.
func NewMatrix(modules [][]bool, margin int) *Matrix {
	n := len(modules)
	size := n + 2*margin
	m := &Matrix{
		Size:   size,
		Margin: margin,
		bits:   make([]bool, size*size),
	}
	for y, row := range modules {
		for x, dark := range row {
			if x >= n {
				break
			}
			m.bits[(y+margin)*size+x+margin] = dark
		}
	}
	return m
}

// Modules returns the side of the symbol without the quiet zone.
func (m *Matrix) Modules() int {
	return m.Size - 2*m.Margin
}

// Dark reports whether the cell at (x, y), margin included, is dark.
func (m *Matrix) Dark(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Size || y >= m.Size {
		return false
	}
	return m.bits[y*m.Size+x]
}

// SymbolEncoder turns content into a module matrix.
type SymbolEncoder interface {
	Encode(content string, margin int, level Level) (*Matrix, error)
}

// GoQRCode encodes with github.com/skip2/go-qrcode.
type GoQRCode struct{}

var recoveryLevels = [...]qrcode.RecoveryLevel{
	LevelL: qrcode.Low,
	LevelM: qrcode.Medium,
	LevelQ: qrcode.High,
	LevelH: qrcode.Highest,
}

func (GoQRCode) Encode(content string, margin int, level Level) (*Matrix, error) {
	if level < LevelL || level > LevelH {
		return nil, errors.Errorf("qr: invalid level %d", level)
	}
	q, err := qrcode.New(content, recoveryLevels[level])
	if err != nil {
		if strings.Contains(err.Error(), "too long") {
			return nil, errors.Wrapf(failure.ErrCapacityExceeded, "qr: %d bytes at level %s", len(content), level)
		}
		return nil, errors.Wrap(err, "qr: encode failed")
	}
	q.DisableBorder = true
	return NewMatrix(q.Bitmap(), margin), nil
}
