// Package request defines the snapshot of inputs a single render works from.
package request

import (
	"math"

	"qrtoolkit/failure"
	"qrtoolkit/payload"
	"qrtoolkit/qr"
)

// RenderRequest is everything needed to render once. It is a value: a new
// one is built for every input change and supersedes the previous one.
type RenderRequest struct {
	Style   qr.Style
	Content payload.Content

	// AvailableHeight is the display height offered to the symbol.
	AvailableHeight int
}

// New returns a request for content drawn with style.
func New(style qr.Style, content payload.Content, availableHeight int) RenderRequest {
	return RenderRequest{
		Style:           style,
		Content:         content,
		AvailableHeight: availableHeight,
	}
}

// WithAvailableHeight returns a copy of r for a new display height.
func (r RenderRequest) WithAvailableHeight(h int) RenderRequest {
	r.AvailableHeight = h
	return r
}

// Validate checks the structural invariants of the pipeline.
func (r RenderRequest) Validate() error {
	st := r.Style
	switch {
	case st.Size <= 0:
		return failure.Invalid("request: size %d must be positive", st.Size)
	case st.Margin < 0 || st.Margin > qr.MaxMargin:
		return failure.Invalid("request: margin %d out of range 0..%d", st.Margin, qr.MaxMargin)
	case math.IsNaN(st.Ratio) || st.Ratio < 0 || st.Ratio > 1:
		return failure.Invalid("request: logo ratio %v out of range 0..1", st.Ratio)
	case st.Level < qr.LevelL || st.Level > qr.LevelH:
		return failure.Invalid("request: error correction level %d", st.Level)
	}
	return nil
}
