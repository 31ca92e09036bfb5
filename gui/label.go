package gui

import (
	"image"
	"sync"
)

// Label is a View that keeps what it would show in memory instead of on
// screen.
type Label struct {
	mu        sync.Mutex
	icon      *image.NRGBA
	busy      bool
	footprint int
	preferred int
}

// NewLabel returns a Label that prefers side pixels, or no size if side is 0.
func NewLabel(side int) *Label {
	return &Label{preferred: side}
}

func (l *Label) SetIcon(surface *image.NRGBA) {
	l.mu.Lock()
	l.icon = surface
	l.mu.Unlock()
}

func (l *Label) ClearIcon() {
	l.SetIcon(nil)
}

func (l *Label) SetBusy(visible bool) {
	l.mu.Lock()
	l.busy = visible
	l.mu.Unlock()
}

func (l *Label) SetBusyFootprint(side int) {
	l.mu.Lock()
	l.footprint = side
	l.mu.Unlock()
}

func (l *Label) PreferredSide() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.preferred
}

// Icon returns the displayed surface, or nil.
func (l *Label) Icon() *image.NRGBA {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.icon
}

// Busy reports whether the loading indicator is visible.
func (l *Label) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy
}

// Footprint returns the side of the loading indicator.
func (l *Label) Footprint() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.footprint
}
