package img

import (
	"image"
	"sync"
)

// Buffer holds the latest full-resolution render and the content it encodes.
// Every access takes the same lock, held only for the pointer swap.
//
// A surface handed out by Get is never written again, so readers may keep
// using it after it has been replaced or freed.
type Buffer struct {
	mu      sync.Mutex
	image   *image.NRGBA
	payload string
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Get returns the current surface, or nil if the buffer is empty.
func (b *Buffer) Get() *image.NRGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.image
}

// Content returns the current surface and its payload.
func (b *Buffer) Content() (*image.NRGBA, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.image, b.payload
}

// Replace swaps in img and releases the previous surface.
func (b *Buffer) Replace(img *image.NRGBA, payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.image = img
	b.payload = payload
}

// Free releases the current surface. It is safe to call on an empty buffer.
func (b *Buffer) Free() {
	b.Replace(nil, "")
}

// Empty reports whether no surface is held.
func (b *Buffer) Empty() bool {
	return b.Get() == nil
}
