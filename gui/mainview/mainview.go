// Package mainview keeps the on-screen preview in sync with the latest
// render request.
package mainview

import (
	"image"
	"time"

	"qrtoolkit/img"
	"qrtoolkit/jobqueue"
	"qrtoolkit/qr"
	"qrtoolkit/request"
)

// View is where the preview is shown. Its methods are only called on the
// interactive goroutine.
type View interface {
	SetIcon(surface *image.NRGBA)
	ClearIcon()
	SetBusy(visible bool)
	SetBusyFootprint(side int)
	// PreferredSide returns the side the view would like, or 0 if it has none.
	PreferredSide() int
}

// Options tunes the pipelines. Zero values select the defaults.
type Options struct {
	Delay           time.Duration
	MinDisplaySide  int
	SmoothThreshold int
	Compositor      *qr.Compositor

	// ReportError receives every failure of a background task.
	ReportError func(error)
}

// MainView owns the preview and resize pipelines and the buffer they share.
type MainView struct {
	buffer  *img.Buffer
	preview *Preview
	resize  *Resize

	last    request.RenderRequest
	hasLast bool

	view View
	busy [2]bool
}

const (
	previewBusy = iota
	resizeBusy
)

// busyFunc returns the indicator hook of one pipeline. The view's indicator
// stays visible while either pipeline is busy.
func (mv *MainView) busyFunc(i int) func(bool) {
	return func(visible bool) {
		was := mv.busy[previewBusy] || mv.busy[resizeBusy]
		mv.busy[i] = visible
		if now := mv.busy[previewBusy] || mv.busy[resizeBusy]; now != was {
			mv.view.SetBusy(now)
		}
	}
}

// New wires both pipelines to view. ui must run callbacks on the goroutine
// that owns view.
func New(ui jobqueue.Dispatcher, view View, buffer *img.Buffer, opts Options) *MainView {
	if opts.Compositor == nil {
		opts.Compositor = qr.NewCompositor()
	}
	if opts.ReportError == nil {
		opts.ReportError = func(error) {}
	}
	mv := &MainView{buffer: buffer, view: view}
	mv.resize = newResize(ui, view, buffer, mv.busyFunc(resizeBusy), opts)
	mv.preview = newPreview(ui, view, buffer, mv.resize, mv.busyFunc(previewBusy), opts)
	mv.preview.layout = mv.withLatestHeight
	return mv
}

// Submit schedules a full render of req.
func (mv *MainView) Submit(req request.RenderRequest) error {
	if err := mv.preview.Submit(req); err != nil {
		return err
	}
	mv.last = req
	mv.hasLast = true
	return nil
}

// OnLayout rescales the current image for a new available height without
// rendering it again.
func (mv *MainView) OnLayout(height int) {
	if !mv.hasLast {
		return
	}
	mv.last = mv.last.WithAvailableHeight(height)
	mv.resize.Submit(mv.last)
}

// withLatestHeight returns req sized for the most recent layout, which may
// have changed while req was rendering.
func (mv *MainView) withLatestHeight(req request.RenderRequest) request.RenderRequest {
	if !mv.hasLast {
		return req
	}
	return req.WithAvailableHeight(mv.last.AvailableHeight)
}

// Buffer returns the shared full-resolution buffer.
func (mv *MainView) Buffer() *img.Buffer { return mv.buffer }

// Idle reports whether neither pipeline has work scheduled or running.
func (mv *MainView) Idle() bool {
	return mv.preview.State() == jobqueue.Idle && mv.resize.State() == jobqueue.Idle
}

// Close stops both pipelines. It may be called more than once.
func (mv *MainView) Close() {
	mv.preview.DisposeAll()
	mv.resize.DisposeAll()
}
