package mainview

import (
	"context"
	"image"

	"qrtoolkit/img"
	"qrtoolkit/jobqueue"
	"qrtoolkit/request"
)

// MinDisplaySide is the smallest side the preview is scaled to.
const MinDisplaySide = img.MinDisplaySide

// Resize scales the shared buffer to the display size.
type Resize struct {
	*jobqueue.Runner[request.RenderRequest, *image.NRGBA]

	buffer    *img.Buffer
	view      View
	minSide   int
	threshold int
	report    func(error)
}

func newResize(ui jobqueue.Dispatcher, view View, buffer *img.Buffer, busy func(bool), opts Options) *Resize {
	r := &Resize{
		buffer:    buffer,
		view:      view,
		minSide:   opts.MinDisplaySide,
		threshold: opts.SmoothThreshold,
		report:    opts.ReportError,
	}
	if r.minSide <= 0 {
		r.minSide = MinDisplaySide
	}
	if r.threshold <= 0 {
		r.threshold = img.SmoothThreshold
	}
	r.Runner = jobqueue.New(ui, jobqueue.Config[request.RenderRequest, *image.NRGBA]{
		Name:      "resize",
		Delay:     opts.Delay,
		Compute:   r.compute,
		OnSuccess: r.onSuccess,
		OnFailure: func(_ request.RenderRequest, err error) { r.report(err) },
		OnClear:   view.ClearIcon,
		Busy:      busy,
	})
	return r
}

// TargetSide returns the display side for req.
func (r *Resize) TargetSide(req request.RenderRequest) int {
	return max(req.AvailableHeight, r.minSide)
}

func (r *Resize) compute(ctx context.Context, req request.RenderRequest) (*image.NRGBA, error) {
	src := r.buffer.Get()
	if src == nil {
		return nil, nil
	}
	side := r.TargetSide(req)
	return img.Scale(ctx, src, side, img.QualityFor(side, r.threshold))
}

func (r *Resize) onSuccess(_ request.RenderRequest, surface *image.NRGBA) {
	if surface == nil {
		return
	}
	r.view.SetIcon(surface)
	side := r.view.PreferredSide()
	if side <= 0 {
		side = surface.Rect.Dx()
	}
	r.view.SetBusyFootprint(side)
}
