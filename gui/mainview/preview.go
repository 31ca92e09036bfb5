package mainview

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"qrtoolkit/img"
	"qrtoolkit/jobqueue"
	"qrtoolkit/ods"
	"qrtoolkit/payload"
	"qrtoolkit/qr"
	"qrtoolkit/request"
)

// Preview renders full-resolution images into the shared buffer and hands
// each new image on to Resize.
type Preview struct {
	*jobqueue.Runner[request.RenderRequest, *qr.Result]

	buffer     *img.Buffer
	view       View
	resize     *Resize
	compositor *qr.Compositor
	report     func(error)

	// layout applies the newest display height to a finished request.
	layout func(request.RenderRequest) request.RenderRequest
}

func newPreview(ui jobqueue.Dispatcher, view View, buffer *img.Buffer, resize *Resize, busy func(bool), opts Options) *Preview {
	p := &Preview{
		buffer:     buffer,
		view:       view,
		resize:     resize,
		compositor: opts.Compositor,
		report:     opts.ReportError,
	}
	p.Runner = jobqueue.New(ui, jobqueue.Config[request.RenderRequest, *qr.Result]{
		Name:      "preview",
		Delay:     opts.Delay,
		Compute:   p.compute,
		OnStart:   p.clearResources,
		OnSuccess: p.onSuccess,
		OnFailure: p.onFailure,
		OnClear:   p.clearResources,
		Busy:      busy,
	})
	return p
}

// Submit validates req and schedules it. An invalid request never starts
// a task.
func (p *Preview) Submit(req request.RenderRequest) error {
	if err := req.Validate(); err != nil {
		ods.Error("mainview: rejected request: %v", err)
		return err
	}
	p.Runner.Submit(req)
	return nil
}

func (p *Preview) compute(ctx context.Context, req request.RenderRequest) (*qr.Result, error) {
	s, err := payload.Encode(req.Content)
	if err != nil {
		return nil, errors.Wrap(err, "mainview: cannot build payload")
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return p.compositor.Render(ctx, s, req.Style)
}

func (p *Preview) onSuccess(req request.RenderRequest, res *qr.Result) {
	if res == nil {
		p.view.ClearIcon()
		return
	}
	p.buffer.Replace(res.Image, res.Payload)
	if p.layout != nil {
		req = p.layout(req)
	}
	p.resize.Submit(req)
}

func (p *Preview) onFailure(_ request.RenderRequest, err error) {
	p.report(err)
}

// clearResources drops everything that shows the previous input, including
// a resize still working on the previous image.
func (p *Preview) clearResources() {
	p.resize.DisposeAll()
	p.buffer.Free()
	p.view.ClearIcon()
}
