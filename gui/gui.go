package gui

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"

	"qrtoolkit/export"
	"qrtoolkit/failure"
	"qrtoolkit/gui/mainview"
	"qrtoolkit/img"
	"qrtoolkit/imgmgr/editing"
	"qrtoolkit/locale"
	"qrtoolkit/ods"
)

// GUI owns the interactive goroutine and everything only it may touch.
type GUI struct {
	queue *Queue

	editing *editing.Editing

	// Current snapshot (updated via OnChange callback)
	snapshot editing.Snapshot

	label    *Label
	mainView *mainview.MainView

	failures []*failure.Failure

	// Dialog shows an error message to the user.
	Dialog func(msg string)
	// Status shows a short notice to the user.
	Status func(msg string)
}

// New creates a new GUI instance showing the preview on label.
func New(ed *editing.Editing, label *Label, opts mainview.Options) *GUI {
	g := &GUI{
		queue:   NewQueue(),
		editing: ed,
		label:   label,
	}
	opts.ReportError = g.ReportError
	g.mainView = mainview.New(g.queue, label, img.NewBuffer(), opts)

	// Set up change notification
	ed.OnChange = func(snap editing.Snapshot) {
		g.queue.Post(func() {
			g.snapshot = snap
			g.onSnapshotChange()
		})
	}
	return g
}

// onSnapshotChange is called when the form state changes.
// A layout change only rescales the current image.
func (g *GUI) onSnapshotChange() {
	if g.snapshot.Reason == editing.ReasonLayout {
		g.mainView.OnLayout(g.snapshot.Request.AvailableHeight)
		return
	}
	if err := g.mainView.Submit(g.snapshot.Request); err != nil {
		g.ReportError(err)
	}
}

func (g *GUI) do(f func() error) error {
	done := make(chan error, 1)
	g.queue.Post(func() {
		defer func() {
			if err := recover(); err != nil {
				ods.Recover(err)
				done <- errors.Errorf("unexpected error occurred: %v", err)
			}
		}()
		done <- f()
	})
	return <-done
}

// Main runs the main GUI loop until exitCh is closed.
func (g *GUI) Main(exitCh <-chan struct{}) {
	defer func() {
		if err := recover(); err != nil {
			ods.Recover(err)
		}
		g.mainView.Close()
		g.queue.Drain()
	}()
	for {
		select {
		case <-g.queue.C():
			g.queue.Drain()

		case <-exitCh:
			return
		}
	}
}

// Settled reports whether no input is waiting to be shown.
func (g *GUI) Settled() bool {
	var settled bool
	g.do(func() error {
		settled = g.mainView.Idle() && g.queue.Len() == 0
		return nil
	})
	return settled
}

// WaitSettled blocks until Settled or ctx is done.
func (g *GUI) WaitSettled(ctx context.Context) error {
	t := time.NewTicker(10 * time.Millisecond)
	defer t.Stop()
	for !g.Settled() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// ReportError is the single place user-facing failures are raised.
// It must be called on the GUI goroutine.
func (g *GUI) ReportError(err error) {
	f := failure.Classify(err)
	if f == nil || f.Kind == failure.Cancelled {
		return
	}
	g.failures = append(g.failures, f)
	if f.Kind == failure.InvalidRequest {
		ods.Error("assertion failed: %+v", err)
		return
	}
	ods.Error("error: %v", err)
	if g.Dialog != nil {
		g.Dialog(locale.Message(f))
	}
}

// Failures returns every failure reported so far.
func (g *GUI) Failures() []*failure.Failure {
	var r []*failure.Failure
	g.do(func() error {
		r = append(r, g.failures...)
		return nil
	})
	return r
}

// Resize tells the form how tall the preview area now is.
func (g *GUI) Resize(height int) {
	g.editing.SetAvailableHeight(height)
}

// Save writes the full-resolution image to path.
func (g *GUI) Save(path string) error {
	var full *image.NRGBA
	g.do(func() error {
		full = g.mainView.Buffer().Get()
		return nil
	})
	err := export.Save(path, full)
	g.do(func() error {
		if err != nil {
			g.ReportError(err)
		} else if g.Status != nil {
			g.Status(locale.Pgettext("gui", "Saved %q", path))
		}
		return nil
	})
	return err
}

// CopyContent puts the encoded content of the current image on the clipboard.
func (g *GUI) CopyContent() error {
	var content string
	g.do(func() error {
		_, content = g.mainView.Buffer().Content()
		return nil
	})
	err := export.CopyContent(content)
	g.do(func() error {
		if err != nil {
			g.ReportError(err)
		} else if g.Status != nil {
			g.Status(locale.Pgettext("gui", "Copied to clipboard"))
		}
		return nil
	})
	return err
}

// Serialize returns the form settings.
func (g *GUI) Serialize() (string, error) {
	return g.editing.Serialize()
}

// Deserialize restores the form settings.
func (g *GUI) Deserialize(state string) error {
	return g.editing.Deserialize(state)
}
