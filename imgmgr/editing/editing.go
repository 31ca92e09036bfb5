// Package editing holds the state of the input form.
package editing

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"qrtoolkit/payload"
	"qrtoolkit/qr"
	"qrtoolkit/request"
)

// Reason tells the GUI what kind of change produced a Snapshot.
type Reason int

const (
	// ReasonInput means content or style changed and the symbol must be rendered again.
	ReasonInput Reason = iota
	// ReasonLayout means only the available height changed.
	ReasonLayout
)

// Snapshot is a read-only copy of the form state for GUI consumption.
type Snapshot struct {
	Request request.RenderRequest
	Reason  Reason
}

// Editing manages the form state.
// It runs as a single goroutine (actor model) and receives requests via the Requests channel.
// No mutex is needed because only the Run goroutine accesses the internal state.
type Editing struct {
	// Internal state (only accessed by Run goroutine)
	content         payload.Content
	style           qr.Style
	availableHeight int

	// Requests is the channel for receiving requests.
	// Use a buffered channel to avoid blocking callers.
	Requests chan any

	// OnChange is called when the form state changes.
	// It is called from the Run goroutine.
	// The GUI should post the snapshot to its queue for processing.
	OnChange func(Snapshot)
}

// New creates a new Editing instance with st as the initial style.
func New(st qr.Style) *Editing {
	return &Editing{
		style:    st,
		Requests: make(chan any, 64),
	}
}

// Run starts the actor loop. It should be called in a separate goroutine.
func (ed *Editing) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-ed.Requests:
			ed.handle(req)
		}
	}
}

func (ed *Editing) handle(req any) {
	switch r := req.(type) {
	case SerializeReq:
		state, err := ed.serialize()
		r.Reply <- SerializeResp{state, err}

	case DeserializeReq:
		err := ed.deserialize(r.State)
		if r.Reply != nil {
			r.Reply <- DeserializeResp{err}
		}
		if err == nil {
			ed.notifyChange(ReasonInput)
		}

	case GetSnapshotReq:
		r.Reply <- ed.makeSnapshot(ReasonInput)

	case SetModeReq:
		if r.Mode != ed.content.Mode {
			ed.content.Mode = r.Mode
			ed.notifyChange(ReasonInput)
		}

	case SetTextReq:
		ed.content.Text = r.Text
		ed.notifyChange(ReasonInput)

	case SetContactReq:
		ed.content.Contact = r.Contact
		ed.notifyChange(ReasonInput)

	case SetMeetingReq:
		ed.content.Meeting = r.Meeting
		ed.notifyChange(ReasonInput)

	case SetStyleReq:
		ed.style = r.Style
		ed.notifyChange(ReasonInput)

	case SetLogoReq:
		ed.style.Logo = r.Path
		ed.notifyChange(ReasonInput)

	case SetAvailableHeightReq:
		if r.Height != ed.availableHeight {
			ed.availableHeight = r.Height
			ed.notifyChange(ReasonLayout)
		}
	}
}

func (ed *Editing) notifyChange(reason Reason) {
	if ed.OnChange != nil {
		ed.OnChange(ed.makeSnapshot(reason))
	}
}

func (ed *Editing) makeSnapshot(reason Reason) Snapshot {
	return Snapshot{
		Request: request.New(ed.style, ed.content, ed.availableHeight),
		Reason:  reason,
	}
}

type serializeStyle struct {
	Size       int     `json:"size"`
	Margin     int     `json:"margin"`
	Ratio      float64 `json:"ratio,omitempty"`
	Foreground string  `json:"foreground"`
	Background string  `json:"background"`
	Shape      string  `json:"shape"`
	Level      string  `json:"level"`
	Logo       string  `json:"logo,omitempty"`
}

// serializeRoot is the root structure for serialization
// Version 1: first format
type serializeRoot struct {
	Version int              `json:"version"`
	Mode    string           `json:"mode"`
	Text    string           `json:"text,omitempty"`
	Contact *payload.Contact `json:"contact,omitempty"`
	Meeting *payload.Meeting `json:"meeting,omitempty"`
	Style   serializeStyle   `json:"style"`
}

const serializeVersion = 1

func (ed *Editing) serialize() (string, error) {
	root := serializeRoot{
		Version: serializeVersion,
		Mode:    ed.content.Mode.String(),
		Text:    ed.content.Text,
		Style: serializeStyle{
			Size:       ed.style.Size,
			Margin:     ed.style.Margin,
			Ratio:      ed.style.Ratio,
			Foreground: qr.FormatColor(ed.style.Foreground),
			Background: qr.FormatColor(ed.style.Background),
			Shape:      ed.style.Shape.String(),
			Level:      ed.style.Level.String(),
			Logo:       ed.style.Logo,
		},
	}
	if ed.content.Contact != (payload.Contact{}) {
		c := ed.content.Contact
		root.Contact = &c
	}
	if !isZeroMeeting(ed.content.Meeting) {
		m := ed.content.Meeting
		root.Meeting = &m
	}

	b := bytes.NewBufferString("")
	if err := json.NewEncoder(b).Encode(root); err != nil {
		return "", errors.Wrap(err, "editing: cannot encode settings")
	}
	return b.String(), nil
}

func isZeroMeeting(m payload.Meeting) bool {
	return m.Title == "" && m.Location == "" && m.Description == "" && m.Start.IsZero() && m.End.IsZero()
}

func (ed *Editing) deserialize(state string) error {
	if state == "" {
		ed.content = payload.Content{}
		return nil
	}

	var root serializeRoot
	if err := json.NewDecoder(bytes.NewReader([]byte(state))).Decode(&root); err != nil {
		return errors.Wrap(err, "editing: cannot decode settings")
	}
	if root.Version < 1 || root.Version > serializeVersion {
		return errors.Errorf("editing: unsupported settings version %d", root.Version)
	}

	mode, err := payload.ParseMode(root.Mode)
	if err != nil {
		return err
	}
	st := qr.Style{
		Size:   root.Style.Size,
		Margin: root.Style.Margin,
		Ratio:  root.Style.Ratio,
		Logo:   root.Style.Logo,
	}
	if st.Foreground, err = qr.ParseColor(root.Style.Foreground); err != nil {
		return errors.Wrap(err, "editing: foreground")
	}
	if st.Background, err = qr.ParseColor(root.Style.Background); err != nil {
		return errors.Wrap(err, "editing: background")
	}
	if st.Shape, err = qr.ParseShape(root.Style.Shape); err != nil {
		return err
	}
	if st.Level, err = qr.ParseLevel(root.Style.Level); err != nil {
		return err
	}

	c := payload.Content{Mode: mode, Text: root.Text}
	if root.Contact != nil {
		c.Contact = *root.Contact
	}
	if root.Meeting != nil {
		c.Meeting = *root.Meeting
	}
	ed.content = c
	ed.style = st
	return nil
}

// --- Client API ---

// Serialize serializes the form settings synchronously.
func (ed *Editing) Serialize() (string, error) {
	reply := make(chan SerializeResp, 1)
	ed.Requests <- SerializeReq{reply}
	resp := <-reply
	return resp.State, resp.Err
}

// Deserialize restores the form settings synchronously.
func (ed *Editing) Deserialize(state string) error {
	reply := make(chan DeserializeResp, 1)
	ed.Requests <- DeserializeReq{state, reply}
	resp := <-reply
	return resp.Err
}

// GetSnapshot gets a snapshot of the current state synchronously.
func (ed *Editing) GetSnapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	ed.Requests <- GetSnapshotReq{reply}
	return <-reply
}

// SetMode switches the content mode asynchronously.
func (ed *Editing) SetMode(m payload.Mode) {
	ed.Requests <- SetModeReq{m}
}

// SetText replaces the free text asynchronously.
func (ed *Editing) SetText(s string) {
	ed.Requests <- SetTextReq{s}
}

// SetContact replaces the contact fields asynchronously.
func (ed *Editing) SetContact(c payload.Contact) {
	ed.Requests <- SetContactReq{c}
}

// SetMeeting replaces the meeting fields asynchronously.
func (ed *Editing) SetMeeting(m payload.Meeting) {
	ed.Requests <- SetMeetingReq{m}
}

// SetStyle replaces the style asynchronously.
func (ed *Editing) SetStyle(st qr.Style) {
	ed.Requests <- SetStyleReq{st}
}

// SetLogo replaces the logo path asynchronously.
func (ed *Editing) SetLogo(path string) {
	ed.Requests <- SetLogoReq{path}
}

// SetAvailableHeight records the preview height asynchronously.
func (ed *Editing) SetAvailableHeight(h int) {
	ed.Requests <- SetAvailableHeightReq{h}
}
