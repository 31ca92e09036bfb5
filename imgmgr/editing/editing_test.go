package editing

import (
	"context"
	"encoding/json"
	"image/color"
	"strings"
	"testing"
	"time"

	"qrtoolkit/payload"
	"qrtoolkit/qr"
)

func TestSerializeRootFormat(t *testing.T) {
	st := qr.DefaultStyle()
	st.Shape = qr.ShapeRounded
	st.Foreground = color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}
	ed := New(st)
	ed.content = payload.Content{Mode: payload.ModeContact, Contact: payload.Contact{Name: "Alice"}}

	state, err := ed.serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(state), &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if decoded["version"] != float64(1) {
		t.Errorf("version = %v, want 1", decoded["version"])
	}
	if decoded["mode"] != "contact" {
		t.Errorf("mode = %v, want contact", decoded["mode"])
	}
	if _, ok := decoded["meeting"]; ok {
		t.Errorf("meeting should be omitted when empty")
	}
	style, ok := decoded["style"].(map[string]any)
	if !ok {
		t.Fatalf("style = %T, want object", decoded["style"])
	}
	if style["foreground"] != "#123456" {
		t.Errorf("foreground = %v, want #123456", style["foreground"])
	}
	if style["shape"] != "rounded" {
		t.Errorf("shape = %v, want rounded", style["shape"])
	}
	if style["level"] != "M" {
		t.Errorf("level = %v, want M", style["level"])
	}
}

func TestDeserializeRestoresState(t *testing.T) {
	start := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	st := qr.DefaultStyle()
	st.Size = 640
	st.Margin = 4
	st.Ratio = 0.25
	st.Logo = "/tmp/logo.png"
	st.Level = qr.LevelH
	src := New(st)
	src.content = payload.Content{
		Mode:    payload.ModeMeeting,
		Text:    "unused",
		Meeting: payload.Meeting{Title: "Review", Start: start, End: start.Add(time.Hour)},
	}
	state, err := src.serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	dst := New(qr.DefaultStyle())
	if err := dst.deserialize(state); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if dst.style != st {
		t.Errorf("style = %+v, want %+v", dst.style, st)
	}
	if dst.content.Mode != payload.ModeMeeting {
		t.Errorf("mode = %v, want meeting", dst.content.Mode)
	}
	if !dst.content.Meeting.Start.Equal(start) {
		t.Errorf("start = %v, want %v", dst.content.Meeting.Start, start)
	}
	if dst.content.Meeting.Title != "Review" {
		t.Errorf("title = %q, want Review", dst.content.Meeting.Title)
	}
}

func TestDeserializeRejectsUnknownFormat(t *testing.T) {
	for _, state := range []string{
		`[]`,
		`{"version":0}`,
		`{"version":2,"mode":"text"}`,
		`{"version":1,"mode":"fax"}`,
		`{"version":1,"mode":"text","style":{"foreground":"zzz","background":"#fff"}}`,
	} {
		ed := New(qr.DefaultStyle())
		if err := ed.deserialize(state); err == nil {
			t.Errorf("deserialize(%s) error = nil, want error", state)
		}
		if ed.style != qr.DefaultStyle() {
			t.Errorf("deserialize(%s) changed the style on failure", state)
		}
	}
}

func TestDeserializeEmptyClearsContent(t *testing.T) {
	ed := New(qr.DefaultStyle())
	ed.content.Text = "hello"
	if err := ed.deserialize(""); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if ed.content.Text != "" {
		t.Errorf("text = %q, want empty", ed.content.Text)
	}
}

func TestRunNotifiesChanges(t *testing.T) {
	ed := New(qr.DefaultStyle())
	changes := make(chan Snapshot, 16)
	ed.OnChange = func(s Snapshot) { changes <- s }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ed.Run(ctx)

	next := func() Snapshot {
		t.Helper()
		select {
		case s := <-changes:
			return s
		case <-time.After(2 * time.Second):
			t.Fatal("no change notified")
		}
		return Snapshot{}
	}

	ed.SetText("hello")
	if s := next(); s.Request.Content.Text != "hello" || s.Reason != ReasonInput {
		t.Errorf("snapshot = %+v, want text hello", s)
	}

	ed.SetAvailableHeight(120)
	if s := next(); s.Request.AvailableHeight != 120 || s.Reason != ReasonLayout {
		t.Errorf("snapshot = %+v, want layout 120", s)
	}

	// Neither of these changes anything.
	ed.SetAvailableHeight(120)
	ed.SetMode(payload.ModeText)

	ed.SetLogo("logo.png")
	s := next()
	if s.Request.Style.Logo != "logo.png" {
		t.Errorf("logo = %q, want logo.png", s.Request.Style.Logo)
	}
	if s.Request.AvailableHeight != 120 {
		t.Errorf("height = %d, want 120", s.Request.AvailableHeight)
	}

	ed.SetContact(payload.Contact{Name: "Alice"})
	ed.SetMode(payload.ModeContact)
	next()
	if s := next(); s.Request.Content.Mode != payload.ModeContact || s.Request.Content.Contact.Name != "Alice" {
		t.Errorf("snapshot = %+v, want contact Alice", s)
	}

	snap := ed.GetSnapshot()
	if snap.Request.Content.Text != "hello" {
		t.Errorf("GetSnapshot text = %q, want hello", snap.Request.Content.Text)
	}
	select {
	case s := <-changes:
		t.Errorf("unexpected change %+v", s)
	default:
	}
}

func TestClientSerialize(t *testing.T) {
	ed := New(qr.DefaultStyle())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ed.Run(ctx)

	ed.SetText("persist me")
	state, err := ed.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(state, `"persist me"`) {
		t.Errorf("state = %s, want the text", state)
	}

	other := New(qr.DefaultStyle())
	go other.Run(ctx)
	if err := other.Deserialize(state); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got := other.GetSnapshot().Request.Content.Text; got != "persist me" {
		t.Errorf("text = %q, want persist me", got)
	}
}
