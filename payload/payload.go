// Package payload turns structured form content into the string stored in
// the symbol.
package payload

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Mode selects which fields of Content are encoded.
type Mode int

const (
	ModeText Mode = iota
	ModeContact
	ModeMeeting
)

func (m Mode) String() string {
	switch m {
	case ModeContact:
		return "contact"
	case ModeMeeting:
		return "meeting"
	default:
		return "text"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return ModeText, nil
	case "contact", "mecard":
		return ModeContact, nil
	case "meeting", "event":
		return ModeMeeting, nil
	}
	return ModeText, errors.Errorf("payload: unknown mode %q", s)
}

// Contact is encoded as MECARD.
type Contact struct {
	Name     string `json:"name,omitempty"`
	Reading  string `json:"reading,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	URL      string `json:"url,omitempty"`
	Birthday string `json:"birthday,omitempty"` // YYYYMMDD
	Note     string `json:"note,omitempty"`
}

// Meeting is encoded as an iCalendar VEVENT.
type Meeting struct {
	Title       string    `json:"title,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start,omitempty"`
	End         time.Time `json:"end,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Content holds the fields of every mode; only the active mode is encoded.
type Content struct {
	Mode    Mode    `json:"mode"`
	Text    string  `json:"text,omitempty"`
	Contact Contact `json:"contact,omitempty"`
	Meeting Meeting `json:"meeting,omitempty"`
}

// Encode returns the payload for c. An empty string means there is nothing
// to render.
func Encode(c Content) (string, error) {
	var s string
	switch c.Mode {
	case ModeText:
		s = c.Text
	case ModeContact:
		s = mecard(c.Contact)
	case ModeMeeting:
		s = vevent(c.Meeting)
	default:
		return "", errors.Errorf("payload: unsupported mode %d", c.Mode)
	}
	return norm.NFC.String(s), nil
}

var mecardEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`:`, `\:`,
	`,`, `\,`,
)

func mecard(c Contact) string {
	fields := []struct{ tag, value string }{
		{"N", c.Name},
		{"SOUND", c.Reading},
		{"TEL", c.Phone},
		{"EMAIL", c.Email},
		{"ADR", c.Address},
		{"URL", c.URL},
		{"BDAY", c.Birthday},
		{"NOTE", c.Note},
	}
	var b strings.Builder
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		b.WriteString(f.tag)
		b.WriteByte(':')
		b.WriteString(mecardEscaper.Replace(v))
		b.WriteByte(';')
	}
	if b.Len() == 0 {
		return ""
	}
	return "MECARD:" + b.String() + ";"
}

var icalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

const icalTime = "20060102T150405Z"

func vevent(m Meeting) string {
	var lines []string
	add := func(tag, v string) {
		if v = strings.TrimSpace(v); v != "" {
			lines = append(lines, tag+":"+icalEscaper.Replace(v))
		}
	}
	add("SUMMARY", m.Title)
	add("LOCATION", m.Location)
	if !m.Start.IsZero() {
		lines = append(lines, "DTSTART:"+m.Start.UTC().Format(icalTime))
	}
	if !m.End.IsZero() {
		lines = append(lines, "DTEND:"+m.End.UTC().Format(icalTime))
	}
	add("DESCRIPTION", m.Description)
	if len(lines) == 0 {
		return ""
	}
	return "BEGIN:VEVENT\n" + strings.Join(lines, "\n") + "\nEND:VEVENT"
}
