// Package ipc drives the form from line commands read on a stream, so a
// parent process can script the preview.
//
// Each request is one line: a four letter command, a space and an optional
// argument. Each reply is one line: "ok", "ok <value>" or "error <message>".
package ipc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"qrtoolkit/imgmgr/editing"
	"qrtoolkit/ods"
	"qrtoolkit/payload"
	"qrtoolkit/qr"
)

type IPC struct {
	Resize      func(height int)
	Wait        func() error
	Save        func(path string) error
	CopyContent func() error
	Serialize   func() (string, error)
	Deserialize func(state string) error

	editing *editing.Editing
	r       io.Reader
	w       io.Writer
}

// New returns an IPC reading commands from r and replying on w.
func New(ed *editing.Editing, r io.Reader, w io.Writer) *IPC {
	return &IPC{editing: ed, r: r, w: w}
}

var errQuit = errors.New("quit")

func (ipc *IPC) writeReply(value string, err error) error {
	var line string
	switch {
	case err != nil:
		line = "error " + strings.ReplaceAll(err.Error(), "\n", " ")
	case value != "":
		line = "ok " + strings.ReplaceAll(strings.TrimRight(value, "\n"), "\n", " ")
	default:
		line = "ok"
	}
	_, werr := fmt.Fprintln(ipc.w, line)
	return werr
}

func parseInt(arg string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, errors.Errorf("ipc: invalid number %q", arg)
	}
	return v, nil
}

func (ipc *IPC) updateStyle(f func(st *qr.Style) error) error {
	st := ipc.editing.GetSnapshot().Request.Style
	if err := f(&st); err != nil {
		return err
	}
	ipc.editing.SetStyle(st)
	return nil
}

func (ipc *IPC) updateContact(f func(c *payload.Contact)) {
	c := ipc.editing.GetSnapshot().Request.Content.Contact
	f(&c)
	ipc.editing.SetContact(c)
}

func (ipc *IPC) dispatch(cmd, arg string) (string, error) {
	switch cmd {
	case "HELO":
		return "qrtoolkit", nil

	case "TEXT":
		ipc.editing.SetText(arg)
		return "", nil

	case "MODE":
		m, err := payload.ParseMode(arg)
		if err != nil {
			return "", err
		}
		ipc.editing.SetMode(m)
		return "", nil

	case "NAME":
		ipc.updateContact(func(c *payload.Contact) { c.Name = arg })
		return "", nil

	case "TELE":
		ipc.updateContact(func(c *payload.Contact) { c.Phone = arg })
		return "", nil

	case "MAIL":
		ipc.updateContact(func(c *payload.Contact) { c.Email = arg })
		return "", nil

	case "SIZE":
		return "", ipc.updateStyle(func(st *qr.Style) (err error) {
			st.Size, err = parseInt(arg)
			return err
		})

	case "MRGN":
		return "", ipc.updateStyle(func(st *qr.Style) (err error) {
			st.Margin, err = parseInt(arg)
			return err
		})

	case "RTIO":
		return "", ipc.updateStyle(func(st *qr.Style) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
			if err != nil {
				return errors.Errorf("ipc: invalid ratio %q", arg)
			}
			st.Ratio = v
			return nil
		})

	case "SHAP":
		return "", ipc.updateStyle(func(st *qr.Style) (err error) {
			st.Shape, err = qr.ParseShape(arg)
			return err
		})

	case "LOGO":
		ipc.editing.SetLogo(arg)
		return "", nil

	case "HGHT":
		h, err := parseInt(arg)
		if err != nil {
			return "", err
		}
		ipc.Resize(h)
		return "", nil

	case "WAIT":
		// Every earlier command has reached the GUI once the actor answers.
		ipc.editing.GetSnapshot()
		return "", ipc.Wait()

	case "SAVE":
		if arg == "" {
			return "", errors.New("ipc: SAVE needs a path")
		}
		return "", ipc.Save(arg)

	case "COPY":
		return "", ipc.CopyContent()

	case "SRLZ":
		return ipc.Serialize()

	case "DSRL":
		return "", ipc.Deserialize(arg)

	case "QUIT":
		return "", errQuit
	}
	return "", errors.Errorf("ipc: unknown command %q", cmd)
}

func (ipc *IPC) readCommand(r chan<- string, done <-chan struct{}) {
	defer close(r)
	s := bufio.NewScanner(ipc.r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for s.Scan() {
		ods.ODS("readCommand: %s", s.Text())
		select {
		case r <- s.Text():
		case <-done:
			return
		}
	}
	if err := s.Err(); err != nil {
		ods.ODS("readCommand: %v", err)
	}
}

// Main serves commands until QUIT or the end of the input, then closes exitCh.
// It returns the number of commands that failed.
func (ipc *IPC) Main(exitCh chan<- struct{}) (failed int) {
	defer func() {
		if err := recover(); err != nil {
			ods.Recover(err)
			failed++
		}
		close(exitCh)
	}()

	cmdCh := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go ipc.readCommand(cmdCh, done)
	for line := range cmdCh {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		value, err := ipc.dispatch(strings.ToUpper(cmd), arg)
		if err == errQuit {
			ipc.writeReply("", nil)
			return failed
		}
		if err != nil {
			ods.ODS("%s: error: %v", cmd, err)
			failed++
		}
		if werr := ipc.writeReply(value, err); werr != nil {
			return failed
		}
	}
	return failed
}
