// Command qrtoolkit renders a QR symbol through the same debounced preview
// pipeline the interactive form uses, and saves or copies the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"qrtoolkit/config"
	"qrtoolkit/gui"
	"qrtoolkit/gui/mainview"
	"qrtoolkit/imgmgr/editing"
	"qrtoolkit/ipc"
	"qrtoolkit/locale"
	"qrtoolkit/ods"
	"qrtoolkit/payload"
	"qrtoolkit/qr"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "qrtoolkit", "config.toml")
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("qrtoolkit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", defaultConfigPath(), "settings file")
		text        = fs.String("text", "", "free text to encode")
		contactName = fs.String("contact-name", "", "encode a contact with this name instead of text")
		out         = fs.String("out", "", "write the image to this file (png, jpg, gif, bmp, tif)")
		size        = fs.Int("size", 0, "image side in pixels (default from settings)")
		margin      = fs.Int("margin", -1, "quiet zone in modules (default from settings)")
		ratio       = fs.Float64("ratio", -1, "logo box side relative to the image (default from settings)")
		logo        = fs.String("logo", "", "logo image file")
		rounded     = fs.Bool("rounded", false, "draw rounded modules")
		display     = fs.Int("display", 0, "height available for the preview")
		copyContent = fs.Bool("copy", false, "copy the encoded content to the clipboard")
		serve       = fs.Bool("stdin", false, "read commands from standard input")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	ods.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: ods.ParseLevel(cfg.LogLevel)})))
	defer ods.SetLogger(nil)
	if cfg.Language != "" {
		locale.SetLanguage(cfg.Language)
	} else {
		locale.SetLanguage(locale.Detect())
	}

	st, err := cfg.QRStyle()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *size > 0 {
		st.Size = *size
	}
	if *margin >= 0 {
		st.Margin = *margin
	}
	if *ratio >= 0 {
		st.Ratio = *ratio
	}
	if *logo != "" {
		st.Logo = *logo
	}
	if *rounded {
		st.Shape = qr.ShapeRounded
	}

	comp := qr.NewCompositor()
	comp.MaxPixels = cfg.MaxPixels
	ed := editing.New(st)
	g := gui.New(ed, gui.NewLabel(0), mainview.Options{
		Delay:           cfg.Debounce.Duration,
		MinDisplaySide:  cfg.MinDisplaySide,
		SmoothThreshold: cfg.SmoothThreshold,
		Compositor:      comp,
	})
	g.Dialog = func(msg string) { fmt.Fprintln(stderr, msg) }
	g.Status = func(msg string) { fmt.Fprintln(stderr, msg) }

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	exitCh := make(chan struct{})
	stopped := make(chan struct{})
	go ed.Run(ctx)
	go func() {
		g.Main(exitCh)
		close(stopped)
	}()
	defer func() {
		close(exitCh)
		<-stopped
	}()

	if *serve {
		srv := ipc.New(ed, stdin, stdout)
		srv.Resize = g.Resize
		srv.Wait = func() error { return g.WaitSettled(ctx) }
		srv.Save = g.Save
		srv.CopyContent = g.CopyContent
		srv.Serialize = g.Serialize
		srv.Deserialize = g.Deserialize
		if failed := srv.Main(make(chan struct{})); failed > 0 {
			return 1
		}
		return 0
	}

	if *display > 0 {
		ed.SetAvailableHeight(*display)
	}
	if *contactName != "" {
		ed.SetContact(payload.Contact{Name: *contactName})
		ed.SetMode(payload.ModeContact)
	} else {
		ed.SetText(*text)
	}
	ed.GetSnapshot()
	if err := g.WaitSettled(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(g.Failures()) > 0 {
		return 1
	}
	if *out != "" {
		if err := g.Save(*out); err != nil {
			return 1
		}
	}
	if *copyContent {
		if err := g.CopyContent(); err != nil {
			return 1
		}
	}
	return 0
}
