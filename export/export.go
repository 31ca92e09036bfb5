// Package export writes rendered symbols to files and their content to the
// clipboard.
package export

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"qrtoolkit/failure"
)

// Format is an output file format.
type Format int

const (
	PNG Format = iota
	JPEG
	GIF
	BMP
	TIFF
)

func (f Format) String() string {
	return [...]string{"png", "jpeg", "gif", "bmp", "tiff"}[f]
}

// FormatFor picks the format from the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".gif":
		return GIF, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	}
	return PNG, errors.Errorf("export: unsupported file extension %q", filepath.Ext(path))
}

// Encode writes img to w in format f.
func Encode(w io.Writer, f Format, img *image.NRGBA) error {
	switch f {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case GIF:
		return gif.Encode(w, img, nil)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, img)
	}
}

// Save writes img to path. The file is replaced only once it has been
// written completely. Every error is an IO failure naming path.
func Save(path string, img *image.NRGBA) error {
	if img == nil {
		return failure.IOFailure(path, errors.New("export: no image"))
	}
	f, err := FormatFor(path)
	if err != nil {
		return failure.IOFailure(path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return failure.IOFailure(path, errors.Wrap(err, "export: cannot create file"))
	}
	defer os.Remove(tmp.Name())

	if err = Encode(tmp, f, img); err != nil {
		tmp.Close()
		return failure.IOFailure(path, errors.Wrapf(err, "export: cannot encode %s", f))
	}
	if err = tmp.Chmod(fileMode(path)); err != nil {
		tmp.Close()
		return failure.IOFailure(path, errors.Wrap(err, "export: cannot set file mode"))
	}
	if err = tmp.Close(); err != nil {
		return failure.IOFailure(path, errors.Wrap(err, "export: cannot write file"))
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return failure.IOFailure(path, errors.Wrap(err, "export: cannot replace file"))
	}
	return nil
}

// fileMode is the permission of the file being replaced, or 0644 for a new one.
func fileMode(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		return fi.Mode().Perm()
	}
	return 0o644
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// ClipboardPath names the clipboard in IO failures.
const ClipboardPath = "<clipboard>"

// CopyContent puts the encoded content on the system clipboard.
func CopyContent(content string) error {
	if content == "" {
		return failure.IOFailure(ClipboardPath, errors.New("export: nothing to copy"))
	}
	if clipboard.Unsupported {
		return failure.IOFailure(ClipboardPath, errors.New("export: clipboard is not available"))
	}
	if err := writeClipboard(content); err != nil {
		return failure.IOFailure(ClipboardPath, errors.Wrap(err, "export: cannot set clipboard"))
	}
	return nil
}
