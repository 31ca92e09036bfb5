package export

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrtoolkit/failure"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				img.SetNRGBA(x, y, color.NRGBA{A: 0xff})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
			}
		}
	}
	return img
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.png", PNG},
		{"a.PNG", PNG},
		{"dir/a.jpg", JPEG},
		{"a.jpeg", JPEG},
		{"a.gif", GIF},
		{"a.bmp", BMP},
		{"a.tif", TIFF},
		{"a.tiff", TIFF},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
	_, err := FormatFor("a.svg")
	assert.Error(t, err)
}

func TestSaveDecodes(t *testing.T) {
	dir := t.TempDir()
	src := testImage()
	for _, name := range []string{"out.png", "out.gif", "out.bmp", "out.tif", "out.jpg"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, src))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()
			got, _, err := image.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), got.Bounds())

			r, g, b, _ := got.At(0, 0).RGBA()
			assert.Less(t, r+g+b, uint32(3*0x2000), "top-left pixel should be dark")
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 5, "temporary files left behind")
}

func TestSaveReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	require.NoError(t, Save(path, testImage()))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "old", string(b))
}

func TestSaveFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()

	created := filepath.Join(dir, "new.png")
	require.NoError(t, Save(created, testImage()))
	fi, err := os.Stat(created)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())

	existing := filepath.Join(dir, "old.png")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o600))
	require.NoError(t, os.Chmod(existing, 0o640))
	require.NoError(t, Save(existing, testImage()))
	fi, err = os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
}

func TestSaveFailures(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		img  *image.NRGBA
	}{
		{"nil image", filepath.Join(dir, "a.png"), nil},
		{"unknown extension", filepath.Join(dir, "a.svg"), testImage()},
		{"missing directory", filepath.Join(dir, "missing", "a.png"), testImage()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Save(tt.path, tt.img)
			require.Error(t, err)
			f := failure.Classify(err)
			assert.Equal(t, failure.IO, f.Kind)
			assert.Equal(t, tt.path, f.Path)
		})
	}
}

func TestCopyContent(t *testing.T) {
	old := writeClipboard
	t.Cleanup(func() { writeClipboard = old })

	var got string
	writeClipboard = func(s string) error {
		got = s
		return nil
	}
	err := CopyContent("MECARD:N:Alice;;")
	if err != nil && failure.Classify(err).Kind == failure.IO && got == "" {
		t.Skip("clipboard is not supported on this platform")
	}
	require.NoError(t, err)
	assert.Equal(t, "MECARD:N:Alice;;", got)

	writeClipboard = func(string) error { return errors.New("denied") }
	err = CopyContent("x")
	require.Error(t, err)
	assert.Equal(t, failure.IO, failure.KindOf(err))

	err = CopyContent("")
	require.Error(t, err)
	assert.Equal(t, ClipboardPath, failure.Classify(err).Path)
}
