package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrtoolkit/qr"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	st, err := c.QRStyle()
	require.NoError(t, err)
	assert.Equal(t, qr.DefaultStyle(), st)
	assert.Equal(t, 200*time.Millisecond, c.Debounce.Duration)
	assert.Equal(t, 50, c.MinDisplaySide)
}

func TestParse(t *testing.T) {
	c, err := Parse(`
debounce = "350ms"
min_display_side = 64
log_level = "debug"
language = "ja"

[style]
size = 600
ratio = 0.2
foreground = "#1a2b3c"
shape = "rounded"
level = "H"
logo = "logo.png"
`)
	require.NoError(t, err)
	assert.Equal(t, 350*time.Millisecond, c.Debounce.Duration)
	assert.Equal(t, 64, c.MinDisplaySide)
	assert.Equal(t, Default().SmoothThreshold, c.SmoothThreshold, "absent keys keep defaults")
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "ja", c.Language)

	st, err := c.QRStyle()
	require.NoError(t, err)
	assert.Equal(t, 600, st.Size)
	assert.Equal(t, 3, st.Margin)
	assert.Equal(t, 0.2, st.Ratio)
	assert.Equal(t, color.NRGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}, st.Foreground)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, st.Background)
	assert.Equal(t, qr.ShapeRounded, st.Shape)
	assert.Equal(t, qr.LevelH, st.Level)
	assert.Equal(t, "logo.png", st.Logo)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		key  string
	}{
		{"syntax", `debounce = `, "decode"},
		{"bad duration", `debounce = "soon"`, "decode"},
		{"zero debounce", `debounce = "0s"`, "debounce"},
		{"unknown key", `colour = "red"`, "colour"},
		{"size", "[style]\nsize = 0", "style.size"},
		{"margin", "[style]\nmargin = 11", "style.margin"},
		{"ratio", "[style]\nratio = 1.5", "style.ratio"},
		{"colour", "[style]\nbackground = \"white\"", "style.background"},
		{"shape", "[style]\nshape = \"star\"", "style.shape"},
		{"level", "[style]\nlevel = \"X\"", "style.level"},
		{"max pixels", `max_pixels = -1`, "max_pixels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := filepath.Join(dir, "qrtoolkit.toml")
	require.NoError(t, os.WriteFile(path, []byte("smooth_threshold = 500\n"), 0o644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, c.SmoothThreshold)

	require.NoError(t, os.WriteFile(path, []byte("smooth_threshold = \"x\"\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
