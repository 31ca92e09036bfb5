package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSavesImage(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "alice.png")
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-config", filepath.Join(dir, "none.toml"),
		"-contact-name", "Alice",
		"-size", "160",
		"-margin", "2",
		"-rounded",
		"-out", out,
	}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
}

func TestRunUsesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("debounce = \"10ms\"\n[style]\nsize = 90\n"), 0o644))
	out := filepath.Join(dir, "out.bmp")
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, "-text", "hello", "-out", out}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(90*90))
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	none := filepath.Join(dir, "none.toml")
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[style]\nshape = \"star\"\n"), 0o644))

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown flag", []string{"-nope"}, 2},
		{"bad config", []string{"-config", bad, "-text", "x"}, 1},
		{"too long", []string{"-config", none, "-text", strings.Repeat("x", 8000), "-out", filepath.Join(dir, "a.png")}, 1},
		{"nothing to save", []string{"-config", none, "-out", filepath.Join(dir, "b.png")}, 1},
		{"bad extension", []string{"-config", none, "-text", "x", "-out", filepath.Join(dir, "c.svg")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.code, run(tt.args, strings.NewReader(""), &stdout, &stderr))
		})
	}
}

func TestRunServesStdin(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")
	var stdout, stderr bytes.Buffer
	script := "TEXT one\nTEXT two\nWAIT\nSAVE " + out + "\nQUIT\n"
	code := run([]string{"-config", filepath.Join(dir, "none.toml"), "-stdin"}, strings.NewReader(script), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "ok\nok\nok\nok\nok\n", stdout.String())
	_, err := os.Stat(out)
	assert.NoError(t, err)
}
