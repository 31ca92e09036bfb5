// Package config loads qrtoolkit settings from a TOML file.
package config

import (
	"math"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"qrtoolkit/img"
	"qrtoolkit/jobqueue"
	"qrtoolkit/qr"
)

// Duration is a time.Duration written as "200ms", "1s" and so on.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Style is the [style] table.
type Style struct {
	Size       int     `toml:"size"`
	Margin     int     `toml:"margin"`
	Ratio      float64 `toml:"ratio"`
	Foreground string  `toml:"foreground"`
	Background string  `toml:"background"`
	Shape      string  `toml:"shape"`
	Level      string  `toml:"level"`
	Logo       string  `toml:"logo"`
}

// Config is the whole file. Keys that are absent keep their defaults.
type Config struct {
	Debounce        Duration `toml:"debounce"`
	MinDisplaySide  int      `toml:"min_display_side"`
	SmoothThreshold int      `toml:"smooth_threshold"`
	MaxPixels       int      `toml:"max_pixels"`
	LogLevel        string   `toml:"log_level"`
	Language        string   `toml:"language"`
	Style           Style    `toml:"style"`
}

// Default returns the built-in settings.
func Default() Config {
	st := qr.DefaultStyle()
	return Config{
		Debounce:        Duration{jobqueue.DefaultDelay},
		MinDisplaySide:  img.MinDisplaySide,
		SmoothThreshold: img.SmoothThreshold,
		MaxPixels:       qr.DefaultMaxPixels,
		LogLevel:        "info",
		Style: Style{
			Size:       st.Size,
			Margin:     st.Margin,
			Ratio:      st.Ratio,
			Foreground: qr.FormatColor(st.Foreground),
			Background: qr.FormatColor(st.Background),
			Shape:      st.Shape.String(),
			Level:      st.Level.String(),
		},
	}
}

// Parse decodes data over the defaults and validates the result.
func Parse(data string) (Config, error) {
	c := Default()
	md, err := toml.Decode(data, &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: cannot decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("config: unknown key %q", undecoded[0].String())
	}
	if err = c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, errors.Wrapf(err, "config: cannot read %q", path)
	}
	c, err := Parse(string(b))
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: %q", path)
	}
	return c, nil
}

// Validate reports the first key holding an unusable value.
func (c Config) Validate() error {
	switch {
	case c.Debounce.Duration <= 0:
		return errors.Errorf("config: debounce must be positive, got %v", c.Debounce.Duration)
	case c.MinDisplaySide <= 0:
		return errors.Errorf("config: min_display_side must be positive, got %d", c.MinDisplaySide)
	case c.SmoothThreshold <= 0:
		return errors.Errorf("config: smooth_threshold must be positive, got %d", c.SmoothThreshold)
	case c.MaxPixels <= 0:
		return errors.Errorf("config: max_pixels must be positive, got %d", c.MaxPixels)
	}
	_, err := c.QRStyle()
	return err
}

// QRStyle converts the [style] table.
func (c Config) QRStyle() (qr.Style, error) {
	s := c.Style
	st := qr.Style{Size: s.Size, Margin: s.Margin, Ratio: s.Ratio, Logo: s.Logo}
	var err error
	switch {
	case s.Size <= 0:
		return st, errors.Errorf("config: style.size must be positive, got %d", s.Size)
	case s.Margin < 0 || s.Margin > qr.MaxMargin:
		return st, errors.Errorf("config: style.margin must be within 0..%d, got %d", qr.MaxMargin, s.Margin)
	case math.IsNaN(s.Ratio) || s.Ratio < 0 || s.Ratio > 1:
		return st, errors.Errorf("config: style.ratio must be within 0..1, got %v", s.Ratio)
	}
	if st.Foreground, err = qr.ParseColor(s.Foreground); err != nil {
		return st, errors.Wrap(err, "config: style.foreground")
	}
	if st.Background, err = qr.ParseColor(s.Background); err != nil {
		return st, errors.Wrap(err, "config: style.background")
	}
	if st.Shape, err = qr.ParseShape(s.Shape); err != nil {
		return st, errors.Wrap(err, "config: style.shape")
	}
	if st.Level, err = qr.ParseLevel(s.Level); err != nil {
		return st, errors.Wrap(err, "config: style.level")
	}
	return st, nil
}
