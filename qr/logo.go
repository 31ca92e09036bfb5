package qr

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/gift"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LogoLoader resolves a logo reference to an image.
type LogoLoader func(path string) (image.Image, error)

// LoadLogoFile decodes the image file at path.
func LoadLogoFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "qr: cannot open logo")
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "qr: cannot decode logo %q", path)
	}
	return img, nil
}

// fitLogo scales src to fit a box x box square, keeping its aspect ratio.
func fitLogo(src image.Image, box int) *image.NRGBA {
	g := gift.New(gift.ResizeToFit(box, box, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}
