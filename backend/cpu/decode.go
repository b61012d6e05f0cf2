package cpu

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/hupe1980/percept/backend"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// cpuImage holds a decoded source image. Pixels are stored canonically as
// NRGBA64 regardless of the source layout; the format records the layout the
// container carried so downstream stages can honor gamma encoding.
type cpuImage struct {
	pix    *image.NRGBA64
	format backend.PixelFormat
}

func (i *cpuImage) Width() int                  { return i.pix.Rect.Dx() }
func (i *cpuImage) Height() int                 { return i.pix.Rect.Dy() }
func (i *cpuImage) Format() backend.PixelFormat { return i.format }

// Decode decodes image bytes into a working image. Containers registered
// with the image package are supported: PNG, JPEG, GIF, BMP, TIFF and WebP.
func (b *Backend) Decode(data []byte) (backend.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", backend.ErrDecode)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", backend.ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("%w: %v", backend.ErrDecode, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty bounds", backend.ErrDecode)
	}

	format := classifyFormat(src)
	pix := image.NewNRGBA64(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(pix, pix.Bounds(), src, bounds.Min, draw.Src)

	return &cpuImage{pix: pix, format: format}, nil
}

// classifyFormat maps a decoded image type onto the pixel layout enum.
// Wide sources keep their 16-bit depth; all 8-bit container formats are
// treated as gamma encoded, which matches what PNG/JPEG/GIF actually store.
func classifyFormat(src image.Image) backend.PixelFormat {
	switch src.(type) {
	case *image.NRGBA64, *image.RGBA64, *image.Gray16:
		return backend.FormatRGBA16
	default:
		return backend.FormatRGBA8SRGB
	}
}
