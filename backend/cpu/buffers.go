package cpu

import (
	"errors"
	"image"

	"github.com/hupe1980/percept/backend"
)

// colorBuffer is a resize target in the backend's native color storage.
type colorBuffer struct {
	pix    *image.NRGBA64
	format backend.PixelFormat
}

func (c *colorBuffer) Width() int                  { return c.pix.Rect.Dx() }
func (c *colorBuffer) Height() int                 { return c.pix.Rect.Dy() }
func (c *colorBuffer) Format() backend.PixelFormat { return c.format }

// grayBuffer holds single-channel floating-point samples, row major.
type grayBuffer struct {
	w, h    int
	samples []float64
}

func (g *grayBuffer) Width() int                  { return g.w }
func (g *grayBuffer) Height() int                 { return g.h }
func (g *grayBuffer) Format() backend.PixelFormat { return backend.FormatGrayF32 }

// AllocateColor implements backend.Allocator.
func (b *Backend) AllocateColor(width, height int, format backend.PixelFormat) (backend.Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, backend.NewAllocationError(width, height, format, errors.New("non-positive dimensions"))
	}
	switch format {
	case backend.FormatRGBA8, backend.FormatRGBA8SRGB, backend.FormatBGRA8, backend.FormatBGRA8SRGB, backend.FormatRGBA16:
	default:
		return nil, backend.NewAllocationError(width, height, format, errors.New("not a color layout"))
	}
	return &colorBuffer{
		pix:    image.NewNRGBA64(image.Rect(0, 0, width, height)),
		format: format,
	}, nil
}

// AllocateGray implements backend.Allocator.
func (b *Backend) AllocateGray(width, height int) (backend.Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, backend.NewAllocationError(width, height, backend.FormatGrayF32, errors.New("non-positive dimensions"))
	}
	return &grayBuffer{
		w:       width,
		h:       height,
		samples: make([]float64, width*height),
	}, nil
}
