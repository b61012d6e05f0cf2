package cpu

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/percept/backend"
)

var errForeignHandle = errors.New("handle not owned by this backend")

// BlurInPlace implements backend.Backend using a separable Gaussian kernel
// with radius ceil(3*sigma). Edge pixels are clamped. A non-positive sigma
// is a no-op.
func (b *Backend) BlurInPlace(_ context.Context, img backend.Image, sigma float64) error {
	ci, ok := img.(*cpuImage)
	if !ok {
		return backend.NewExecutionError("blur", errForeignHandle)
	}
	if sigma <= 0 {
		return nil
	}
	gaussianBlur(ci.pix, sigma)
	return nil
}

// ResizeBilinear implements backend.Backend via draw.BiLinear with zero
// translation. The scale factors must map the source geometry exactly onto
// the destination buffer.
func (b *Backend) ResizeBilinear(_ context.Context, src backend.Image, dst backend.Buffer, scaleX, scaleY float64) error {
	ci, ok := src.(*cpuImage)
	if !ok {
		return backend.NewExecutionError("resize", errForeignHandle)
	}
	cb, ok := dst.(*colorBuffer)
	if !ok {
		return backend.NewExecutionError("resize", errForeignHandle)
	}
	if scaleX <= 0 || scaleY <= 0 {
		return backend.NewExecutionError("resize", fmt.Errorf("non-positive scale factors %g, %g", scaleX, scaleY))
	}

	tw := int(math.Round(scaleX * float64(ci.Width())))
	th := int(math.Round(scaleY * float64(ci.Height())))
	if tw != cb.Width() || th != cb.Height() {
		return backend.NewExecutionError("resize",
			fmt.Errorf("scale factors map to %dx%d, destination is %dx%d", tw, th, cb.Width(), cb.Height()))
	}

	draw.BiLinear.Scale(cb.pix, cb.pix.Bounds(), ci.pix, ci.pix.Bounds(), draw.Src, nil)
	return nil
}

// Grayscale implements backend.Backend. The luma reduction has no
// cross-pixel dependency, so rows are dispatched in parallel bands.
func (b *Backend) Grayscale(ctx context.Context, src, dst backend.Buffer) error {
	cb, ok := src.(*colorBuffer)
	if !ok {
		return backend.NewExecutionError("grayscale", errForeignHandle)
	}
	gb, ok := dst.(*grayBuffer)
	if !ok {
		return backend.NewExecutionError("grayscale", errForeignHandle)
	}
	w, h := cb.Width(), cb.Height()
	if w != gb.w || h != gb.h {
		return backend.NewExecutionError("grayscale",
			fmt.Errorf("source %dx%d does not match destination %dx%d", w, h, gb.w, gb.h))
	}

	linearize := cb.format.GammaEncoded()

	g, _ := errgroup.WithContext(ctx)
	bands := runtime.GOMAXPROCS(0)
	if bands > h {
		bands = h
	}
	rowsPerBand := (h + bands - 1) / bands

	for band := 0; band < bands; band++ {
		y0 := band * rowsPerBand
		y1 := min(y0+rowsPerBand, h)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				for x := 0; x < w; x++ {
					i := cb.pix.PixOffset(x, y)
					r := channel(cb.pix.Pix, i)
					gr := channel(cb.pix.Pix, i+2)
					bl := channel(cb.pix.Pix, i+4)
					if linearize {
						r = srgbToLinear(r)
						gr = srgbToLinear(gr)
						bl = srgbToLinear(bl)
					}
					gb.samples[y*w+x] = 0.2126*r + 0.7152*gr + 0.0722*bl
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Readback implements backend.Backend.
func (b *Backend) Readback(_ context.Context, src backend.Buffer) ([]float64, error) {
	gb, ok := src.(*grayBuffer)
	if !ok {
		return nil, backend.NewExecutionError("readback", errForeignHandle)
	}
	out := make([]float64, len(gb.samples))
	copy(out, gb.samples)
	return out, nil
}

// channel reads a big-endian 16-bit channel from NRGBA64 storage, normalized
// to [0, 1].
func channel(pix []uint8, i int) float64 {
	return float64(uint16(pix[i])<<8|uint16(pix[i+1])) / 65535
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	k := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+radius] = w
		sum += w
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// gaussianBlur convolves all four channels separably, accumulating in
// float64 so the horizontal pass does not quantize before the vertical one.
func gaussianBlur(m *image.NRGBA64, sigma float64) {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	w, h := m.Rect.Dx(), m.Rect.Dy()

	tmp := make([]float64, w*h*4)

	// Horizontal pass: image -> tmp.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for t := -radius; t <= radius; t++ {
				sx := x + t
				if sx < 0 {
					sx = 0
				} else if sx >= w {
					sx = w - 1
				}
				i := m.PixOffset(sx, y)
				kw := kernel[t+radius]
				acc[0] += kw * channel(m.Pix, i)
				acc[1] += kw * channel(m.Pix, i+2)
				acc[2] += kw * channel(m.Pix, i+4)
				acc[3] += kw * channel(m.Pix, i+6)
			}
			o := (y*w + x) * 4
			tmp[o], tmp[o+1], tmp[o+2], tmp[o+3] = acc[0], acc[1], acc[2], acc[3]
		}
	}

	// Vertical pass: tmp -> image.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for t := -radius; t <= radius; t++ {
				sy := y + t
				if sy < 0 {
					sy = 0
				} else if sy >= h {
					sy = h - 1
				}
				o := (sy*w + x) * 4
				kw := kernel[t+radius]
				acc[0] += kw * tmp[o]
				acc[1] += kw * tmp[o+1]
				acc[2] += kw * tmp[o+2]
				acc[3] += kw * tmp[o+3]
			}
			i := m.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				v := math.Round(acc[c] * 65535)
				if v < 0 {
					v = 0
				} else if v > 65535 {
					v = 65535
				}
				u := uint16(v)
				m.Pix[i+2*c] = uint8(u >> 8)
				m.Pix[i+2*c+1] = uint8(u)
			}
		}
	}
}
