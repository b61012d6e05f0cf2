// Package backend defines the compute collaborator contract used by the
// fingerprint pipeline: image decode, low-pass filtering, bilinear resize,
// grayscale reduction and buffer management. The transform and concurrency
// logic in the rest of the module are backend-agnostic; package backend/cpu
// ships a reference implementation.
package backend

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDecode indicates the image bytes were recognized but could not be
	// decoded.
	ErrDecode = errors.New("backend: decode failed")

	// ErrUnsupportedFormat indicates the image bytes are in a container or
	// pixel layout the backend does not support.
	ErrUnsupportedFormat = errors.New("backend: unsupported image format")

	// ErrClosed indicates the backend has been closed.
	ErrClosed = errors.New("backend: closed")
)

// AllocationError indicates a working buffer could not be allocated.
type AllocationError struct {
	Width, Height int
	Format        PixelFormat
	cause         error
}

// NewAllocationError wraps cause with the requested buffer geometry.
func NewAllocationError(width, height int, format PixelFormat, cause error) *AllocationError {
	return &AllocationError{Width: width, Height: height, Format: format, cause: cause}
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("backend: allocate %dx%d %s buffer: %v", e.Width, e.Height, e.Format, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }

// ExecutionError indicates a submitted unit of work failed inside the
// backend (queue closed, encoder failure, stage failure). Submissions are
// never retried internally; the caller decides whether to retry.
type ExecutionError struct {
	Op    string
	cause error
}

// NewExecutionError wraps cause with the failing backend operation.
func NewExecutionError(op string, cause error) *ExecutionError {
	return &ExecutionError{Op: op, cause: cause}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("backend: %s: %v", e.Op, e.cause)
}

func (e *ExecutionError) Unwrap() error { return e.cause }

// PixelFormat enumerates the pixel layouts a backend can hold in images and
// color buffers. The 8-bit layouts exist with and without gamma encoding;
// RGBA16 is the wide variant for 16-bit sources. GrayF32 is the
// single-channel floating-point layout of grayscale working buffers.
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota
	FormatRGBA8
	FormatRGBA8SRGB
	FormatBGRA8
	FormatBGRA8SRGB
	FormatRGBA16
	FormatGrayF32
)

func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA8SRGB:
		return "RGBA8_sRGB"
	case FormatBGRA8:
		return "BGRA8"
	case FormatBGRA8SRGB:
		return "BGRA8_sRGB"
	case FormatRGBA16:
		return "RGBA16"
	case FormatGrayF32:
		return "GrayF32"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// GammaEncoded reports whether the layout stores gamma-encoded (sRGB)
// channel values.
func (f PixelFormat) GammaEncoded() bool {
	return f == FormatRGBA8SRGB || f == FormatBGRA8SRGB
}

// Image is a decoded source image owned by a backend. It is mutable only
// through the backend that produced it (BlurInPlace).
type Image interface {
	Width() int
	Height() int
	Format() PixelFormat
}

// Buffer is a backend-allocated working buffer.
type Buffer interface {
	Width() int
	Height() int
	Format() PixelFormat
}

// Allocator is the buffer-allocation subset of Backend. The working buffer
// pool depends on this interface only.
type Allocator interface {
	// AllocateColor allocates a color working buffer in the backend's
	// native layout for the given pixel format.
	AllocateColor(width, height int, format PixelFormat) (Buffer, error)

	// AllocateGray allocates a single-channel floating-point buffer.
	AllocateGray(width, height int) (Buffer, error)
}

// Backend executes the image stages of the fingerprint pipeline. All stage
// methods must be safe for concurrent use; the number of simultaneously
// executing submissions is bounded by the backend's own queue in addition to
// any application-level admission limiting.
type Backend interface {
	Allocator

	// Decode decodes image bytes into a working image at native resolution.
	// Unsupported containers or layouts yield ErrUnsupportedFormat, corrupt
	// data ErrDecode.
	Decode(data []byte) (Image, error)

	// Submit runs work on the backend's bounded executor and waits for it
	// to finish. Once running, work is never aborted; ctx only governs
	// queue admission. Failures surface as *ExecutionError.
	Submit(ctx context.Context, work func(ctx context.Context) error) error

	// BlurInPlace applies a Gaussian low-pass filter with the given sigma
	// to img in place.
	BlurInPlace(ctx context.Context, img Image, sigma float64) error

	// ResizeBilinear resizes src into dst using bilinear filtering with
	// independent horizontal/vertical scale factors and zero translation.
	ResizeBilinear(ctx context.Context, src Image, dst Buffer, scaleX, scaleY float64) error

	// Grayscale reduces the color buffer src into the grayscale buffer dst
	// using luma weights (0.2126, 0.7152, 0.0722), ignoring alpha. The
	// reduction has no cross-pixel data dependency and implementations are
	// expected to dispatch it in parallel.
	Grayscale(ctx context.Context, src, dst Buffer) error

	// Readback copies a grayscale buffer into a flat row-major sample
	// slice.
	Readback(ctx context.Context, src Buffer) ([]float64, error)

	// Close releases backend resources. Submissions after Close fail with
	// ErrClosed.
	Close() error
}
