package raster

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidChannels is returned when a buffer is requested with a channel
// count other than 1 (grayscale) or 3 (RGB).
var ErrInvalidChannels = errors.New("raster: channel count must be 1 or 3")

// Buffer is an 8-bit raster with interleaved channels.
//
// Pixel (x, y) channel c lives at Pix[(y*Width+x)*Channels+c]. Color buffers
// store samples in R, G, B order. A Buffer with zero width or height is valid
// and represents an empty image; every detector returns an empty result for it.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// New allocates a zeroed buffer.
func New(width, height, channels int) (*Buffer, error) {
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChannels, channels)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("raster: negative dimensions %dx%d", width, height)
	}
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// NewGray allocates a zeroed single-channel buffer. Negative dimensions are
// treated as zero.
func NewGray(width, height int) *Buffer {
	width = max(width, 0)
	height = max(height, 0)
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: 1,
		Pix:      make([]uint8, width*height),
	}
}

// Empty reports whether the buffer holds no usable pixels. A buffer with a
// channel count other than 1 or 3, or a Pix slice shorter than its
// dimensions require, counts as empty.
func (b *Buffer) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0 ||
		(b.Channels != 1 && b.Channels != 3) ||
		len(b.Pix) < b.Width*b.Height*b.Channels
}

// At returns channel c of pixel (x, y). No bounds checking is performed.
func (b *Buffer) At(x, y, c int) uint8 {
	return b.Pix[(y*b.Width+x)*b.Channels+c]
}

// Set writes channel c of pixel (x, y). No bounds checking is performed.
func (b *Buffer) Set(x, y, c int, v uint8) {
	b.Pix[(y*b.Width+x)*b.Channels+c] = v
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Channels: b.Channels, Pix: pix}
}

// Gray returns a single-channel luminance copy of the buffer.
//
// Color buffers are converted with ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B, rounded). Single-channel buffers are copied
// unchanged. The receiver is never modified.
func (b *Buffer) Gray() *Buffer {
	if b.Empty() {
		return NewGray(0, 0)
	}
	if b.Channels == 1 {
		return b.Clone()
	}
	out := NewGray(b.Width, b.Height)
	for i := range out.Pix {
		r := float64(b.Pix[i*3])
		g := float64(b.Pix[i*3+1])
		bl := float64(b.Pix[i*3+2])
		out.Pix[i] = uint8(math.Min(255, math.Round(0.299*r+0.587*g+0.114*bl)))
	}
	return out
}

// FromImage converts an image.Image into a Buffer.
//
// Grayscale images (*image.Gray, *image.Gray16) become single-channel buffers;
// everything else becomes a 3-channel RGB buffer with alpha discarded.
// The image bounds are translated so the buffer origin is (0, 0).
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		out := NewGray(width, height)
		for y := 0; y < height; y++ {
			row := src.Pix[(y+bounds.Min.Y-src.Rect.Min.Y)*src.Stride+(bounds.Min.X-src.Rect.Min.X):]
			copy(out.Pix[y*width:(y+1)*width], row[:width])
		}
		return out
	case *image.Gray16:
		out := NewGray(width, height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Pix[y*width+x] = uint8(src.Gray16At(x+bounds.Min.X, y+bounds.Min.Y).Y >> 8)
			}
		}
		return out
	}

	out := &Buffer{Width: width, Height: height, Channels: 3, Pix: make([]uint8, width*height*3)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			i := (y*width + x) * 3
			out.Pix[i] = uint8(r >> 8)
			out.Pix[i+1] = uint8(g >> 8)
			out.Pix[i+2] = uint8(b >> 8)
		}
	}
	return out
}

// ToImage converts the buffer to an *image.Gray (one channel) or
// *image.NRGBA (three channels, fully opaque).
func (b *Buffer) ToImage() image.Image {
	if b.Empty() {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
	rect := image.Rect(0, 0, b.Width, b.Height)
	if b.Channels == 1 {
		img := image.NewGray(rect)
		copy(img.Pix, b.Pix)
		return img
	}
	img := image.NewNRGBA(rect)
	for i := 0; i < b.Width*b.Height; i++ {
		img.Pix[i*4] = b.Pix[i*3]
		img.Pix[i*4+1] = b.Pix[i*3+1]
		img.Pix[i*4+2] = b.Pix[i*3+2]
		img.Pix[i*4+3] = 255
	}
	return img
}
