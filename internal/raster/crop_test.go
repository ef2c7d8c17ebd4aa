package raster

import (
	"encoding/base64"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradientBuffer(w, h int) *Buffer {
	b := NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Pix[y*w+x] = uint8((x + y) % 256)
		}
	}
	return b
}

func TestCrop(t *testing.T) {
	b := gradientBuffer(20, 10)

	out, err := Crop(b, image.Rect(5, 2, 15, 8))
	require.NoError(t, err)
	assert.Equal(t, 10, out.Width)
	assert.Equal(t, 6, out.Height)
	assert.Equal(t, b.At(5, 2, 0), out.At(0, 0, 0))
	assert.Equal(t, b.At(14, 7, 0), out.At(9, 5, 0))
}

func TestCrop_ClipsToBounds(t *testing.T) {
	b := gradientBuffer(20, 10)

	out, err := Crop(b, image.Rect(-5, -5, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, out.Width)
	assert.Equal(t, 5, out.Height)
}

func TestCrop_Errors(t *testing.T) {
	tests := []struct {
		name string
		buf  *Buffer
		roi  image.Rectangle
	}{
		{"outside", gradientBuffer(20, 10), image.Rect(30, 30, 40, 40)},
		{"zero area", gradientBuffer(20, 10), image.Rect(5, 5, 5, 9)},
		{"empty source", NewGray(0, 0), image.Rect(0, 0, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(tt.buf, tt.roi)
			assert.ErrorIs(t, err, ErrEmptyRegion)
		})
	}
}

func TestFit(t *testing.T) {
	b := gradientBuffer(400, 200)

	out, scale := Fit(b, 100)
	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 50, out.Height)
	assert.Equal(t, 1, out.Channels)
	assert.InDelta(t, 0.25, scale, 1e-9)
}

func TestFit_NoOp(t *testing.T) {
	b := gradientBuffer(40, 20)
	out, scale := Fit(b, 100)
	assert.Same(t, b, out)
	assert.Equal(t, 1.0, scale)
}

func TestEncodePNG(t *testing.T) {
	enc, err := EncodePNG(gradientBuffer(8, 4).ToImage())
	require.NoError(t, err)
	assert.Equal(t, 8, enc.Width)
	assert.Equal(t, 4, enc.Height)
	assert.Equal(t, "image/png", enc.MimeType)

	raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), raw[:4])
}
