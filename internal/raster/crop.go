package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// ErrEmptyRegion is returned when a region of interest does not overlap the
// buffer or has no area.
var ErrEmptyRegion = errors.New("raster: empty region")

// Crop extracts a rectangular region of interest. The rectangle uses
// image.Rectangle semantics: Min is inclusive, Max is exclusive. Regions that
// stick out of the buffer are clipped to it first.
//
// Detector coordinates on a cropped buffer are relative to roi.Min; callers
// that need frame coordinates translate them back.
func Crop(b *Buffer, roi image.Rectangle) (*Buffer, error) {
	if b.Empty() {
		return nil, fmt.Errorf("%w: source buffer is empty", ErrEmptyRegion)
	}
	clipped := roi.Intersect(image.Rect(0, 0, b.Width, b.Height))
	if clipped.Empty() {
		return nil, fmt.Errorf("%w: (%d,%d)-(%d,%d) outside %dx%d",
			ErrEmptyRegion, roi.Min.X, roi.Min.Y, roi.Max.X, roi.Max.Y, b.Width, b.Height)
	}

	w, h := clipped.Dx(), clipped.Dy()
	out := &Buffer{Width: w, Height: h, Channels: b.Channels, Pix: make([]uint8, w*h*b.Channels)}
	rowLen := w * b.Channels
	for y := 0; y < h; y++ {
		src := ((clipped.Min.Y+y)*b.Width + clipped.Min.X) * b.Channels
		copy(out.Pix[y*rowLen:(y+1)*rowLen], b.Pix[src:src+rowLen])
	}
	return out, nil
}

// Fit downscales the buffer so neither side exceeds maxDim, preserving the
// aspect ratio. Buffers already within bounds (or maxDim <= 0) are returned
// unchanged. The scale factor applied is returned alongside the result so
// detections can be mapped back to the source frame.
func Fit(b *Buffer, maxDim int) (*Buffer, float64) {
	if b.Empty() || maxDim <= 0 || (b.Width <= maxDim && b.Height <= maxDim) {
		return b, 1.0
	}
	resized := imaging.Fit(b.ToImage(), maxDim, maxDim, imaging.Lanczos)
	out := FromImage(resized)
	if b.Channels == 1 && out.Channels == 3 {
		// imaging returns NRGBA even for gray sources
		out = out.Gray()
	}
	return out, float64(out.Width) / float64(b.Width)
}

// EncodedImage is a PNG rendering of a buffer or image, base64 encoded for
// transport in JSON responses.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG renders img as a base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
