// Package raster holds the pixel buffer every detector operates on, plus
// loading, cropping and encoding helpers around it.
//
// # Buffer Layout
//
// A Buffer is an 8-bit image with 1 (grayscale) or 3 (RGB) interleaved
// channels. Pixel (x, y) channel c is stored at Pix[(y*Width+x)*Channels+c].
// Buffers with zero width or height are legal and represent empty frames.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Regions use
// image.Rectangle semantics: Min inclusive, Max exclusive.
//
// # Loading
//
// ImageCache decodes PNG, JPEG, GIF, BMP and TIFF files through
// github.com/disintegration/imaging (with EXIF auto-orientation) and keeps the
// decoded images keyed by path. LoadBuffer hands out a fresh Buffer copy on
// every call, so detectors never share mutable pixel memory.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Buffers are plain values; a Buffer
// that is not being written can be read by any number of goroutines.
package raster
