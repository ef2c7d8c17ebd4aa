package preprocess

import (
	"math"

	"github.com/ironsheep/usgeom/internal/raster"
)

const histBins = 256

// CLAHE applies contrast-limited adaptive histogram equalization to a
// single-channel buffer.
//
// The image is split into a grid x grid tiles (fewer when a side is shorter
// than grid pixels). Each tile histogram is clipped at
// max(int(clipLimit*tilePixels/256), 1) counts, the clipped mass is spread
// evenly over all bins, and the tile's lookup table maps each level through
// the normalized cumulative histogram. Output pixels blend the lookup tables
// of the four nearest tile centers bilinearly, which removes block seams.
//
// Color input is converted to grayscale first.
func CLAHE(b *raster.Buffer, clipLimit float64, grid int) *raster.Buffer {
	if b.Empty() {
		return raster.NewGray(0, 0)
	}
	src := b
	if src.Channels != 1 {
		src = src.Gray()
	}
	w, h := src.Width, src.Height
	tilesX := min(max(grid, 1), w)
	tilesY := min(max(grid, 1), h)

	luts := make([][histBins]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		y0, y1 := ty*h/tilesY, (ty+1)*h/tilesY
		for tx := 0; tx < tilesX; tx++ {
			x0, x1 := tx*w/tilesX, (tx+1)*w/tilesX
			luts[ty*tilesX+tx] = tileLUT(src, x0, y0, x1, y1, clipLimit)
		}
	}

	out := raster.NewGray(w, h)
	for y := 0; y < h; y++ {
		tyf := (float64(y)+0.5)/float64(h)*float64(tilesY) - 0.5
		ty1 := int(math.Floor(tyf))
		ya := tyf - float64(ty1)
		ty2 := min(ty1+1, tilesY-1)
		ty1 = max(ty1, 0)

		for x := 0; x < w; x++ {
			txf := (float64(x)+0.5)/float64(w)*float64(tilesX) - 0.5
			tx1 := int(math.Floor(txf))
			xa := txf - float64(tx1)
			tx2 := min(tx1+1, tilesX-1)
			tx1 = max(tx1, 0)

			v := src.Pix[y*w+x]
			tl := float64(luts[ty1*tilesX+tx1][v])
			tr := float64(luts[ty1*tilesX+tx2][v])
			bl := float64(luts[ty2*tilesX+tx1][v])
			br := float64(luts[ty2*tilesX+tx2][v])

			top := tl*(1-xa) + tr*xa
			bottom := bl*(1-xa) + br*xa
			out.Pix[y*w+x] = clampByte(top*(1-ya) + bottom*ya)
		}
	}
	return out
}

// tileLUT builds the clipped-histogram equalization table for one tile.
func tileLUT(src *raster.Buffer, x0, y0, x1, y1 int, clipLimit float64) [histBins]uint8 {
	var hist [histBins]int
	for y := y0; y < y1; y++ {
		row := src.Pix[y*src.Width:]
		for x := x0; x < x1; x++ {
			hist[row[x]]++
		}
	}
	n := (x1 - x0) * (y1 - y0)

	var lut [histBins]uint8
	if n == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	if clipLimit > 0 {
		limit := max(int(clipLimit*float64(n)/histBins), 1)
		clipped := 0
		for i := range hist {
			if hist[i] > limit {
				clipped += hist[i] - limit
				hist[i] = limit
			}
		}

		batch := clipped / histBins
		residual := clipped - batch*histBins
		for i := range hist {
			hist[i] += batch
		}
		if residual > 0 {
			step := max(histBins/residual, 1)
			for i := 0; i < histBins && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	scale := 255.0 / float64(n)
	cdf := 0
	for i := range hist {
		cdf += hist[i]
		lut[i] = clampByte(math.Round(float64(cdf) * scale))
	}
	return lut
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
