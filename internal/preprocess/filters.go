package preprocess

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// grayAt returns the 8-bit luminance of a pixel. Inputs are grayscale
// images, so the red channel is a valid brightness proxy.
func grayAt(img image.Image, x, y int) uint8 {
	r, _, _, _ := img.At(x, y).RGBA()
	return uint8(r >> 8)
}

// equalizeLocalContrast applies tile-based adaptive histogram equalization
// with a clip limit (CLAHE). Each tile gets its own clipped equalization
// lookup table; per-pixel values are bilinearly interpolated between the
// four surrounding tile tables to avoid visible tile seams.
func equalizeLocalContrast(img image.Image, tiles int, clipLimit float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if tiles < 2 {
		tiles = 2
	}
	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles
	if tileW < 1 || tileH < 1 {
		return imaging.Clone(img)
	}

	luts := make([][256]uint8, tiles*tiles)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			x0 := tx * tileW
			y0 := ty * tileH
			x1 := minInt(x0+tileW, w)
			y1 := minInt(y0+tileH, h)
			luts[ty*tiles+tx] = buildClippedLUT(img, b, x0, y0, x1, y1, clipLimit)
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		// Continuous tile coordinates centered on tile midpoints.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := clampInt(ty0+1, 0, tiles-1)
		ty0 = clampInt(ty0, 0, tiles-1)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := clampInt(tx0+1, 0, tiles-1)
			tx0 = clampInt(tx0, 0, tiles-1)

			v := grayAt(img, b.Min.X+x, b.Min.Y+y)
			v00 := float64(luts[ty0*tiles+tx0][v])
			v01 := float64(luts[ty0*tiles+tx1][v])
			v10 := float64(luts[ty1*tiles+tx0][v])
			v11 := float64(luts[ty1*tiles+tx1][v])
			top := v00*(1-wx) + v01*wx
			bottom := v10*(1-wx) + v11*wx
			g := uint8(math.Round(top*(1-wy) + bottom*wy))
			out.Set(x, y, color.NRGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return out
}

// buildClippedLUT computes the clipped-equalization lookup table for one tile.
func buildClippedLUT(img image.Image, b image.Rectangle, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[grayAt(img, b.Min.X+x, b.Min.Y+y)]++
			n++
		}
	}
	var lut [256]uint8
	if n == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	// Clip histogram peaks and spread the excess uniformly, which limits
	// the noise amplification of plain histogram equalization.
	limit := int(clipLimit * float64(n) / 256.0)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	share := excess / 256
	for i := range hist {
		hist[i] += share
	}

	cum := 0
	for i := range hist {
		cum += hist[i]
		lut[i] = uint8(math.Round(float64(cum) / float64(n) * 255.0))
	}
	return lut
}

// bilateralFilter smooths sensor noise while preserving character edges by
// weighting neighbors with both spatial and intensity Gaussians.
func bilateralFilter(img image.Image, radius int, sigmaSpace, sigmaColor float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if radius < 1 {
		return imaging.Clone(img)
	}

	size := 2*radius + 1
	spatial := make([]float64, size*size)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*size+(dx+radius)] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}
	var colorW [256]float64
	for i := range colorW {
		colorW[i] = math.Exp(-float64(i*i) / (2 * sigmaColor * sigmaColor))
	}

	src := imaging.Clone(img)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := src.NRGBAAt(x, y).R
			var sum, weight float64
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					v := src.NRGBAAt(nx, ny).R
					diff := int(v) - int(center)
					if diff < 0 {
						diff = -diff
					}
					wgt := spatial[(dy+radius)*size+(dx+radius)] * colorW[diff]
					sum += wgt * float64(v)
					weight += wgt
				}
			}
			g := uint8(math.Round(sum / weight))
			out.Set(x, y, color.NRGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return out
}

// adaptiveBinarize thresholds each pixel against the mean of its local
// window (integral-image accelerated). Local thresholding keeps text legible
// under the uneven lighting typical of label photos.
func adaptiveBinarize(img image.Image, window, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	half := window / 2

	// Summed-area table over luminance.
	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			rowSum += int(grayAt(img, b.Min.X+x, b.Min.Y+y))
			idx := y*w + x
			if y == 0 {
				ints[idx] = rowSum
			} else {
				ints[idx] = ints[(y-1)*w+x] + rowSum
			}
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := maxInt(x-half, 0), maxInt(y-half, 0)
			x1, y1 := minInt(x+half, w-1), minInt(y+half, h-1)
			area := (x1 - x0 + 1) * (y1 - y0 + 1)
			sum := ints[y1*w+x1]
			if x0 > 0 {
				sum -= ints[y1*w+x0-1]
			}
			if y0 > 0 {
				sum -= ints[(y0-1)*w+x1]
			}
			if x0 > 0 && y0 > 0 {
				sum += ints[(y0-1)*w+x0-1]
			}
			mean := sum / area
			th := mean - bias
			if th < 0 {
				th = 0
			}
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if int(grayAt(img, b.Min.X+x, b.Min.Y+y)) < th {
				c = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
			}
			out.Set(x, y, c)
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
