package engine

import (
	"image"

	"github.com/disintegration/imaging"
)

// lineBand is a horizontal band of the image believed to contain one text line.
type lineBand struct {
	Top, Bottom int
}

// splitTextLines locates text-line bands via a horizontal ink projection:
// rows whose mean darkness exceeds a fraction of the page's overall darkness
// are text rows, and consecutive runs form one band. It assumes dark text on
// a light background, which the normalization pipeline guarantees.
func splitTextLines(img image.Image, minHeight int) []lineBand {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	if minHeight < 2 {
		minHeight = 2
	}

	// Per-row ink: mean darkness in [0,1].
	ink := make([]float64, h)
	var total float64
	for y := 0; y < h; y++ {
		var rowSum float64
		for x := 0; x < w; x++ {
			rowSum += float64(255 - gray.NRGBAAt(x, y).R)
		}
		ink[y] = rowSum / float64(w) / 255.0
		total += ink[y]
	}
	mean := total / float64(h)
	threshold := mean * 0.5
	if threshold < 0.01 {
		threshold = 0.01
	}

	var bands []lineBand
	start := -1
	for y := 0; y < h; y++ {
		if ink[y] >= threshold {
			if start < 0 {
				start = y
			}
			continue
		}
		if start >= 0 {
			if y-start >= minHeight {
				bands = append(bands, lineBand{Top: start, Bottom: y})
			}
			start = -1
		}
	}
	if start >= 0 && h-start >= minHeight {
		bands = append(bands, lineBand{Top: start, Bottom: h})
	}
	return bands
}

// cropBand extracts one line band with a small vertical margin.
func cropBand(img image.Image, band lineBand, margin int) image.Image {
	b := img.Bounds()
	top := band.Top - margin
	if top < 0 {
		top = 0
	}
	bottom := band.Bottom + margin
	if bottom > b.Dy() {
		bottom = b.Dy()
	}
	rect := image.Rect(b.Min.X, b.Min.Y+top, b.Max.X, b.Min.Y+bottom)
	return imaging.Crop(img, rect)
}
