// Package testutil generates synthetic nutrition-label images and small
// filesystem helpers for tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelConfig describes a synthetic label image.
type LabelConfig struct {
	Lines      []string
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
	FontFace   font.Face
	Rotation   float64 // degrees
	Noise      float64 // fraction of pixels to flip, [0,1]
}

// DefaultLabelConfig returns a plain English label rendering.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{
		Lines: []string{
			"Nutrition Facts per 100 g",
			"Energy: 350 kcal",
			"Protein: 12.5 g",
			"Fat: 8.2 g",
			"Carbohydrates: 60 g",
		},
		Width:      640,
		Height:     480,
		Background: color.White,
		Foreground: color.Black,
		FontFace:   basicfont.Face7x13,
	}
}

// GenerateLabelImage renders the configured lines onto a label-like image.
func GenerateLabelImage(cfg LabelConfig) image.Image {
	if cfg.FontFace == nil {
		cfg.FontFace = basicfont.Face7x13
	}
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{cfg.Foreground},
		Face: cfg.FontFace,
	}
	lineHeight := cfg.FontFace.Metrics().Height.Ceil() + 6
	startY := (cfg.Height - len(cfg.Lines)*lineHeight) / 2
	if startY < lineHeight {
		startY = lineHeight
	}
	for i, line := range cfg.Lines {
		drawer.Dot = fixed.P(20, startY+i*lineHeight)
		drawer.DrawString(line)
	}

	var out image.Image = img
	if cfg.Noise > 0 {
		out = addNoise(img, cfg.Noise)
	}
	if cfg.Rotation != 0 {
		out = imaging.Rotate(out, cfg.Rotation, cfg.Background)
	}
	return out
}

// WriteLabelImage renders and saves a label to a temp file, returning its path.
func WriteLabelImage(t *testing.T, cfg LabelConfig) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "label.png")
	require.NoError(t, imaging.Save(GenerateLabelImage(cfg), path))
	return path
}

// addNoise flips random pixels to simulate sensor noise. Deterministic
// seed keeps renders reproducible across runs.
func addNoise(img *image.RGBA, level float64) *image.RGBA {
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // reproducible test noise
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	n := int(level * float64(b.Dx()*b.Dy()))
	for i := 0; i < n; i++ {
		x := b.Min.X + rng.Intn(b.Dx())
		y := b.Min.Y + rng.Intn(b.Dy())
		v := uint8(rng.Intn(256))
		out.SetRGBA(x, y, color.RGBA{v, v, v, 255})
	}
	return out
}
