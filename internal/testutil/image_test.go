package testutil

import (
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLabelImage(t *testing.T) {
	img := GenerateLabelImage(DefaultLabelConfig())
	b := img.Bounds()
	assert.Equal(t, 640, b.Dx())
	assert.Equal(t, 480, b.Dy())

	// Some pixels must be dark (text) and most light (background).
	dark := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r < 0x4000 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 100)
	assert.Less(t, dark, b.Dx()*b.Dy()/4)
}

func TestGenerateLabelImageRotationAndNoise(t *testing.T) {
	cfg := DefaultLabelConfig()
	cfg.Rotation = 15
	cfg.Noise = 0.01
	img := GenerateLabelImage(cfg)
	// Rotation grows the canvas.
	assert.Greater(t, img.Bounds().Dx(), 640)
}

func TestWriteLabelImage(t *testing.T) {
	cfg := DefaultLabelConfig()
	cfg.Background = color.RGBA{240, 240, 240, 255}
	path := WriteLabelImage(t, cfg)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
