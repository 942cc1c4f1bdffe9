package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriscan/labelocr/internal/storage"
)

func writeTestPhoto(t *testing.T, dir string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, imaging.Save(gradientImage(w, h), path))
	return path
}

func newTestNormalizer(t *testing.T) (*Normalizer, *storage.DiskStore) {
	t.Helper()
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	return New(DefaultConfig(), store), store
}

func TestNormalizeProducesProcessedCopy(t *testing.T) {
	n, store := newTestNormalizer(t)
	in := writeTestPhoto(t, t.TempDir(), 400, 300)

	out := n.Normalize(in, false)
	require.NotEqual(t, in, out)

	img, err := store.ReadImage(out)
	require.NoError(t, err)
	// 400px wide input is below the upscale threshold; the long edge
	// must reach the configured target.
	assert.GreaterOrEqual(t, img.Bounds().Dx(), 1000)
}

func TestNormalizeSkipsUpscaleForLargeImages(t *testing.T) {
	n, store := newTestNormalizer(t)
	in := writeTestPhoto(t, t.TempDir(), 1200, 900)

	out := n.Normalize(in, false)
	img, err := store.ReadImage(out)
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
}

func TestNormalizeFailsSoftOnUndecodableInput(t *testing.T) {
	n, _ := newTestNormalizer(t)
	bad := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o600))

	out := n.Normalize(bad, false)
	assert.Equal(t, bad, out, "undecodable input must pass through unchanged")
}

func TestNormalizeFailsSoftOnMissingInput(t *testing.T) {
	n, _ := newTestNormalizer(t)
	missing := filepath.Join(t.TempDir(), "nope.jpg")

	out := n.Normalize(missing, false)
	assert.Equal(t, missing, out)
}

func TestNormalizeDebugPersistsIntermediateStages(t *testing.T) {
	n, store := newTestNormalizer(t)
	in := writeTestPhoto(t, t.TempDir(), 200, 150)

	_ = n.Normalize(in, true)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	// Eight debug stages plus the final processed image.
	assert.GreaterOrEqual(t, len(entries), 9)
}

func TestNormalizeDefaultDoesNotPersistIntermediates(t *testing.T) {
	n, store := newTestNormalizer(t)
	in := writeTestPhoto(t, t.TempDir(), 200, 150)

	_ = n.Normalize(in, false)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNormalizeOutputIsBinarized(t *testing.T) {
	n, store := newTestNormalizer(t)
	in := writeTestPhoto(t, t.TempDir(), 300, 200)

	out := n.Normalize(in, false)
	img, err := store.ReadImage(out)
	require.NoError(t, err)

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 7 {
		for x := b.Min.X; x < b.Max.X; x += 7 {
			r, _, _, _ := img.At(x, y).RGBA()
			v := int(r >> 8)
			near := v <= 16 || v >= 239
			assert.True(t, near, "pixel (%d,%d)=%d should be near black or white", x, y, v)
		}
	}
}
