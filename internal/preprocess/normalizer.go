// Package preprocess turns arbitrary label photographs into binarized,
// upscaled, denoised images that recognition backends can read reliably.
package preprocess

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/nutriscan/labelocr/internal/storage"
)

// ProcessingError wraps a failure in a named normalization stage.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("preprocess error in %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Config holds tuning parameters for the normalization pipeline.
type Config struct {
	// MinWidth triggers upscaling: images narrower than this are resized
	// so their long edge reaches TargetLongEdge.
	MinWidth       int     `mapstructure:"min_width" yaml:"min_width" json:"min_width"`
	TargetLongEdge int     `mapstructure:"target_long_edge" yaml:"target_long_edge" json:"target_long_edge"`
	ContrastTiles  int     `mapstructure:"contrast_tiles" yaml:"contrast_tiles" json:"contrast_tiles"`
	ContrastClip   float64 `mapstructure:"contrast_clip" yaml:"contrast_clip" json:"contrast_clip"`
	DenoiseRadius  int     `mapstructure:"denoise_radius" yaml:"denoise_radius" json:"denoise_radius"`
	DenoiseSigmaS  float64 `mapstructure:"denoise_sigma_space" yaml:"denoise_sigma_space" json:"denoise_sigma_space"`
	DenoiseSigmaC  float64 `mapstructure:"denoise_sigma_color" yaml:"denoise_sigma_color" json:"denoise_sigma_color"`
	SharpenSigma   float64 `mapstructure:"sharpen_sigma" yaml:"sharpen_sigma" json:"sharpen_sigma"`
	BinarizeWindow int     `mapstructure:"binarize_window" yaml:"binarize_window" json:"binarize_window"`
	BinarizeBias   int     `mapstructure:"binarize_bias" yaml:"binarize_bias" json:"binarize_bias"`
	MorphRadius    float64 `mapstructure:"morph_radius" yaml:"morph_radius" json:"morph_radius"`
	MedianSize     float64 `mapstructure:"median_size" yaml:"median_size" json:"median_size"`
}

// DefaultConfig returns the default normalization parameters.
func DefaultConfig() Config {
	return Config{
		MinWidth:       1000,
		TargetLongEdge: 1000,
		ContrastTiles:  8,
		ContrastClip:   2.0,
		DenoiseRadius:  2,
		DenoiseSigmaS:  2.0,
		DenoiseSigmaC:  25.0,
		SharpenSigma:   1.0,
		BinarizeWindow: 25,
		BinarizeBias:   10,
		MorphRadius:    1.0,
		MedianSize:     3.0,
	}
}

// Normalizer runs the deterministic image normalization pipeline and
// persists the result through a transient store.
type Normalizer struct {
	cfg   Config
	store storage.Store
}

// New creates a Normalizer writing processed images to store.
func New(cfg Config, store storage.Store) *Normalizer {
	return &Normalizer{cfg: cfg, store: store}
}

// Normalize processes the image at ref and returns the reference of the
// processed copy. It fails soft: if the input cannot be decoded or the
// processed image cannot be persisted, the original reference is returned
// unchanged so recognition can still be attempted on the raw image.
// With debug enabled every intermediate stage is persisted as well.
func (n *Normalizer) Normalize(ref string, debug bool) string {
	img, err := imaging.Open(ref)
	if err != nil {
		perr := &ProcessingError{Stage: "decode", Err: err}
		slog.Warn("normalize: passing original through", "ref", ref, "error", perr)
		return ref
	}

	stem := storage.Stem(ref)
	dump := func(stage string, img image.Image) {
		if !debug {
			return
		}
		if _, err := n.store.WriteImage(stem+"-"+stage, img); err != nil {
			slog.Debug("normalize: debug dump failed", "stage", stage, "error", err)
		}
	}

	gray := imaging.Grayscale(img)
	dump("01-gray", gray)

	upscaled := n.upscale(gray)
	dump("02-upscale", upscaled)

	contrasted := equalizeLocalContrast(upscaled, n.cfg.ContrastTiles, n.cfg.ContrastClip)
	dump("03-contrast", contrasted)

	denoised := bilateralFilter(contrasted, n.cfg.DenoiseRadius, n.cfg.DenoiseSigmaS, n.cfg.DenoiseSigmaC)
	dump("04-denoise", denoised)

	sharpened := imaging.Sharpen(denoised, n.cfg.SharpenSigma)
	dump("05-sharpen", sharpened)

	binary := adaptiveBinarize(sharpened, n.cfg.BinarizeWindow, n.cfg.BinarizeBias)
	dump("06-binary", binary)

	// Strokes are dark on white, so closing dark regions is a brightness
	// erode followed by dilate; opening is the reverse.
	closed := effect.Dilate(effect.Erode(binary, n.cfg.MorphRadius), n.cfg.MorphRadius)
	opened := effect.Erode(effect.Dilate(closed, n.cfg.MorphRadius), n.cfg.MorphRadius)
	dump("07-morph", opened)

	final := effect.Median(opened, n.cfg.MedianSize)
	dump("08-median", final)

	out, err := n.store.WriteImage(stem+"-processed", final)
	if err != nil {
		perr := &ProcessingError{Stage: "persist", Err: err}
		slog.Warn("normalize: passing original through", "ref", ref, "error", perr)
		return ref
	}
	return out
}

// upscale resizes images narrower than MinWidth so the long edge reaches
// TargetLongEdge, using Catmull-Rom interpolation to keep glyph edges clean.
func (n *Normalizer) upscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= n.cfg.MinWidth || w == 0 || h == 0 {
		return img
	}
	if w >= h {
		return imaging.Resize(img, n.cfg.TargetLongEdge, 0, imaging.CatmullRom)
	}
	return imaging.Resize(img, 0, n.cfg.TargetLongEdge, imaging.CatmullRom)
}
