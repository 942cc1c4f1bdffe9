package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngineID identifies the layout-oriented tesseract backend.
const TesseractEngineID = "tesseract"

// SegMode is a page-segmentation strategy for the layout-oriented engine.
type SegMode int

const (
	// SegUniformBlock assumes a single uniform block of text (PSM 6).
	SegUniformBlock SegMode = iota
	// SegSingleColumn assumes a single column of variable-size text (PSM 4).
	SegSingleColumn
	// SegAutoOSD runs full page segmentation with orientation and script
	// detection (PSM 1).
	SegAutoOSD
)

func (m SegMode) String() string {
	switch m {
	case SegUniformBlock:
		return "uniform-block"
	case SegSingleColumn:
		return "single-column"
	case SegAutoOSD:
		return "auto-osd"
	}
	return "unknown"
}

func (m SegMode) pageSegMode() gosseract.PageSegMode {
	switch m {
	case SegSingleColumn:
		return gosseract.PSM_SINGLE_COLUMN
	case SegAutoOSD:
		return gosseract.PSM_AUTO_OSD
	default:
		return gosseract.PSM_SINGLE_BLOCK
	}
}

// DefaultSegModes is the fixed priority order in which segmentation
// strategies are tried.
var DefaultSegModes = []SegMode{SegUniformBlock, SegSingleColumn, SegAutoOSD}

// TesseractConfig holds settings for the tesseract backend.
type TesseractConfig struct {
	// Languages are tesseract language codes, e.g. ["eng", "deu"].
	Languages []string `mapstructure:"languages" yaml:"languages" json:"languages"`
	// TessdataPrefix optionally overrides the traineddata directory.
	TessdataPrefix string `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix" json:"tessdata_prefix"`
	// SegModes overrides the strategy priority order when non-empty.
	SegModes []SegMode `mapstructure:"-" yaml:"-" json:"-"`
}

// DefaultTesseractConfig returns the default tesseract settings.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		Languages: []string{"eng", "deu"},
		SegModes:  DefaultSegModes,
	}
}

// segRunner executes one OCR pass with a given segmentation strategy.
// It exists so tests can substitute a fake without a tesseract install.
type segRunner interface {
	Run(imageRef string, mode SegMode) (text string, confidence float64, err error)
}

// TesseractEngine wraps tesseract via gosseract, trying several page
// segmentation strategies and keeping the most informative result.
type TesseractEngine struct {
	cfg    TesseractConfig
	runner segRunner
}

// NewTesseractEngine creates the layout-oriented engine.
func NewTesseractEngine(cfg TesseractConfig) *TesseractEngine {
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultTesseractConfig().Languages
	}
	if len(cfg.SegModes) == 0 {
		cfg.SegModes = DefaultSegModes
	}
	e := &TesseractEngine{cfg: cfg}
	e.runner = &gosseractRunner{cfg: cfg}
	return e
}

// ID implements Engine.
func (e *TesseractEngine) ID() string { return TesseractEngineID }

// Recognize tries each segmentation strategy in priority order. Per
// strategy the confidence is the mean of per-word confidences; the
// strategy maximizing len(text)*confidence wins. The loop stops at the
// first non-empty, nonzero-confidence result, which is an optimization
// only: the priority order places the most likely strategy first.
func (e *TesseractEngine) Recognize(imageRef string) (Outcome, error) {
	var (
		best      Outcome
		bestScore float64
		attempts  int
		lastErr   error
	)
	for _, mode := range e.cfg.SegModes {
		text, conf, err := e.runner.Run(imageRef, mode)
		if err != nil {
			slog.Debug("tesseract pass failed", "mode", mode.String(), "error", err)
			lastErr = err
			continue
		}
		attempts++
		trimmed := strings.TrimSpace(text)
		score := float64(len(trimmed)) * conf
		if score > bestScore {
			best = Outcome{EngineID: e.ID(), Text: text, Confidence: conf}
			bestScore = score
		}
		if trimmed != "" && conf > 0 {
			break
		}
	}
	if attempts == 0 {
		return Outcome{}, fmt.Errorf("all segmentation passes failed: %w", lastErr)
	}
	if best.EngineID == "" {
		best = Outcome{EngineID: e.ID()}
	}
	return best, nil
}

// gosseractRunner is the real tesseract-backed segRunner.
type gosseractRunner struct {
	cfg TesseractConfig
}

func (r *gosseractRunner) Run(imageRef string, mode SegMode) (string, float64, error) {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if r.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.cfg.TessdataPrefix); err != nil {
			return "", 0, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(r.cfg.Languages...); err != nil {
		return "", 0, fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetImage(imageRef); err != nil {
		return "", 0, fmt.Errorf("set image: %w", err)
	}
	if err := client.SetPageSegMode(mode.pageSegMode()); err != nil {
		return "", 0, fmt.Errorf("set page segmentation mode: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("recognize: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		// Text without word confidences is kept with zero confidence so
		// the selection loop can fall through to the next strategy.
		return text, 0, nil
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return text, sum / float64(len(boxes)), nil
}
