package extract

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/nutriscan/labelocr/internal/common"
	"github.com/nutriscan/labelocr/internal/nutrition"
)

// Confidence weights for blending the two stage scores. Parsing weighs
// heavier: once text exists at all, its interpretation decides usefulness.
const (
	ocrWeight     = 0.4
	parsingWeight = 0.6
)

// Run extracts nutrition facts from the image at ref. It never panics and
// never returns nil: every failure mode comes back as a zero-confidence
// Result with Error set.
func (p *Pipeline) Run(ref string) (res *Result) {
	timer := common.NewNamedTimer("extract")
	defer func() {
		if r := recover(); r != nil {
			slog.Error("extraction panicked", "image", ref, "panic", r)
			res = failed(SourceLocal, fmt.Sprintf("internal error: %v", r))
			scansTotal.WithLabelValues("error").Inc()
		}
		timer.Stop()
		res.Details.ProcessingTimeSeconds = timer.Seconds()
		scanDuration.Observe(res.Details.ProcessingTimeSeconds)
		scanConfidence.Observe(res.Confidence)
	}()

	processed := p.normalizer.Normalize(ref, p.cfg.Debug)
	defer func() {
		// The processed image is transient; keep it only in debug runs.
		// Normalization can fail soft and hand back the original ref, in
		// which case there is nothing of ours to delete.
		if p.cfg.Debug || processed == ref {
			return
		}
		if err := p.store.Remove(processed); err != nil {
			slog.Warn("failed to remove transient image", "ref", processed, "error", err)
		}
	}()

	outcome, err := p.orchestrator.Recognize(processed, p.cfg.Method)
	if err != nil {
		scansTotal.WithLabelValues("error").Inc()
		return failed(SourceLocal, err.Error())
	}
	if strings.TrimSpace(outcome.Text) == "" {
		scansTotal.WithLabelValues("no_text").Inc()
		return failed(SourceLocal, "No text extracted")
	}
	if outcome.EngineID != "" {
		engineSelectedTotal.WithLabelValues(outcome.EngineID).Inc()
	}

	set := p.parser.Parse(outcome.Text)
	nutrientsFound.Observe(float64(len(set.Nutrients)))
	scansTotal.WithLabelValues("ok").Inc()

	return &Result{
		Source:         SourceLocal,
		RawText:        outcome.Text,
		NormalizedText: nutrition.NormalizeText(outcome.Text),
		NutritionData:  set.Values(),
		Confidence:     combineConfidence(outcome.Confidence, set.Confidence),
		ServingSize:    set.ServingSize,
		ServingInfo:    set.ServingInfo,
		Details: ProcessingDetails{
			OCRConfidence:     outcome.Confidence,
			ParsingConfidence: set.Confidence,
			FoundNutrients:    set.FoundKeys(),
			MissingRequired:   set.MissingRequired,
			OCREngine:         outcome.EngineID,
		},
	}
}

// combineConfidence blends OCR and parsing confidence into the final
// score, rounded to two decimals.
func combineConfidence(ocr, parsing float64) float64 {
	c := ocrWeight*ocr + parsingWeight*parsing
	return math.Round(c*100) / 100
}
