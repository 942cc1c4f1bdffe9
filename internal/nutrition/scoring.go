package nutrition

import "math"

// ScoringPolicy gathers every confidence weight in one tunable place.
// Pattern-level terms score a single regex match; the overall terms blend
// per-nutrient evidence into the set-level confidence.
type ScoringPolicy struct {
	// Per-match scoring.
	PatternBase      float64 // starting confidence for any match
	UnitBonus        float64 // explicit unit token present in the match
	ContextBonus     float64 // label boilerplate near the match
	LabelShapeBonus  float64 // match reads as a complete "label: number"
	ShortPenalty     float64 // match shorter than ShortMatchLength
	ShortMatchLength int

	// Overall confidence weights.
	RequiredWeight     float64 // share for required-nutrient completeness
	PatternWeight      float64 // share for mean pattern confidence
	QualityWeight      float64 // share for the text-quality term
	OptionalBonus      float64 // maximum bonus for optional nutrients
	DefaultPatternMean float64 // mean pattern confidence with no matches

	// Text-quality term.
	QualityBase         float64
	QualityContextBonus float64
	QualityShortPenalty float64
	MinTextLength       int
}

// DefaultScoringPolicy returns the tuned weights.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		PatternBase:      0.50,
		UnitBonus:        0.15,
		ContextBonus:     0.10,
		LabelShapeBonus:  0.15,
		ShortPenalty:     0.15,
		ShortMatchLength: 5,

		RequiredWeight:     0.40,
		PatternWeight:      0.30,
		QualityWeight:      0.20,
		OptionalBonus:      0.20,
		DefaultPatternMean: 0.50,

		QualityBase:         0.50,
		QualityContextBonus: 0.20,
		QualityShortPenalty: 0.20,
		MinTextLength:       50,
	}
}

// matchConfidence scores one regex match. match is the full matched text,
// context a window of surrounding normalized text.
func (p ScoringPolicy) matchConfidence(match, context string, labeled bool) float64 {
	c := p.PatternBase
	if unitRe.MatchString(match) {
		c += p.UnitBonus
	}
	if boilerplateRe.MatchString(context) {
		c += p.ContextBonus
	}
	if len(match) < p.ShortMatchLength {
		c -= p.ShortPenalty
	}
	if labeled && labelShapeRe.MatchString(match) {
		c += p.LabelShapeBonus
	}
	return clamp01(c)
}

// overallConfidence blends completeness, match quality and text quality.
func (p ScoringPolicy) overallConfidence(requiredFound, optionalFound int, meanPattern float64, hasMatches bool, text string) float64 {
	required := float64(requiredFound) / float64(len(RequiredKeys))

	mean := p.DefaultPatternMean
	if hasMatches {
		mean = meanPattern
	}

	quality := p.QualityBase
	if boilerplateRe.MatchString(text) {
		quality += p.QualityContextBonus
	}
	if len(text) < p.MinTextLength {
		quality -= p.QualityShortPenalty
	}

	optional := float64(optionalFound) / float64(len(OptionalKeys))
	if optional > 1 {
		optional = 1
	}

	c := p.RequiredWeight*required +
		p.PatternWeight*mean +
		p.QualityWeight*quality +
		p.OptionalBonus*optional
	return round2(clamp01(c))
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
