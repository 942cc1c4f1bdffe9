// Package engine provides pluggable text-recognition backends behind a
// uniform contract and an orchestrator that selects the best outcome
// across them.
package engine

// Outcome is the uniform result of one recognition attempt.
type Outcome struct {
	EngineID   string  `json:"engine_id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Engine turns a pixel image into raw text plus a confidence estimate.
// Implementations are stateless from the caller's perspective: they may be
// constructed once and reused, but must not cache per-call data.
type Engine interface {
	ID() string
	Recognize(imageRef string) (Outcome, error)
}
