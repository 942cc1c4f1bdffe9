package engine

import (
	"fmt"
	"log/slog"
	"strings"
)

// MethodAuto runs every registered engine and keeps the highest-confidence
// non-empty outcome.
const MethodAuto = "auto"

// Orchestrator routes recognition requests to one engine or races all of
// them and keeps the best result.
type Orchestrator struct {
	engines []Engine
}

// NewOrchestrator creates an orchestrator over the given engines. The order
// matters only for error reporting; selection is purely by confidence.
func NewOrchestrator(engines ...Engine) *Orchestrator {
	return &Orchestrator{engines: engines}
}

// Engines returns the registered engine IDs.
func (o *Orchestrator) Engines() []string {
	ids := make([]string, 0, len(o.engines))
	for _, e := range o.engines {
		ids = append(ids, e.ID())
	}
	return ids
}

// Recognize runs the named engine, or with MethodAuto all engines, and
// returns the winning outcome. A single-engine failure and the all-engines-
// failed case both surface as an empty outcome rather than an error: the
// caller treats empty text as "nothing extracted".
func (o *Orchestrator) Recognize(imageRef, method string) (Outcome, error) {
	if method == "" {
		method = MethodAuto
	}
	if method != MethodAuto {
		return o.recognizeSingle(imageRef, method)
	}

	var best Outcome
	found := false
	for _, e := range o.engines {
		out, err := e.Recognize(imageRef)
		if err != nil {
			slog.Warn("engine failed, excluding from selection",
				"engine", e.ID(), "error", err)
			continue
		}
		if strings.TrimSpace(out.Text) == "" {
			slog.Debug("engine returned no text", "engine", e.ID())
			continue
		}
		if !found || out.Confidence > best.Confidence {
			best = out
			found = true
		}
	}
	if !found {
		return Outcome{}, nil
	}
	slog.Debug("selected recognition outcome",
		"engine", best.EngineID, "confidence", best.Confidence, "chars", len(best.Text))
	return best, nil
}

func (o *Orchestrator) recognizeSingle(imageRef, method string) (Outcome, error) {
	for _, e := range o.engines {
		if e.ID() != method {
			continue
		}
		out, err := e.Recognize(imageRef)
		if err != nil {
			slog.Warn("engine failed", "engine", method, "error", err)
			return Outcome{}, nil
		}
		return out, nil
	}
	return Outcome{}, fmt.Errorf("unknown recognition method %q (have %v)", method, o.Engines())
}
