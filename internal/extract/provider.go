package extract

import "log/slog"

// ConfidenceThreshold separates trustworthy results from advisory ones.
// Below it, callers should consider escalating to an external provider.
const ConfidenceThreshold = 0.7

// Provider is the contract for a higher-accuracy third-party recognition
// service. Implementations live outside this module; the pipeline only
// defines the shape and the two composition patterns below.
type Provider interface {
	RecognizeAndParse(imageRef string) (*Result, error)
}

// ExternalFirst calls the provider and falls back to the local pipeline
// when the provider errors or reports zero confidence.
func ExternalFirst(provider Provider, pipeline *Pipeline, imageRef string) *Result {
	res, err := provider.RecognizeAndParse(imageRef)
	if err == nil && res != nil && res.Confidence > 0 {
		res.Source = SourceExternal
		return res
	}
	if err != nil {
		slog.Warn("external provider failed, falling back to local pipeline", "error", err)
	}
	local := pipeline.Run(imageRef)
	local.Source = SourceExternalFallback
	return local
}

// RunWithEscalation runs the local pipeline and reports whether the caller
// should offer the external provider as a next step. The provider is never
// invoked automatically.
func RunWithEscalation(pipeline *Pipeline, imageRef string) (*Result, bool) {
	res := pipeline.Run(imageRef)
	return res, res.Confidence < ConfidenceThreshold
}
