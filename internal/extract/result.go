// Package extract composes image normalization, text recognition and
// nutrient parsing into the top-level label extraction pipeline.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nutriscan/labelocr/internal/nutrition"
)

// Sources identify which path produced a result.
const (
	SourceLocal            = "local"
	SourceExternal         = "external"
	SourceExternalFallback = "external-fallback-to-local"
)

// ProcessingDetails carries per-stage diagnostics for one run.
type ProcessingDetails struct {
	OCRConfidence         float64  `json:"ocr_confidence"`
	ParsingConfidence     float64  `json:"parsing_confidence"`
	FoundNutrients        []string `json:"found_nutrients"`
	MissingRequired       []string `json:"missing_required"`
	ProcessingTimeSeconds float64  `json:"processing_time_seconds"`
	OCREngine             string   `json:"ocr_engine,omitempty"`
}

// Result is the externally visible record of one extraction run.
type Result struct {
	Source         string                `json:"source"`
	RawText        string                `json:"raw_text"`
	NormalizedText string                `json:"normalized_text"`
	NutritionData  map[string]float64    `json:"nutrition_data"`
	Confidence     float64               `json:"confidence"`
	ServingSize    string                `json:"serving_size,omitempty"`
	ServingInfo    nutrition.ServingInfo `json:"serving_info"`
	Details        ProcessingDetails     `json:"processing_details"`
	Error          string                `json:"error,omitempty"`
}

// failed builds a zero-confidence result carrying an error message.
func failed(source, msg string) *Result {
	return &Result{
		Source:        source,
		NutritionData: map[string]float64{},
		Details: ProcessingDetails{
			MissingRequired: append([]string{}, nutrition.RequiredKeys...),
		},
		Error: msg,
	}
}

// Trustworthy reports whether callers may treat the result as a reliable
// structured answer rather than an advisory estimate.
func (r *Result) Trustworthy() bool {
	return r.Error == "" && r.Confidence >= ConfidenceThreshold
}

// ToJSON renders the result as indented JSON.
func (r *Result) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

// ToPlainText renders a human-readable summary.
func (r *Result) ToPlainText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Source:     %s\n", r.Source)
	fmt.Fprintf(&sb, "Confidence: %.2f\n", r.Confidence)
	if r.Error != "" {
		fmt.Fprintf(&sb, "Error:      %s\n", r.Error)
		return sb.String()
	}
	if r.ServingSize != "" {
		fmt.Fprintf(&sb, "Serving:    %s\n", r.ServingSize)
	}
	keys := make([]string, 0, len(r.NutritionData))
	for k := range r.NutritionData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		sb.WriteString("Nutrients:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %-24s %g\n", k, r.NutritionData[k])
		}
	}
	if len(r.Details.MissingRequired) > 0 {
		fmt.Fprintf(&sb, "Missing required: %s\n", strings.Join(r.Details.MissingRequired, ", "))
	}
	return sb.String()
}
