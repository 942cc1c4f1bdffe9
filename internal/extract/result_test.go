package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultToJSON(t *testing.T) {
	res := &Result{
		Source:        SourceLocal,
		RawText:       "Energy: 350 kcal",
		NutritionData: map[string]float64{"energy_kcal_per_100g": 350},
		Confidence:    0.82,
		Details: ProcessingDetails{
			OCRConfidence:     0.9,
			ParsingConfidence: 0.74,
			FoundNutrients:    []string{"energy_kcal_per_100g"},
		},
	}

	out, err := res.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "local", decoded["source"])
	assert.InDelta(t, 0.82, decoded["confidence"].(float64), 1e-9)
	details, ok := decoded["processing_details"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.9, details["ocr_confidence"].(float64), 1e-9)
}

func TestResultToPlainText(t *testing.T) {
	res := &Result{
		Source:        SourceLocal,
		Confidence:    0.82,
		ServingSize:   "30 g",
		NutritionData: map[string]float64{"energy_kcal_per_100g": 350, "protein_g_per_100g": 12.5},
		Details:       ProcessingDetails{MissingRequired: []string{"fat_g_per_100g"}},
	}

	out := res.ToPlainText()
	assert.Contains(t, out, "Source:     local")
	assert.Contains(t, out, "Confidence: 0.82")
	assert.Contains(t, out, "Serving:    30 g")
	assert.Contains(t, out, "energy_kcal_per_100g")
	assert.Contains(t, out, "Missing required: fat_g_per_100g")
}

func TestResultToPlainTextError(t *testing.T) {
	res := failed(SourceLocal, "No text extracted")
	out := res.ToPlainText()
	assert.Contains(t, out, "Error:      No text extracted")
	assert.NotContains(t, out, "Nutrients:")
}

func TestTrustworthy(t *testing.T) {
	assert.True(t, (&Result{Confidence: 0.7}).Trustworthy())
	assert.False(t, (&Result{Confidence: 0.69}).Trustworthy())
	assert.False(t, (&Result{Confidence: 0.9, Error: "boom"}).Trustworthy())
}
