package nutrition

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestMatchConfidence(t *testing.T) {
	p := DefaultScoringPolicy()

	tests := []struct {
		name    string
		match   string
		context string
		labeled bool
		want    float64
	}{
		{"bare number only", "120 x", "120 x", false, 0.5},
		{"unit token", "120 kcal", "120 kcal", false, 0.65},
		{"unit and boilerplate", "120 kcal", "per 100 g 120 kcal", false, 0.75},
		{"labeled full shape", "energy: 120 kcal", "energy: 120 kcal", true, 0.8},
		{"everything", "energy: 120 kcal", "nutrition facts energy: 120 kcal", true, 0.9},
		{"short match penalized", "5 g", "5 g", false, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, p.matchConfidence(tt.match, tt.context, tt.labeled), 1e-9)
		})
	}
}

func TestOverallConfidenceScenarios(t *testing.T) {
	p := DefaultScoringPolicy()
	long := "energy: 350 kcal protein: 12.5 g fat: 8.2 g carbohydrates: 60 g"

	// All required found with strong matches on decent text.
	c := p.overallConfidence(4, 0, 0.8, true, long)
	assert.Greater(t, c, 0.7)

	// Nothing found on short garbage.
	c = p.overallConfidence(0, 0, 0, false, "zzz")
	assert.Less(t, c, 0.3)

	// Optional nutrients lift the score.
	withOpt := p.overallConfidence(4, 3, 0.8, true, long)
	withoutOpt := p.overallConfidence(4, 0, 0.8, true, long)
	assert.Greater(t, withOpt, withoutOpt)
}

func TestOverallConfidenceBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)
	p := DefaultScoringPolicy()

	properties.Property("always within [0,1]", prop.ForAll(
		func(required, optional int, mean float64, text string) bool {
			c := p.overallConfidence(required%5, optional%4, mean, true, text)
			return c >= 0 && c <= 1
		},
		gen.IntRange(0, 4),
		gen.IntRange(0, 3),
		gen.Float64Range(0, 1),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
