package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractServing(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		wantUnit string
	}{
		{"explicit serving size", "serving size: 30 g per container 4", "30 g", "g"},
		{"german portion", "portionsgrosse: 25 g", "25 g", "g"},
		{"portion phrase", "portion: 250 ml", "250 ml", "ml"},
		{"per amount", "nahrwerte pro 100 g fett 3.4 g", "100 g", "g"},
		{"french pour", "valeurs nutritionnelles pour 100 ml", "100 ml", "ml"},
		{"amount without unit", "serving size: 2", "2", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, info := extractServing(tt.text)
			assert.Equal(t, tt.want, got)
			assert.True(t, info.Detected)
			assert.Equal(t, tt.wantUnit, info.Unit)
		})
	}
}

func TestExtractServingFallbackNeedsLabelContext(t *testing.T) {
	// A bare amount in unrelated text is not a serving.
	got, info := extractServing("the parcel weighs 250 g and ships monday")
	assert.Empty(t, got)
	assert.False(t, info.Detected)

	// The same amount next to label boilerplate is.
	got, info = extractServing("nutrition facts 250 g energy 100 kcal")
	assert.Equal(t, "250 g", got)
	assert.True(t, info.Detected)
	assert.Equal(t, "g", info.Unit)
}

func TestExtractServingNothingFound(t *testing.T) {
	got, info := extractServing("energy 100 kcal protein 5 g")
	assert.Empty(t, got)
	assert.False(t, info.Detected)
}
