// Package nutrition turns raw label text into structured, confidence-scored
// nutrient values. It tolerates recognition noise, matches keywords across
// several languages and reconciles units onto a canonical per-100g basis.
package nutrition

// Canonical nutrient keys shared with callers. Omitted keys mean "not found".
const (
	KeyEnergyKcal = "energy_kcal_per_100g"
	KeyProtein    = "protein_g_per_100g"
	KeyFat        = "fat_g_per_100g"
	KeyCarbs      = "carbs_g_per_100g"
	KeySugars     = "sugars_g_per_100g"
	KeySalt       = "salt_g_per_100g"
	KeyFiber      = "fiber_g_per_100g"
)

// RequiredKeys are the nutrients whose absence caps overall confidence,
// in reporting order.
var RequiredKeys = []string{KeyEnergyKcal, KeyProtein, KeyFat, KeyCarbs}

// OptionalKeys are the remaining canonical nutrients.
var OptionalKeys = []string{KeySugars, KeySalt, KeyFiber}

// NutrientValue is one accepted nutrient reading.
type NutrientValue struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	Confidence     float64 `json:"confidence"`
	MatchedPattern string  `json:"matched_pattern,omitempty"`
	SourceKey      string  `json:"source_key,omitempty"`
	// OriginalUnit and OriginalValue keep the pre-conversion reading when
	// the value was derived from another unit (kJ, sodium mg).
	OriginalUnit  string  `json:"original_unit,omitempty"`
	OriginalValue float64 `json:"original_value,omitempty"`
}

// ServingInfo describes the serving-size detection outcome.
type ServingInfo struct {
	Detected bool   `json:"detected"`
	Unit     string `json:"unit,omitempty"`
}

// ParsedNutritionSet is the parser's complete answer for one text.
type ParsedNutritionSet struct {
	Nutrients       map[string]NutrientValue `json:"nutrients"`
	ServingSize     string                   `json:"serving_size,omitempty"`
	ServingInfo     ServingInfo              `json:"serving_info"`
	MissingRequired []string                 `json:"missing_required"`
	Confidence      float64                  `json:"confidence"`
}

// Values flattens the set into canonical-key → numeric value.
func (s *ParsedNutritionSet) Values() map[string]float64 {
	out := make(map[string]float64, len(s.Nutrients))
	for k, v := range s.Nutrients {
		out[k] = v.Value
	}
	return out
}

// FoundKeys returns present canonical keys in stable reporting order.
func (s *ParsedNutritionSet) FoundKeys() []string {
	var keys []string
	for _, k := range append(append([]string{}, RequiredKeys...), OptionalKeys...) {
		if _, ok := s.Nutrients[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}
