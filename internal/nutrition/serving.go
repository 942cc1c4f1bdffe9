package nutrition

import (
	"regexp"
	"strings"
)

// servingPatterns is tried in priority order; explicit phrases win over the
// bare amount fallback.
const servingAmount = `(\d+(?:\.\d+)?\s*(?:g|ml|oz|pieces?|stuck)?)`

var servingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`serving size\s*:?\s*` + servingAmount),
	regexp.MustCompile(`portionsgr(?:o|oe)sse\s*:?\s*` + servingAmount),
	regexp.MustCompile(`\bportions?\s*:?\s*` + servingAmount),
	regexp.MustCompile(`\b(?:per|pro|pour|por|je)\s+(\d+(?:\.\d+)?\s*(?:g|ml))\b`),
}

// bareServingRe is the fallback: any amount with a mass or volume unit.
var bareServingRe = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(g|ml)\b`)

var servingUnitRe = regexp.MustCompile(`\b(g|ml|oz|piece|pieces|stuck)\b`)

// extractServing finds a serving-size mention in normalized text. The
// fallback only fires when the text looks like a nutrition label at all,
// so an arbitrary "5 g" in unrelated text is not promoted to a serving.
func extractServing(text string) (string, ServingInfo) {
	for _, re := range servingPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			detected := strings.TrimSpace(m[1])
			if detected == "" {
				continue
			}
			return detected, ServingInfo{Detected: true, Unit: servingUnit(detected)}
		}
	}
	if boilerplateRe.MatchString(text) {
		if m := bareServingRe.FindStringSubmatch(text); m != nil {
			detected := strings.TrimSpace(m[0])
			return detected, ServingInfo{Detected: true, Unit: m[2]}
		}
	}
	return "", ServingInfo{}
}

func servingUnit(s string) string {
	if m := servingUnitRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
