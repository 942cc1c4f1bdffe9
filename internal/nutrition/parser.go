package nutrition

import (
	"strconv"
	"strings"
)

// contextWindow is how far around a match boilerplate detection looks.
const contextWindow = 60

// Parser extracts nutrient values from recognized label text.
// The zero value is not usable; construct with NewParser.
type Parser struct {
	policy ScoringPolicy
}

// NewParser creates a parser with the default scoring policy.
func NewParser() *Parser {
	return NewParserWithPolicy(DefaultScoringPolicy())
}

// NewParserWithPolicy creates a parser with custom confidence weights.
func NewParserWithPolicy(policy ScoringPolicy) *Parser {
	return &Parser{policy: policy}
}

// Parse turns raw recognized text into a structured nutrient set. It never
// fails: empty or garbage input yields an empty, zero-confidence set.
func (p *Parser) Parse(raw string) ParsedNutritionSet {
	set := ParsedNutritionSet{
		Nutrients:       map[string]NutrientValue{},
		MissingRequired: append([]string{}, RequiredKeys...),
	}
	if strings.TrimSpace(raw) == "" {
		return set
	}

	text := NormalizeText(raw)
	set.ServingSize, set.ServingInfo = extractServing(text)

	matches := p.matchNutrients(text)
	p.reconcileUnits(matches)

	for src, v := range matches {
		key, ok := canonicalKeys[src]
		if !ok {
			continue
		}
		v.Name = key
		set.Nutrients[key] = v
	}

	set.MissingRequired = set.MissingRequired[:0]
	for _, key := range RequiredKeys {
		if _, ok := set.Nutrients[key]; !ok {
			set.MissingRequired = append(set.MissingRequired, key)
		}
	}

	requiredFound := len(RequiredKeys) - len(set.MissingRequired)
	optionalFound := 0
	for _, key := range OptionalKeys {
		if _, ok := set.Nutrients[key]; ok {
			optionalFound++
		}
	}
	var sum float64
	for _, v := range set.Nutrients {
		sum += v.Confidence
	}
	mean := 0.0
	if len(set.Nutrients) > 0 {
		mean = sum / float64(len(set.Nutrients))
	}
	set.Confidence = p.policy.overallConfidence(
		requiredFound, optionalFound, mean, len(set.Nutrients) > 0, text)
	return set
}

// matchNutrients runs every registered pattern and keeps, per nutrient,
// the highest-confidence plausible match. A tie keeps the earlier match:
// registration order is the tie-break.
func (p *Parser) matchNutrients(text string) map[string]NutrientValue {
	found := map[string]NutrientValue{}
	for _, entry := range nutrientPatterns {
		for _, pat := range entry.patterns {
			for _, loc := range pat.re.FindAllStringSubmatchIndex(text, -1) {
				match := text[loc[0]:loc[1]]
				value, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64)
				if err != nil {
					continue
				}
				if !plausibleRanges[entry.key].contains(value) {
					continue
				}
				conf := p.policy.matchConfidence(match, contextAround(text, loc[0], loc[1]), pat.labeled)
				if prev, ok := found[entry.key]; ok && conf <= prev.Confidence {
					continue
				}
				found[entry.key] = NutrientValue{
					Value:          value,
					Unit:           defaultUnit(entry.key),
					Confidence:     conf,
					MatchedPattern: pat.re.String(),
					SourceKey:      entry.key,
				}
			}
		}
	}
	return found
}

// reconcileUnits folds kJ and sodium readings into their canonical
// counterparts when they are the better evidence.
func (p *Parser) reconcileUnits(found map[string]NutrientValue) {
	if kj, ok := found[srcEnergyKJ]; ok {
		kcal, exists := found[srcEnergyKcal]
		if !exists || kj.Confidence > kcal.Confidence {
			found[srcEnergyKcal] = NutrientValue{
				Value:          kJToKcal(kj.Value),
				Unit:           "kcal",
				Confidence:     kj.Confidence,
				MatchedPattern: kj.MatchedPattern,
				SourceKey:      srcEnergyKJ,
				OriginalUnit:   "kj",
				OriginalValue:  kj.Value,
			}
		}
	}
	if sodium, ok := found[srcSodiumMg]; ok {
		salt, exists := found[srcSalt]
		if !exists || sodium.Confidence > salt.Confidence {
			found[srcSalt] = NutrientValue{
				Value:          sodiumMgToSaltG(sodium.Value),
				Unit:           "g",
				Confidence:     sodium.Confidence,
				MatchedPattern: sodium.MatchedPattern,
				SourceKey:      srcSodiumMg,
				OriginalUnit:   "mg",
				OriginalValue:  sodium.Value,
			}
		}
	}
}

func defaultUnit(src string) string {
	switch src {
	case srcEnergyKcal:
		return "kcal"
	case srcEnergyKJ:
		return "kj"
	case srcSodiumMg:
		return "mg"
	default:
		return "g"
	}
}

func contextAround(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}
