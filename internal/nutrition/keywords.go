package nutrition

import "regexp"

// Internal nutrient keys used during matching, before canonical mapping.
const (
	srcEnergyKcal = "energy_kcal"
	srcEnergyKJ   = "energy_kj"
	srcProtein    = "protein"
	srcFat        = "fat"
	srcCarbs      = "carbs"
	srcSugars     = "sugars"
	srcSalt       = "salt"
	srcSodiumMg   = "sodium_mg"
	srcFiber      = "fiber"
)

// pattern is one registered way a nutrient appears in label text. Matching
// runs against normalized text, so expressions are lowercase and unaccented.
// Capture group 1 is always the numeric value.
type pattern struct {
	re *regexp.Regexp
	// labeled marks expressions anchored on an explicit nutrient keyword,
	// as opposed to bare number+unit fallbacks.
	labeled bool
}

// nutrientPatterns is the registry, in registration order. Order matters:
// ties in pattern confidence go to the earlier entry.
type nutrientEntry struct {
	key      string
	patterns []pattern
}

const num = `(\d+(?:\.\d+)?)`

func labeled(expr string) pattern {
	return pattern{re: regexp.MustCompile(expr), labeled: true}
}

func bare(expr string) pattern {
	return pattern{re: regexp.MustCompile(expr)}
}

// Covered languages: English, German, French, plus common Spanish synonyms.
var nutrientPatterns = []nutrientEntry{
	{srcEnergyKcal, []pattern{
		labeled(`\b(?:energy|energie|energia|brennwert|calories|valeur energetique)\b[^0-9]{0,40}` + num + `\s*kcal\b`),
		bare(num + `\s*kcal\b`),
	}},
	{srcEnergyKJ, []pattern{
		labeled(`\b(?:energy|energie|energia|brennwert|valeur energetique)\b[^0-9]{0,40}` + num + `\s*kj\b`),
		bare(num + `\s*kj\b`),
	}},
	{srcProtein, []pattern{
		labeled(`\b(?:proteins?|proteines?|proteinas?|eiweiss)\b[^0-9]{0,20}` + num + `\s*g?\b`),
	}},
	{srcFat, []pattern{
		labeled(`\b(?:total fat|fat|fett|matieres grasses|lipides|grasas)\b[^0-9]{0,20}` + num + `\s*g?\b`),
	}},
	{srcCarbs, []pattern{
		labeled(`\b(?:carbohydrates?|carbs?|kohlenhydrate|glucides|hidratos de carbono)\b[^0-9]{0,20}` + num + `\s*g?\b`),
	}},
	{srcSugars, []pattern{
		labeled(`\b(?:(?:of which |davon |dont )?sugars?|zucker|sucres?|azucares)\b[^0-9]{0,20}` + num + `\s*g?\b`),
	}},
	{srcSalt, []pattern{
		labeled(`\b(?:salt|salz|sel|sal)\b[^0-9]{0,15}` + num + `\s*g?\b`),
	}},
	{srcSodiumMg, []pattern{
		labeled(`\b(?:sodium|natrium)\b[^0-9]{0,15}` + num + `\s*mg\b`),
	}},
	{srcFiber, []pattern{
		labeled(`\b(?:fib(?:er|re)s?|dietary fib(?:er|re)|ballaststoffe|fibres(?: alimentaires)?|fibra)\b[^0-9]{0,20}` + num + `\s*g?\b`),
	}},
}

// valueRange is a plausibility window per 100g. Exclusive bounds guard the
// energies, where 0 or an absurd maximum always signals a misread.
type valueRange struct {
	min, max                 float64
	exclusiveLo, exclusiveHi bool
}

func (r valueRange) contains(v float64) bool {
	if r.exclusiveLo {
		if v <= r.min {
			return false
		}
	} else if v < r.min {
		return false
	}
	if r.exclusiveHi {
		if v >= r.max {
			return false
		}
	} else if v > r.max {
		return false
	}
	return true
}

// plausibleRanges is the primary defense against garbled-digit misreads.
var plausibleRanges = map[string]valueRange{
	srcEnergyKcal: {min: 1, max: 1000, exclusiveLo: true, exclusiveHi: true},
	srcEnergyKJ:   {min: 1, max: 4200, exclusiveLo: true, exclusiveHi: true},
	srcProtein:    {min: 0, max: 100},
	srcFat:        {min: 0, max: 100},
	srcCarbs:      {min: 0, max: 100},
	srcSugars:     {min: 0, max: 100},
	srcSalt:       {min: 0, max: 50},
	srcSodiumMg:   {min: 0, max: 5000},
	srcFiber:      {min: 0, max: 50},
}

// canonicalKeys maps internal matching keys to externally visible ones.
// Energy-kJ and sodium have no canonical key of their own: they only feed
// unit reconciliation.
var canonicalKeys = map[string]string{
	srcEnergyKcal: KeyEnergyKcal,
	srcProtein:    KeyProtein,
	srcFat:        KeyFat,
	srcCarbs:      KeyCarbs,
	srcSugars:     KeySugars,
	srcSalt:       KeySalt,
	srcFiber:      KeyFiber,
}

// unitRe detects an explicit unit token inside a match.
var unitRe = regexp.MustCompile(`(?:kcal|kj|mg|ml|g)\b`)

// boilerplateRe detects nutrition-label boilerplate in several languages.
var boilerplateRe = regexp.MustCompile(
	`per 100|pro 100|pour 100|por 100|je 100|100\s*(?:g|ml)\b` +
		`|nutrition(?:al)? (?:facts|information)|nahrwert|valeurs? nutritionnelles?|informacion nutricional` +
		`|average values|durchschnittlich`)

// labelShapeRe recognizes a complete "label: number" match shape.
var labelShapeRe = regexp.MustCompile(`^[a-z][a-z .]*:?\s*\d`)
