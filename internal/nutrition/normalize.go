package nutrition

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// confusions maps letters tesseract habitually misreads for digits. Applied
// only inside numeric context, never across ordinary words.
var confusions = map[rune]rune{
	'o': '0',
	'l': '1',
	'i': '1',
	's': '5',
	'b': '8',
	'z': '2',
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText prepares raw recognized text for keyword matching:
// lowercase, accents folded, digit/letter confusions fixed in numeric
// contexts, decimal commas turned into dots, whitespace collapsed.
func NormalizeText(raw string) string {
	s := strings.ToLower(raw)
	if folded, _, err := transform.String(accentFolder, s); err == nil {
		s = folded
	}
	s = strings.ReplaceAll(s, "ß", "ss")
	s = fixNumericConfusions(s)
	s = normalizeDecimals(s)
	return strings.Join(strings.Fields(s), " ")
}

// fixNumericConfusions substitutes confusable letters for digits when the
// letter sits between two digits, or follows a digit and precedes a
// space, unit letter or end of text. "protein" stays intact; "25o kcal"
// becomes "250 kcal".
func fixNumericConfusions(s string) string {
	r := []rune(s)
	for i, c := range r {
		d, ok := confusions[c]
		if !ok {
			continue
		}
		prevDigit := i > 0 && unicode.IsDigit(r[i-1])
		nextDigit := i+1 < len(r) && unicode.IsDigit(r[i+1])
		atEnd := i+1 == len(r)
		nextBreak := !atEnd && (unicode.IsSpace(r[i+1]) || r[i+1] == '.' || r[i+1] == ',' ||
			r[i+1] == 'g' || r[i+1] == 'k' || r[i+1] == 'm') // unit starts: g, kcal/kj, mg/ml
		switch {
		case prevDigit && nextDigit:
			r[i] = d
		case prevDigit && (atEnd || nextBreak):
			r[i] = d
		}
	}
	return string(r)
}

// normalizeDecimals rewrites a comma as a decimal dot when a digit follows.
func normalizeDecimals(s string) string {
	r := []rune(s)
	for i, c := range r {
		if c == ',' && i+1 < len(r) && unicode.IsDigit(r[i+1]) {
			r[i] = '.'
		}
	}
	return string(r)
}
