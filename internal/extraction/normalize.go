package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Correction rewrites every match of Pattern in normalized text with Replacement
type Correction struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// defaultCorrections only touches whole brand tokens. Digit runs are never
// rewritten so serial numbers survive normalization untouched.
var defaultCorrections = []Correction{
	{regexp.MustCompile(`D[E3]X ?C[O0Q]M`), "DEXCOM"},
	{regexp.MustCompile(`XC[O0Q]M`), "XCOM"},
	{regexp.MustCompile(`FR[E3][E3]STYL[E3]`), "FREESTYLE"},
	{regexp.MustCompile(`LIBR3`), "LIBRE"},
	{regexp.MustCompile(`ABB[O0Q]TT`), "ABBOTT"},
	// split model tokens glued to the serial that follows them
	{regexp.MustCompile(`\b((?:DE)?XCOMG[567])([0-9])`), "$1 $2"},
	{regexp.MustCompile(`\b(G[567])([0-9])`), "$1 $2"},
}

// DefaultCorrections returns a copy of the built-in OCR correction table
func DefaultCorrections() []Correction {
	out := make([]Correction, len(defaultCorrections))
	copy(out, defaultCorrections)
	return out
}

// Text holds normalized label text alongside the OCR output it came from.
// Offsets reported by LocateCandidates always refer to Original.
type Text struct {
	Original   string
	Normalized string
}

// Normalizer canonicalizes raw OCR text
type Normalizer struct {
	corrections []Correction
}

// NewNormalizer creates a Normalizer applying corrections in order
func NewNormalizer(corrections []Correction) *Normalizer {
	c := make([]Correction, len(corrections))
	copy(c, corrections)
	return &Normalizer{corrections: c}
}

var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// groupSeparator is the GS1 FNC1 separator some OCR engines emit as a control character
const groupSeparator = '\x1d'

// Normalize uppercases raw, folds accents and fullwidth forms to ASCII, maps
// punctuation outside [A-Z0-9 ()/:-] to spaces, drops non-printable
// characters, applies the correction table and collapses whitespace.
func (n *Normalizer) Normalize(raw string) Text {
	folded, _, err := transform.String(foldMarks, raw)
	if err != nil {
		folded = raw
	}
	s := strings.Map(safeRune, strings.ToUpper(folded))
	s = strings.Join(strings.Fields(s), " ")
	for _, c := range n.corrections {
		s = c.Pattern.ReplaceAllString(s, c.Replacement)
	}
	return Text{Original: raw, Normalized: s}
}

func safeRune(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	case r == '(' || r == ')' || r == '/' || r == ':' || r == '-' || r == ' ':
		return r
	case r == '[' || r == '{':
		return '('
	case r == ']' || r == '}':
		return ')'
	case r == groupSeparator || unicode.IsSpace(r):
		return ' '
	case !unicode.IsPrint(r):
		return -1
	default:
		return ' '
	}
}
