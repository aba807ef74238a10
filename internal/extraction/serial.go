package extraction

import (
	"regexp"
	"unicode/utf8"
)

const serialDigits = 12

// Strategy names reported in Result.SerialSource
const (
	SourceSerialAI21      = "gs1-ai21"
	SourceSerialAI21OCR   = "gs1-ai21-ocr"
	SourceSerialTag       = "gs1-tag"
	SourceSerialProximity = "brand-proximity"
	SourceSerialGeneric   = "generic"
	SourceSerialLabel     = "serial-label"
	SourceSerialBare      = "bare-token"
)

var (
	ai21Strict = regexp.MustCompile(`\(21\)[:\-]?\s?([0-9A-Z\-]{10,24})`)

	// AI 21 as OCR tends to damage it: "(2I)", "2Y)", or glued "21" with no
	// parentheses at all
	ai21Corrupted    = regexp.MustCompile(`(?:^|[^0-9])\(?2[1IYL]\)?[:\-]?\s?([0-9A-Z\-]{10,24})`)
	nonDigit         = regexp.MustCompile(`[^0-9]`)
	twelveDigits     = regexp.MustCompile(`[0-9]{12}`)
	standaloneTwelve = regexp.MustCompile(`\b[0-9]{12}\b`)

	// dexcomAnchor runs against the original text, so it carries its own
	// case folding and OCR confusions. A model token glued to the brand is
	// part of the anchor.
	dexcomAnchor = regexp.MustCompile(`(?i)(?:D[E3]X ?C[O0Q]M|XC[O0Q]M)(?:G[567])?|\bG[567]\b`)

	serialLabel = regexp.MustCompile(`\b(?:SERIAL(?: NUMBER| NO)?|S/N|SN)\b[:\-]?\s?([A-Z0-9]{6,14})\b`)
	bareToken   = regexp.MustCompile(`\b[A-Z0-9]{10,14}\b`)
)

type serialInput struct {
	text       Text
	tags       TagMap
	candidates []NumericCandidate
	brand      Brand
}

// Ordered by decreasing confidence; the first strategy to produce a value wins
var dexcomSerialChain = []strategy[*serialInput]{
	{SourceSerialAI21, func(in *serialInput) (string, bool) { return serialFromAI21(ai21Strict, in) }},
	{SourceSerialAI21OCR, func(in *serialInput) (string, bool) { return serialFromAI21(ai21Corrupted, in) }},
	{SourceSerialTag, serialFromTag},
	{SourceSerialProximity, serialNearBrand},
	{SourceSerialGeneric, serialGeneric},
}

var labelSerialChain = []strategy[*serialInput]{
	{SourceSerialLabel, serialFromLabel},
	{SourceSerialBare, serialFromBareToken},
}

// ExtractSerial returns the best serial number candidate and the name of the
// strategy that found it. Both are empty when nothing plausible was found.
func ExtractSerial(text Text, tags TagMap, candidates []NumericCandidate, brand Brand) (serial, source string) {
	in := &serialInput{text: text, tags: tags, candidates: candidates, brand: brand}
	if brand.Manufacturer == Dexcom {
		return firstSuccess(in, dexcomSerialChain)
	}
	return firstSuccess(in, labelSerialChain)
}

// twelveDigitSerial accepts value when its digits alone form a 12-digit
// serial, or when a 12-digit run sits somewhere inside it
func twelveDigitSerial(value string) (string, bool) {
	if digits := nonDigit.ReplaceAllString(value, ""); len(digits) == serialDigits {
		return digits, true
	}
	if m := twelveDigits.FindString(value); m != "" {
		return m, true
	}
	return "", false
}

func serialFromAI21(re *regexp.Regexp, in *serialInput) (string, bool) {
	for _, m := range re.FindAllStringSubmatch(in.text.Normalized, -1) {
		if s, ok := twelveDigitSerial(m[1]); ok {
			return s, true
		}
	}
	return "", false
}

func serialFromTag(in *serialInput) (string, bool) {
	v, ok := in.tags[aiSerial]
	if !ok {
		return "", false
	}
	return twelveDigitSerial(v)
}

// serialNearBrand picks the digit run closest to the first Dexcom brand
// token in the original text. Only used when a brand word was actually read.
func serialNearBrand(in *serialInput) (string, bool) {
	if !in.brand.Keyword || len(in.candidates) == 0 {
		return "", false
	}
	loc := dexcomAnchor.FindStringIndex(in.text.Original)
	if loc == nil {
		return "", false
	}
	anchor := utf8.RuneCountInString(in.text.Original[:loc[0]])
	anchorEnd := anchor + utf8.RuneCountInString(in.text.Original[loc[0]:loc[1]])
	candidates := trimAnchorOverlap(in.candidates, anchorEnd)
	if len(candidates) == 0 {
		return "", false
	}
	best := nearestCandidate(candidates, anchor)
	if m := twelveDigits.FindString(best.Value); m != "" {
		return m, true
	}
	return best.Value, true
}

// trimAnchorOverlap drops the leading digits of a run that starts inside the
// anchor, as with the model digit of "XCOMG7123456789012". Runs left shorter
// than a candidate are discarded.
func trimAnchorOverlap(candidates []NumericCandidate, anchorEnd int) []NumericCandidate {
	out := make([]NumericCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Offset < anchorEnd && c.Offset+len(c.Value) > anchorEnd {
			c.Value = c.Value[anchorEnd-c.Offset:]
			c.Offset = anchorEnd
			if len(c.Value) < minCandidateLen {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// nearestCandidate returns the candidate whose offset is closest to anchor.
// Equal distances prefer a 12-digit run, then the earlier candidate.
func nearestCandidate(candidates []NumericCandidate, anchor int) NumericCandidate {
	best := candidates[0]
	bestDist := distance(best.Offset, anchor)
	for _, c := range candidates[1:] {
		d := distance(c.Offset, anchor)
		if d < bestDist || (d == bestDist && len(c.Value) == serialDigits && len(best.Value) != serialDigits) {
			best, bestDist = c, d
		}
	}
	return best
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func serialGeneric(in *serialInput) (string, bool) {
	if m := standaloneTwelve.FindString(in.text.Normalized); m != "" {
		return m, true
	}
	if len(in.candidates) > 0 {
		return in.candidates[0].Value, true
	}
	return "", false
}

func serialFromLabel(in *serialInput) (string, bool) {
	m := serialLabel.FindStringSubmatch(in.text.Normalized)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func serialFromBareToken(in *serialInput) (string, bool) {
	for _, tok := range bareToken.FindAllString(in.text.Normalized, -1) {
		if hasDigit(tok) {
			return tok, true
		}
	}
	return "", false
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}
