package extraction

import (
	"regexp"
	"unicode/utf8"
)

const (
	minCandidateLen = 10
	maxCandidateLen = 14
)

// NumericCandidate is a digit run that could be a serial number. Offset is
// the index of its first character in the original OCR text.
type NumericCandidate struct {
	Value  string
	Offset int
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// LocateCandidates returns every maximal digit run of 10 to 14 digits in
// original, in text order. Shorter and longer runs are prices, phone numbers
// or other codes.
func LocateCandidates(original string) []NumericCandidate {
	var out []NumericCandidate
	// runes counts characters up to byte position pos
	runes, pos := 0, 0
	for _, loc := range digitRun.FindAllStringIndex(original, -1) {
		runes += utf8.RuneCountInString(original[pos:loc[0]])
		pos = loc[0]
		n := loc[1] - loc[0]
		if n < minCandidateLen || n > maxCandidateLen {
			continue
		}
		out = append(out, NumericCandidate{
			Value:  original[loc[0]:loc[1]],
			Offset: runes,
		})
	}
	return out
}
