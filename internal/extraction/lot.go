package extraction

import "regexp"

// Strategy names reported in Result.LotSource
const (
	SourceLotAI10    = "gs1-ai10"
	SourceLotTag     = "gs1-tag"
	SourceLotKeyword = "lot-keyword"
	SourceLotGlued   = "lot-glued"
)

var (
	// AI 10 with at least one parenthesis; OCR often reads the 0 as O
	ai10Pattern = regexp.MustCompile(`(?:\(1[0O]\)?|\b1[0O]\))[:\-]?\s?([A-Z0-9]{6,14})\b`)
	lotKeyword  = regexp.MustCompile(`\bLOT(?: NO| NUMBER)?\b[:\-]?\s?([A-Z0-9]{6,14})\b`)
	lotGlued    = regexp.MustCompile(`\b(LOT[A-Z0-9]{3,11})\b`)
	lotToken    = regexp.MustCompile(`^[A-Z0-9]{6,14}$`)
)

type lotInput struct {
	normalized string
	tags       TagMap
}

var lotChain = []strategy[lotInput]{
	{SourceLotAI10, func(in lotInput) (string, bool) { return firstLotMatch(ai10Pattern, in.normalized) }},
	{SourceLotTag, lotFromTag},
	{SourceLotKeyword, func(in lotInput) (string, bool) { return firstLotMatch(lotKeyword, in.normalized) }},
	{SourceLotGlued, func(in lotInput) (string, bool) { return firstLotMatch(lotGlued, in.normalized) }},
}

// ExtractLot returns the lot number printed on the label and the strategy
// that found it. Lot numbers are 6 to 14 uppercase alphanumerics with at
// least one digit.
func ExtractLot(normalized string, tags TagMap) (lot, source string) {
	return firstSuccess(lotInput{normalized: normalized, tags: tags}, lotChain)
}

func lotFromTag(in lotInput) (string, bool) {
	v, ok := in.tags[aiLot]
	if !ok || !isLotToken(v) {
		return "", false
	}
	return v, true
}

func isLotToken(s string) bool {
	return lotToken.MatchString(s) && hasDigit(s)
}

func firstLotMatch(re *regexp.Regexp, normalized string) (string, bool) {
	for _, m := range re.FindAllStringSubmatch(normalized, -1) {
		if isLotToken(m[1]) {
			return m[1], true
		}
	}
	return "", false
}
