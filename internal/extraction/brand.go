package extraction

import "regexp"

// Brand is the manufacturer and model family detected on a label
type Brand struct {
	Manufacturer Manufacturer
	Model        string
	// Keyword is true when a brand or model word was read, as opposed to the
	// maker being inferred from GS1 structure alone
	Keyword bool
}

type modelRule struct {
	pattern *regexp.Regexp
	name    string
}

var (
	dexcomKeyword    = regexp.MustCompile(`DEXCOM|XCOM`)
	freestyleKeyword = regexp.MustCompile(`FREESTYLE|LIBRE|ABBOTT`)
	serialTagHint    = regexp.MustCompile(`\(2[1IYL]\)`)

	// most specific first
	dexcomModels = []modelRule{
		{regexp.MustCompile(`(?:\b|XCOM)G7\b`), "G7"},
		{regexp.MustCompile(`(?:\b|XCOM)G6\b`), "G6"},
		{regexp.MustCompile(`(?:\b|XCOM)G5\b`), "G5"},
	}
	freestyleModels = []modelRule{
		{regexp.MustCompile(`LIBRE ?3\b`), "Libre 3"},
		{regexp.MustCompile(`LIBRE ?2\b`), "Libre 2"},
		{regexp.MustCompile(`LIBRE`), "Libre"},
	}
)

const defaultDexcomModel = "G7"

// DetectBrand classifies the manufacturer and model from keywords in
// normalized text. Brand words take priority over GS1 structure, so a
// Freestyle label carrying a (21) tag stays Freestyle.
func DetectBrand(normalized string, tags TagMap) Brand {
	dexcomModel := matchModel(normalized, dexcomModels)
	switch {
	case dexcomKeyword.MatchString(normalized) || dexcomModel != "":
		b := Brand{Manufacturer: Dexcom, Model: dexcomModel, Keyword: true}
		if b.Model == "" && hasSerialTag(normalized, tags) {
			b.Model = defaultDexcomModel
		}
		return b
	case freestyleKeyword.MatchString(normalized):
		return Brand{Manufacturer: Freestyle, Model: matchModel(normalized, freestyleModels), Keyword: true}
	case hasSerialTag(normalized, tags):
		return Brand{Manufacturer: Dexcom, Model: defaultDexcomModel}
	default:
		return Brand{Manufacturer: Unknown}
	}
}

func matchModel(normalized string, rules []modelRule) string {
	for _, r := range rules {
		if r.pattern.MatchString(normalized) {
			return r.name
		}
	}
	return ""
}

// hasSerialTag reports whether the text carries an AI-21 serial tag
func hasSerialTag(normalized string, tags TagMap) bool {
	if _, ok := tags[aiSerial]; ok {
		return true
	}
	return serialTagHint.MatchString(normalized)
}
