package extraction

import (
	"regexp"
	"strings"
)

// GS1 Application Identifiers read from labels
const (
	aiLot             = "10"
	aiManufactureDate = "11"
	aiExpirationDate  = "17"
	aiSerial          = "21"
)

// TagMap maps a GS1 Application Identifier to the raw value printed after it
type TagMap map[string]string

// A tag needs at least one delimiter around its code: "(21)", "(21", "21)",
// "21:" and "21-" all count, a bare digit run does not. A missing closing
// parenthesis only accepts two-digit codes.
var gs1TagPattern = regexp.MustCompile(`(?:\(([0-9]{2,3})[):\-]|\(([0-9]{2})|\b([0-9]{2,3})[):\-])\s?([A-Z0-9][A-Z0-9/\-]{5,19})`)

// ParseTags scans normalized text for (AI)value pairs. The first value seen
// for an AI wins.
func ParseTags(normalized string) TagMap {
	tags := make(TagMap)
	for _, m := range gs1TagPattern.FindAllStringSubmatch(normalized, -1) {
		ai := m[1]
		if ai == "" {
			ai = m[2]
		}
		if ai == "" {
			ai = m[3]
		}
		if _, seen := tags[ai]; seen {
			continue
		}
		tags[ai] = strings.TrimRight(m[4], "-/")
	}
	return tags
}
