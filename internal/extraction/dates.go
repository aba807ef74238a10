package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Field names reported in Result.UnparsedDates
const (
	FieldManufactureDate = "manufactureDate"
	FieldExpirationDate  = "expirationDate"
)

// dateLayouts covers printed ISO-style dates plus compact YYYYMMDD. GS1
// YYMMDD is handled by parseGS1Date.
var dateLayouts = []string{
	isoDate,
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"20060102",
}

// hintWindow is how many characters before a bare date are searched for a label
const hintWindow = 24

var (
	gs1Date         = regexp.MustCompile(`^([0-9]{2})([0-9]{2})([0-9]{2})$`)
	bareDate        = regexp.MustCompile(`\b[0-9]{4}[-/][0-9]{1,2}[-/][0-9]{1,2}\b`)
	expiryHint      = regexp.MustCompile(`(?:EXP(?:IRY|IRES|IRATION)?(?: DATE)?|USE BY)[ :\-]*$`)
	manufactureHint = regexp.MustCompile(`(?:MFG|MFD|MANUFACTURED?(?: ON)?|PRODUCTION(?: DATE)?)[ :\-]*$`)
)

// Dates holds the manufacture and expiration dates found on a label
type Dates struct {
	Manufacture string
	Expiration  string
	// Unparsed lists the fields whose value is returned as printed
	Unparsed []string
}

// NormalizeDate rewrites a recognized date to YYYY-MM-DD. Values that cannot
// be read as a calendar date are returned unchanged with ok false.
func NormalizeDate(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if t, ok := parseGS1Date(v); ok {
		return t.Format(isoDate), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(isoDate), true
		}
	}
	return raw, false
}

// parseGS1Date reads a GS1 YYMMDD value. Years are always 20YY since no
// sensor predates 2000, and no clock is consulted. Day 00 means the last day
// of the month.
func parseGS1Date(v string) (time.Time, bool) {
	m := gs1Date.FindStringSubmatch(v)
	if m == nil {
		return time.Time{}, false
	}
	if m[3] == "00" {
		month, err := strconv.Atoi(m[2])
		if err != nil || month < 1 || month > 12 {
			return time.Time{}, false
		}
		year, _ := strconv.Atoi(m[1])
		return time.Date(2000+year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC), true
	}
	t, err := time.Parse("20060102", "20"+v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ExtractDates reads GS1 AI 11 and 17 from tags, falling back to bare dates
// in normalized text. A bare date labelled EXP or MFG goes to that field;
// unlabelled ones fill manufacture then expiration in text order.
func ExtractDates(normalized string, tags TagMap) Dates {
	var d Dates
	used := make(map[string]bool)
	if v, ok := tags[aiManufactureDate]; ok {
		d.Manufacture = d.normalize(FieldManufactureDate, v)
		used[v] = true
	}
	if v, ok := tags[aiExpirationDate]; ok {
		d.Expiration = d.normalize(FieldExpirationDate, v)
		used[v] = true
	}
	if d.Manufacture != "" && d.Expiration != "" {
		return d
	}

	var unlabelled []string
	for _, loc := range bareDate.FindAllStringIndex(normalized, -1) {
		raw := normalized[loc[0]:loc[1]]
		if used[raw] {
			continue
		}
		used[raw] = true
		prefix := normalized[max(0, loc[0]-hintWindow):loc[0]]
		switch {
		case expiryHint.MatchString(prefix):
			if d.Expiration == "" {
				d.Expiration = d.normalize(FieldExpirationDate, raw)
			}
		case manufactureHint.MatchString(prefix):
			if d.Manufacture == "" {
				d.Manufacture = d.normalize(FieldManufactureDate, raw)
			}
		default:
			unlabelled = append(unlabelled, raw)
		}
	}
	for _, raw := range unlabelled {
		switch {
		case d.Manufacture == "":
			d.Manufacture = d.normalize(FieldManufactureDate, raw)
		case d.Expiration == "":
			d.Expiration = d.normalize(FieldExpirationDate, raw)
		}
	}
	return d
}

func (d *Dates) normalize(field, raw string) string {
	v, ok := NormalizeDate(raw)
	if !ok {
		d.Unparsed = append(d.Unparsed, field)
	}
	return v
}
