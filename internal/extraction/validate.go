package extraction

import (
	"regexp"
	"strings"
)

var (
	digitsOnly = regexp.MustCompile(`^[0-9]+$`)
	alnumOnly  = regexp.MustCompile(`^[A-Z0-9]+$`)
	// printed model token some Dexcom boxes carry where the serial should be
	dexcomLabelToken = regexp.MustCompile(`^(?:DE)?XCOMG[567]$`)
)

// ValidateSerialNumber checks that serial has a plausible shape for the
// declared manufacturer. It never panics; an empty serial is never valid.
func ValidateSerialNumber(serial, manufacturer string) bool {
	s := strings.ToUpper(strings.TrimSpace(serial))
	if s == "" {
		return false
	}
	switch ParseManufacturer(manufacturer) {
	case Dexcom:
		if dexcomLabelToken.MatchString(s) {
			return true
		}
		return digitsOnly.MatchString(s) && len(s) >= minCandidateLen && len(s) <= maxCandidateLen
	case Freestyle:
		return alnumOnly.MatchString(s) && len(s) >= 6 && len(s) <= 12
	default:
		return alnumOnly.MatchString(s) && len(s) >= 6 && len(s) <= 14
	}
}
