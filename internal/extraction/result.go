// Package extraction turns noisy OCR text from a sensor package label into
// structured fields. Every function in this package is pure: no I/O, no
// clock, no shared state between calls.
package extraction

import "strings"

// Manufacturer identifies the maker of a sensor
type Manufacturer string

const (
	Dexcom    Manufacturer = "Dexcom"
	Freestyle Manufacturer = "Freestyle"
	Abbott    Manufacturer = "Abbott"
	Unknown   Manufacturer = "Unknown"
)

// ParseManufacturer maps a free-form manufacturer name onto a known Manufacturer
func ParseManufacturer(name string) Manufacturer {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "DEXCOM"):
		return Dexcom
	case strings.Contains(n, "FREESTYLE"), strings.Contains(n, "LIBRE"):
		return Freestyle
	case strings.Contains(n, "ABBOTT"):
		return Abbott
	default:
		return Unknown
	}
}

// Result contains the fields recovered from a label. Empty strings mean the
// field was not found.
type Result struct {
	Manufacturer    Manufacturer `json:"manufacturer,omitempty"`
	ModelName       string       `json:"modelName,omitempty"`
	SerialNumber    string       `json:"serialNumber,omitempty"`
	LotNumber       string       `json:"lotNumber,omitempty"`
	ManufactureDate string       `json:"manufactureDate,omitempty"`
	ExpirationDate  string       `json:"expirationDate,omitempty"`
	Confidence      int          `json:"confidence"`

	// SerialSource and LotSource name the strategy that produced the value
	SerialSource string `json:"serialSource,omitempty"`
	LotSource    string `json:"lotSource,omitempty"`

	// UnparsedDates lists date fields returned as printed because they could
	// not be read as year/month/day
	UnparsedDates []string `json:"unparsedDates,omitempty"`
}
