// Package mains picks a default video frame rate from the local mains
// frequency. Broadcast standards follow the grid: PAL regions run 25 fps on
// 50Hz mains, NTSC regions run 30 fps on 60Hz.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Frame rates for each mains region
const (
	PALFrameRate  = 25.0
	NTSCFrameRate = 30.0
)

// FrameRate returns the default frame rate for the local timezone.
// Falls back to PAL when the runtime timezone cannot be read.
func FrameRate() float64 {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return PALFrameRate
	}
	return FrameRateForTimezone(timezone)
}

// FrameRateForTimezone returns the default frame rate for an IANA timezone
func FrameRateForTimezone(timezone string) float64 {
	return FrameRateForFrequency(FrequencyForTimezone(timezone))
}

// FrameRateForFrequency maps mains Hz to a frame rate. Anything that is not
// 60Hz is treated as 50Hz.
func FrameRateForFrequency(hz int) float64 {
	if hz == 60 {
		return NTSCFrameRate
	}
	return PALFrameRate
}

// FrequencyForTimezone returns the mains frequency for a given IANA timezone
func FrequencyForTimezone(timezone string) int {
	// No country for UTC and friends
	if timezone == "" || timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return 50
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return 50
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return 50
	}
	if country == "Japan" {
		// Split grid; Tokyo side is 50Hz
		return 50
	}
	if hz60Countries[country] {
		return 60
	}
	return 50
}

// hz60Countries lists countries using 60Hz mains power.
// All other countries use 50Hz.
// Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var hz60Countries = map[string]bool{
	// North America
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	// Central America
	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	// Caribbean
	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// South America (partial, most use 50Hz)
	"Brazil":    true, // Note: Brazil has both 50Hz and 60Hz regions; 60Hz predominant
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	// Asia (partial)
	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	// Pacific
	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}
