// Package normalize converts raw scraped or exported strings into typed values.
// Every parser returns nil for missing data. Nothing is coerced to a zero value.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/taxsale/api/internal/models"
)

// Coordinate bounds
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrUnknownStatus is returned when a status value matches no known status.
var ErrUnknownStatus = errors.New("unknown property status")

var (
	numericPattern  = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	currencyCleaner = strings.NewReplacer("$", "", ",", "")
)

// placeholders are values county exports use to mean "no data".
var placeholders = map[string]bool{
	"-":    true,
	"--":   true,
	"n/a":  true,
	"na":   true,
	"none": true,
	"null": true,
}

func isBlank(s string) bool {
	return s == "" || placeholders[strings.ToLower(s)]
}

// Text trims raw and returns nil for blank or placeholder values.
func Text(raw string) *string {
	s := strings.TrimSpace(raw)
	if isBlank(s) {
		return nil
	}
	return &s
}

// Currency parses a money amount such as "$1,500.00".
// The first numeric substring wins, so "0.19 acres" yields 0.19.
// Absent or unparsable input yields nil, never 0.
func Currency(raw string) *float64 {
	v, _ := CurrencyValue(raw)
	return v
}

// CurrencyValue parses like Currency and also reports whether a non-blank
// value was present but could not be parsed.
func CurrencyValue(raw string) (*float64, bool) {
	return NumberValue(raw)
}

// NumberValue extracts the first numeric substring of raw after removing
// currency symbols and thousands separators. The second result is true when
// raw was non-blank but held no number.
func NumberValue(raw string) (*float64, bool) {
	s := strings.TrimSpace(raw)
	if isBlank(s) {
		return nil, false
	}

	match := numericPattern.FindString(currencyCleaner.Replace(s))
	if match == "" {
		return nil, true
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(match, "+"))
	if err != nil {
		return nil, true
	}

	f := d.InexactFloat64()
	return &f, false
}

// IntValue parses a whole number. Values such as "1,234", "1234.0" and
// "1,850 sqft" are accepted; fractional parts are truncated.
func IntValue(raw string) (*int, bool) {
	f, malformed := NumberValue(raw)
	if f == nil {
		return nil, malformed
	}
	i := int(*f)
	return &i, false
}

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"2 Jan 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
}

// dateOnlyLayouts are retried against the leading token of values carrying
// trailing text, e.g. "03/05/2026 10:00 AM CST".
var dateOnlyLayouts = dateLayouts[:12]

// Date parses a calendar date from any of the known source formats.
// The result is midnight UTC. Unrecognized input yields nil.
func Date(raw string) *time.Time {
	t, _ := DateValue(raw)
	return t
}

// DateValue parses like Date and also reports whether a non-blank value
// matched no known format.
func DateValue(raw string) (*time.Time, bool) {
	s := strings.TrimSpace(raw)
	if isBlank(s) {
		return nil, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOf(t), false
		}
	}

	if head, _, found := strings.Cut(s, " "); found {
		for _, layout := range dateOnlyLayouts {
			if t, err := time.Parse(layout, head); err == nil {
				return dateOf(t), false
			}
		}
	}

	return nil, true
}

func dateOf(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// Coordinates parses a "lat,lon" or "lat lon" pair.
// Both halves must parse and fall within range, otherwise both results are nil.
func Coordinates(raw string) (lat, lon *float64) {
	lat, lon, _ = CoordinatesValue(raw)
	return lat, lon
}

// CoordinatesValue parses like Coordinates and also reports whether a non-blank
// value was discarded.
func CoordinatesValue(raw string) (lat, lon *float64, malformed bool) {
	s := strings.TrimSpace(raw)
	if isBlank(s) {
		return nil, nil, false
	}

	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		parts = strings.Fields(s)
	}
	if len(parts) != 2 {
		return nil, nil, true
	}

	return CoordinatePair(parts[0], parts[1])
}

// CoordinatePair parses latitude and longitude supplied as separate values.
// A pair with only one usable half is discarded as a whole.
func CoordinatePair(rawLat, rawLon string) (lat, lon *float64, malformed bool) {
	latStr, lonStr := strings.TrimSpace(rawLat), strings.TrimSpace(rawLon)
	if isBlank(latStr) && isBlank(lonStr) {
		return nil, nil, false
	}

	la, errLat := strconv.ParseFloat(latStr, 64)
	lo, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return nil, nil, true
	}
	if la < MinLatitude || la > MaxLatitude || lo < MinLongitude || lo > MaxLongitude {
		return nil, nil, true
	}

	return &la, &lo, false
}

// statusSynonyms maps wording seen in county exports onto a PropertyStatus.
var statusSynonyms = map[string]models.PropertyStatus{
	"available": models.StatusActive,
	"open":      models.StatusActive,
	"for sale":  models.StatusActive,
	"upcoming":  models.StatusPending,
	"scheduled": models.StatusPending,
	"struck":    models.StatusSold,
	"redeemed":  models.StatusInactive,
	"canceled":  models.StatusInactive,
	"cancelled": models.StatusInactive,
	"withdrawn": models.StatusInactive,
}

// Status maps a raw status value onto a PropertyStatus.
// Blank input yields nil; an unrecognized value is an error.
func Status(raw string) (*models.PropertyStatus, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if isBlank(s) {
		return nil, nil
	}

	status := models.PropertyStatus(s)
	if !status.Valid() {
		synonym, ok := statusSynonyms[s]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
		}
		status = synonym
	}
	return &status, nil
}

// MaxBid computes the bidding ceiling for a property: estimated value times pct,
// rounded to cents. Returns nil when there is no estimated value.
func MaxBid(estimated *float64, pct float64) *float64 {
	if estimated == nil {
		return nil
	}
	v := decimal.NewFromFloat(*estimated).
		Mul(decimal.NewFromFloat(pct)).
		Round(2).
		InexactFloat64()
	return &v
}
