package extract

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// countyFilename matches scraper output names such as "adams_co_20260209.csv".
var countyFilename = regexp.MustCompile(`(?i)^([a-z][a-z_]*?)_co_`)

// CountyFromFilename infers the county from a scraper file name,
// e.g. "st_lucie_co_20260209.csv" becomes "St Lucie County".
// Returns nil when the name does not follow the convention.
func CountyFromFilename(name string) *string {
	m := countyFilename.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return nil
	}
	words := strings.ReplaceAll(strings.ToLower(m[1]), "_", " ")
	county := cases.Title(language.English).String(words) + " County"
	return &county
}
