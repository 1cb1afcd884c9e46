package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// labeledField locates one value by its label. Values run to end of line.
type labeledField struct {
	pattern *regexp.Regexp
	field   Field
}

var labeledFields = []labeledField{
	{regexp.MustCompile(`(?im)Auction Type:[ \t]*(.+?)[ \t]*$`), FieldAuctionType},
	{regexp.MustCompile(`(?im)Case #:[ \t]*(.+?)[ \t]*$`), FieldCaseNumber},
	{regexp.MustCompile(`(?im)Certificate #:[ \t]*(.+?)[ \t]*$`), FieldCertificateNumber},
	{regexp.MustCompile(`(?im)Parcel ID:[ \t]*(.+?)[ \t]*$`), FieldParcelID},
	{regexp.MustCompile(`(?im)Legal Description:[ \t]*(.+?)[ \t]*$`), FieldLegalDescription},
	{regexp.MustCompile(`(?im)Opening Bid:[ \t]*(\$?[\d,.]+)`), FieldOpeningBid},
	{regexp.MustCompile(`(?im)Assessed Value:[ \t]*(\$?[\d,.]+)`), FieldAssessedValue},
	{regexp.MustCompile(`(?im)Amount[ \t]*\n[ \t]*(\$[\d,.]+)`), FieldSoldAmount},
	{regexp.MustCompile(`(?im)Sold To[ \t]*\n[ \t]*(.+?)[ \t]*$`), FieldSoldTo},
}

// statusMarker maps a marker line in scraped text onto a status.
// When detailFromNextLine is set the following line becomes the status detail,
// otherwise the marker itself does.
type statusMarker struct {
	marker             *regexp.Regexp
	detail             *regexp.Regexp
	status             string
	detailFromNextLine bool
}

// statusMarkers are checked in order; the first present marker wins.
var statusMarkers = []statusMarker{
	{
		marker:             regexp.MustCompile(`(?i)Auction Sold`),
		detail:             regexp.MustCompile(`(?im)Auction Sold[ \t]*\n[ \t]*(.+?)[ \t]*$`),
		status:             "sold",
		detailFromNextLine: true,
	},
	{
		marker:             regexp.MustCompile(`(?i)Auction Starts`),
		detail:             regexp.MustCompile(`(?im)Auction Starts[ \t]*\n[ \t]*(.+?)[ \t]*$`),
		status:             "active",
		detailFromNextLine: true,
	},
	{marker: regexp.MustCompile(`(?i)\bRedeemed\b`), status: "inactive"},
	{marker: regexp.MustCompile(`(?i)\bCancel(?:l)?ed\b`), status: "inactive"},
}

// addressBlock captures everything after "Property Address:" up to the next
// recognized label or the end of the text.
var addressBlock = regexp.MustCompile(
	`(?is)Property Address:[ \t]*(.*?)` +
		`(?:\s*\b(?:Assessed Value|Opening Bid|Parcel ID|Case #|Certificate #|Auction Type|Legal Description)[ \t]*:` +
		`|\n[ \t]*(?:Amount|Sold To|Auction Sold|Auction Starts|Redeemed|Canceled)[ \t]*(?:\n|$)` +
		`|\z)`,
)

// cityStateZip matches a "City, ST ZIP" line. The dash before the zip is optional
// because some counties render it as "FL- 32905".
var cityStateZip = regexp.MustCompile(`^([A-Za-z][A-Za-z .'-]*?)[ \t]*,[ \t]*([A-Za-z]{2})[ \t]*-?[ \t]*(\d{5}(?:-\d{4})?)$`)

// trailingCityStateZip matches "Street, City, ST ZIP" on a single line. The
// city is the segment after the last comma-separated street part.
var trailingCityStateZip = regexp.MustCompile(`,[ \t]*([A-Za-z][A-Za-z .'-]*?)[ \t]*,[ \t]*([A-Za-z]{2})[ \t]*-?[ \t]*(\d{5}(?:-\d{4})?)$`)

var htmlMarkup = regexp.MustCompile(`(?i)<(?:br|p|div|span|td|tr|li|table|html|body|strong|b)\b`)

// FromText extracts labeled fields from one scraped free-text blob.
// Labels are matched case-insensitively; values run to end of line.
// Missing labels leave their fields absent. HTML fragments are converted to
// text first.
func FromText(blob string) Attributes {
	var attrs Attributes

	text := strings.ReplaceAll(blob, "\r\n", "\n")
	if htmlMarkup.MatchString(text) {
		if converted, err := HTMLToText(text); err == nil {
			text = converted
		}
	}

	for _, lf := range labeledFields {
		if m := lf.pattern.FindStringSubmatch(text); m != nil {
			attrs.Set(lf.field, m[1])
		}
	}

	for _, sm := range statusMarkers {
		marker := sm.marker.FindString(text)
		if marker == "" {
			continue
		}
		attrs.Set(FieldStatus, sm.status)
		if !sm.detailFromNextLine {
			attrs.Set(FieldStatusDetail, marker)
		} else if m := sm.detail.FindStringSubmatch(text); m != nil {
			attrs.Set(FieldStatusDetail, m[1])
		}
		break
	}

	extractAddress(text, &attrs)
	return attrs
}

// extractAddress splits the address block into lines and reads city, state and
// zip from the last non-empty line only. Scraped blocks wrap inconsistently, and
// matching across the whole block pulls street suffixes such as "RD NE" into
// the city. A last line that also carries the street, as in
// "88 OCEAN DR, MIAMI, FL 33139", takes the city from the comma-delimited
// segment before the state. When the last line does not match, the joined
// block is kept as the address and city, state and zip stay absent.
func extractAddress(text string, attrs *Attributes) {
	m := addressBlock.FindStringSubmatch(text)
	if m == nil {
		return
	}

	var lines []string
	for _, line := range strings.Split(m[1], "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return
	}

	attrs.Set(FieldAddress, strings.Join(lines, " "))

	last := lines[len(lines)-1]
	parts := cityStateZip.FindStringSubmatch(last)
	if parts == nil {
		parts = trailingCityStateZip.FindStringSubmatch(last)
	}
	if parts == nil {
		return
	}
	attrs.Set(FieldCity, parts[1])
	attrs.Set(FieldState, strings.ToUpper(parts[2]))
	attrs.Set(FieldZip, parts[3])
}

// HTMLToText renders a scraped HTML fragment as plain text, keeping one line per
// block element so labeled values stay on their own lines.
func HTMLToText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse html blob: %w", err)
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	doc.Find("td, th").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	lines := strings.Split(doc.Text(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n"), nil
}
