// Package extract turns CSV rows and scraped free-text blobs into attribute bags
// of canonical fields, and builds typed records from them.
package extract

import "strings"

// Field identifies a canonical attribute an input row may carry.
type Field int

const (
	FieldParcelID Field = iota
	FieldAddress
	FieldCity
	FieldState
	FieldZip
	FieldCounty
	FieldStatus
	FieldAmountDue
	FieldNextAuctionDate
	FieldOwnerName
	FieldOwnerAddress
	FieldLegalDescription
	FieldCoordinates
	FieldLatitude
	FieldLongitude

	FieldAssessedValue
	FieldLandValue
	FieldImprovementValue
	FieldTotalMarketValue
	FieldEstimatedValue
	FieldRentalValue
	FieldLotAcres
	FieldSqft
	FieldYearBuilt
	FieldTaxYear
	FieldAccountNumber
	FieldFloodZone
	FieldMarketValueURL
	FieldCSNumber
	FieldTaxSaleYear
	FieldDelinquentYear
	FieldParcelType
	FieldOpportunityZone

	FieldAuctionName
	FieldAuctionDate
	FieldAuctionLocation
	FieldListedAs
	FieldTaxesDue
	FieldInfoLink
	FieldListLink
	FieldAuctionType
	FieldCaseNumber
	FieldCertificateNumber
	FieldOpeningBid
	FieldSoldAmount
	FieldSoldTo
	FieldStatusDetail
	FieldRawText

	FieldShortName
	FieldEventTime
	FieldCountyCode
	FieldTaxStatus
	FieldParcelsCount
	FieldNotes
	FieldSearchLink
	FieldRegisterDate
	FieldRegisterLink
	FieldPurchaseInfoLink

	fieldCount
)

// fieldNone marks a column that maps to no canonical field.
const fieldNone Field = -1

var fieldNames = [fieldCount]string{
	FieldParcelID:          "parcel_id",
	FieldAddress:           "address",
	FieldCity:              "city",
	FieldState:             "state",
	FieldZip:               "zip_code",
	FieldCounty:            "county",
	FieldStatus:            "status",
	FieldAmountDue:         "amount_due",
	FieldNextAuctionDate:   "next_auction_date",
	FieldOwnerName:         "owner_name",
	FieldOwnerAddress:      "owner_address",
	FieldLegalDescription:  "legal_description",
	FieldCoordinates:       "coordinates",
	FieldLatitude:          "latitude",
	FieldLongitude:         "longitude",
	FieldAssessedValue:     "assessed_value",
	FieldLandValue:         "land_value",
	FieldImprovementValue:  "improvement_value",
	FieldTotalMarketValue:  "total_market_value",
	FieldEstimatedValue:    "estimated_value",
	FieldRentalValue:       "rental_value",
	FieldLotAcres:          "lot_acres",
	FieldSqft:              "sqft",
	FieldYearBuilt:         "year_built",
	FieldTaxYear:           "tax_year",
	FieldAccountNumber:     "account_number",
	FieldFloodZone:         "flood_zone_code",
	FieldMarketValueURL:    "market_value_url",
	FieldCSNumber:          "cs_number",
	FieldTaxSaleYear:       "tax_sale_year",
	FieldDelinquentYear:    "delinquent_year",
	FieldParcelType:        "parcel_type",
	FieldOpportunityZone:   "opportunity_zone",
	FieldAuctionName:       "auction_name",
	FieldAuctionDate:       "auction_date",
	FieldAuctionLocation:   "location",
	FieldListedAs:          "listed_as",
	FieldTaxesDue:          "taxes_due",
	FieldInfoLink:          "info_link",
	FieldListLink:          "list_link",
	FieldAuctionType:       "auction_type",
	FieldCaseNumber:        "case_number",
	FieldCertificateNumber: "certificate_number",
	FieldOpeningBid:        "opening_bid",
	FieldSoldAmount:        "sold_amount",
	FieldSoldTo:            "sold_to",
	FieldStatusDetail:      "status_detail",
	FieldRawText:           "raw_text",
	FieldShortName:         "short_name",
	FieldEventTime:         "time",
	FieldCountyCode:        "county_code",
	FieldTaxStatus:         "tax_status",
	FieldParcelsCount:      "parcels_count",
	FieldNotes:             "notes",
	FieldSearchLink:        "search_link",
	FieldRegisterDate:      "register_date",
	FieldRegisterLink:      "register_link",
	FieldPurchaseInfoLink:  "purchase_info_link",
}

// String returns the canonical snake_case name of the field.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// Attributes is the set of raw values found for one input row.
// A field that was not found is absent, which is distinct from any string value.
type Attributes struct {
	values [fieldCount]string
	set    [fieldCount]bool
}

// Set records a value for f. Blank values are ignored so they stay absent.
func (a *Attributes) Set(f Field, value string) {
	if f < 0 || f >= fieldCount {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	a.values[f] = value
	a.set[f] = true
}

// Get returns the value for f and whether it is present.
func (a *Attributes) Get(f Field) (string, bool) {
	if f < 0 || f >= fieldCount || !a.set[f] {
		return "", false
	}
	return a.values[f], true
}

// Has reports whether f is present.
func (a *Attributes) Has(f Field) bool {
	_, ok := a.Get(f)
	return ok
}

// Fill copies every field present in other that is absent in a.
// Values already in a take precedence.
func (a *Attributes) Fill(other *Attributes) {
	for f := Field(0); f < fieldCount; f++ {
		if !a.set[f] && other.set[f] {
			a.values[f] = other.values[f]
			a.set[f] = true
		}
	}
}

// Len returns the number of present fields.
func (a *Attributes) Len() int {
	n := 0
	for _, ok := range a.set {
		if ok {
			n++
		}
	}
	return n
}
