package extract

import (
	"strings"

	"github.com/stwalsh4118/taxsale/api/internal/models"
)

// AliasTable maps source column names onto canonical fields.
// Matching is case-sensitive; columns missing from the table are ignored.
type AliasTable map[string]Field

// PropertyAliases returns the column aliases used by property and auction-list
// exports, including the scraper's raw_text column.
func PropertyAliases() AliasTable {
	return AliasTable{
		"Parcel ID":     FieldParcelID,
		"Parcel Id":     FieldParcelID,
		"Parcel Number": FieldParcelID,
		"parcel_id":     FieldParcelID,
		"parcel_number": FieldParcelID,
		"APN":           FieldParcelID,

		"Address":          FieldAddress,
		"Property Address": FieldAddress,
		"address":          FieldAddress,
		"parcel_address":   FieldAddress,
		"property_address": FieldAddress,
		"City":             FieldCity,
		"city":             FieldCity,
		"State":            FieldState,
		"state":            FieldState,
		"state_code":       FieldState,
		"Zip":              FieldZip,
		"Zip Code":         FieldZip,
		"zip":              FieldZip,
		"zip_code":         FieldZip,
		"County":           FieldCounty,
		"County Name":      FieldCounty,
		"county":           FieldCounty,

		"Status":            FieldStatus,
		"status":            FieldStatus,
		"Amount Due":        FieldAmountDue,
		"amount_due":        FieldAmountDue,
		"Next Auction":      FieldNextAuctionDate,
		"next_auction_date": FieldNextAuctionDate,
		"Owner Name":        FieldOwnerName,
		"owner_name":        FieldOwnerName,
		"Owner Address":     FieldOwnerAddress,
		"owner_address":     FieldOwnerAddress,
		"Legal Description": FieldLegalDescription,
		"legal_description": FieldLegalDescription,
		"Coordinates":       FieldCoordinates,
		"coordinates":       FieldCoordinates,
		"Latitude":          FieldLatitude,
		"latitude":          FieldLatitude,
		"Longitude":         FieldLongitude,
		"longitude":         FieldLongitude,

		"Assessed Value":     FieldAssessedValue,
		"assessed_value":     FieldAssessedValue,
		"Land":               FieldLandValue,
		"Land Value":         FieldLandValue,
		"land_value":         FieldLandValue,
		"Improvements":       FieldImprovementValue,
		"improvement_value":  FieldImprovementValue,
		"Total Value":        FieldTotalMarketValue,
		"total_value":        FieldTotalMarketValue,
		"total_market_value": FieldTotalMarketValue,
		"Estimated Value":    FieldEstimatedValue,
		"Market Value":       FieldEstimatedValue,
		"estimated_value":    FieldEstimatedValue,
		"estimated_arv":      FieldEstimatedValue,
		"Estimated Rent":     FieldRentalValue,
		"estimated_rent":     FieldRentalValue,
		"Acres":              FieldLotAcres,
		"lot_acres":          FieldLotAcres,
		"Square Feet":        FieldSqft,
		"sqft":               FieldSqft,
		"Year Built":         FieldYearBuilt,
		"year_built":         FieldYearBuilt,
		"Tax Year":           FieldTaxYear,
		"tax_year":           FieldTaxYear,
		"Account":            FieldAccountNumber,
		"Account Number":     FieldAccountNumber,
		"account_number":     FieldAccountNumber,
		"Flood Zone":         FieldFloodZone,
		"flood_zone_code":    FieldFloodZone,
		"Market Value URL":   FieldMarketValueURL,
		"market_value_url":   FieldMarketValueURL,
		"CS":                 FieldCSNumber,
		"cs_number":          FieldCSNumber,
		"Tax Sale Year":      FieldTaxSaleYear,
		"tax_sale_year":      FieldTaxSaleYear,
		"Delinquent Year":    FieldDelinquentYear,
		"delinquent_year":    FieldDelinquentYear,
		"Parcel Type":        FieldParcelType,
		"parcel_type":        FieldParcelType,
		"Opportunity Zone":   FieldOpportunityZone,
		"opportunity_zone":   FieldOpportunityZone,

		"Auction Name":       FieldAuctionName,
		"auction_name":       FieldAuctionName,
		"Auction Date":       FieldAuctionDate,
		"auction_date":       FieldAuctionDate,
		"Auction Location":   FieldAuctionLocation,
		"auction_location":   FieldAuctionLocation,
		"Listed As":          FieldListedAs,
		"listed_as":          FieldListedAs,
		"Taxes Due":          FieldTaxesDue,
		"taxes_due":          FieldTaxesDue,
		"taxes_due_auction":  FieldTaxesDue,
		"Info Link":          FieldInfoLink,
		"auction_info_link":  FieldInfoLink,
		"List Link":          FieldListLink,
		"auction_list_link":  FieldListLink,
		"Auction Type":       FieldAuctionType,
		"auction_type":       FieldAuctionType,
		"Case Number":        FieldCaseNumber,
		"case_number":        FieldCaseNumber,
		"Certificate Number": FieldCertificateNumber,
		"certificate_number": FieldCertificateNumber,
		"Opening Bid":        FieldOpeningBid,
		"opening_bid":        FieldOpeningBid,
		"raw_text":           FieldRawText,
		"Raw Text":           FieldRawText,
	}
}

// CalendarAliases returns the column aliases used by county auction calendars.
func CalendarAliases() AliasTable {
	return AliasTable{
		"Search Link":        FieldSearchLink,
		"Name":               FieldAuctionName,
		"Auction Name":       FieldAuctionName,
		"Short Name":         FieldShortName,
		"Tax Status":         FieldTaxStatus,
		"Parcels":            FieldParcelsCount,
		"County Code":        FieldCountyCode,
		"County Name":        FieldCounty,
		"County":             FieldCounty,
		"State":              FieldState,
		"Auction Date":       FieldAuctionDate,
		"Time":               FieldEventTime,
		"Location":           FieldAuctionLocation,
		"Notes":              FieldNotes,
		"Register Date":      FieldRegisterDate,
		"Register Link":      FieldRegisterLink,
		"List Link":          FieldListLink,
		"Purchase Info Link": FieldPurchaseInfoLink,
	}
}

// AliasesFor returns the alias table for the given import kind.
func AliasesFor(kind models.JobKind) AliasTable {
	if kind == models.KindAuctions {
		return CalendarAliases()
	}
	return PropertyAliases()
}

// ColumnMap is a header row resolved against an AliasTable.
type ColumnMap struct {
	fields []Field
	bound  [fieldCount]bool
}

// Bind resolves a header row. When several columns alias the same field,
// the leftmost one wins and the rest are ignored.
func (t AliasTable) Bind(header []string) ColumnMap {
	m := ColumnMap{fields: make([]Field, len(header))}
	for i, name := range header {
		f, ok := t[strings.TrimSpace(name)]
		if !ok || m.bound[f] {
			m.fields[i] = fieldNone
			continue
		}
		m.fields[i] = f
		m.bound[f] = true
	}
	return m
}

// Covers reports whether some column maps onto f.
func (m ColumnMap) Covers(f Field) bool {
	if f < 0 || f >= fieldCount {
		return false
	}
	return m.bound[f]
}

// Extract maps one row of cells onto canonical fields.
// Short rows leave the trailing fields absent; extra cells are ignored.
func (m ColumnMap) Extract(cells []string) Attributes {
	var attrs Attributes
	for i, cell := range cells {
		if i >= len(m.fields) {
			break
		}
		if f := m.fields[i]; f != fieldNone {
			attrs.Set(f, cell)
		}
	}
	return attrs
}
