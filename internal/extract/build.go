package extract

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/stwalsh4118/taxsale/api/internal/models"
	"github.com/stwalsh4118/taxsale/api/internal/normalize"
)

// Longest values the store accepts, in characters.
const (
	MaxParcelIDLength = 100
	MaxStateLength    = 100
)

var (
	// ErrMissingKey means the row has no natural key and should be skipped.
	ErrMissingKey = errors.New("natural key absent")
	// ErrInvalidValue means a present value violates a hard constraint.
	ErrInvalidValue = errors.New("invalid value")
)

// builder converts raw attributes into typed values, collecting a warning for
// every present value that had to be dropped.
type builder struct {
	attrs    *Attributes
	warnings []string
}

func (b *builder) warn(f Field, raw string) {
	b.warnings = append(b.warnings, fmt.Sprintf("%s: unparsable value %q ignored", f, raw))
}

func (b *builder) text(f Field) *string {
	raw, ok := b.attrs.Get(f)
	if !ok {
		return nil
	}
	return normalize.Text(raw)
}

func (b *builder) number(f Field) *float64 {
	raw, ok := b.attrs.Get(f)
	if !ok {
		return nil
	}
	v, malformed := normalize.NumberValue(raw)
	if malformed {
		b.warn(f, raw)
	}
	return v
}

func (b *builder) integer(f Field) *int {
	raw, ok := b.attrs.Get(f)
	if !ok {
		return nil
	}
	v, malformed := normalize.IntValue(raw)
	if malformed {
		b.warn(f, raw)
	}
	return v
}

func (b *builder) date(f Field) *time.Time {
	raw, ok := b.attrs.Get(f)
	if !ok {
		return nil
	}
	v, malformed := normalize.DateValue(raw)
	if malformed {
		b.warn(f, raw)
	}
	return v
}

func (b *builder) coordinates() (lat, lon *float64) {
	var malformed bool
	if raw, ok := b.attrs.Get(FieldCoordinates); ok {
		lat, lon, malformed = normalize.CoordinatesValue(raw)
		if malformed {
			b.warn(FieldCoordinates, raw)
		}
		return lat, lon
	}

	rawLat, hasLat := b.attrs.Get(FieldLatitude)
	rawLon, hasLon := b.attrs.Get(FieldLongitude)
	if !hasLat && !hasLon {
		return nil, nil
	}
	lat, lon, malformed = normalize.CoordinatePair(rawLat, rawLon)
	if malformed {
		b.warn(FieldCoordinates, rawLat+","+rawLon)
	}
	return lat, lon
}

// Build converts a property row into a typed record.
//
// The parcel id is mandatory: without it Build returns ErrMissingKey and the row
// is skipped. Status is validated: an unknown value fails the row. Dates,
// amounts, numbers and coordinates degrade to null with a warning when they
// cannot be parsed.
func Build(attrs Attributes) (models.Record, []string, error) {
	b := &builder{attrs: &attrs}
	var rec models.Record

	parcelID := b.text(FieldParcelID)
	if parcelID == nil {
		return rec, nil, ErrMissingKey
	}
	if len(*parcelID) > MaxParcelIDLength {
		return rec, nil, fmt.Errorf("%w: parcel id exceeds %d characters", ErrInvalidValue, MaxParcelIDLength)
	}

	state := b.text(FieldState)
	if state != nil && utf8.RuneCountInString(*state) > MaxStateLength {
		return rec, nil, fmt.Errorf("%w: state exceeds %d characters", ErrInvalidValue, MaxStateLength)
	}

	var status *models.PropertyStatus
	if raw, ok := attrs.Get(FieldStatus); ok {
		s, err := normalize.Status(raw)
		if err != nil {
			return rec, nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		status = s
	}

	lat, lon := b.coordinates()

	rec.Property = models.PropertyPatch{
		ParcelID:         *parcelID,
		Address:          b.text(FieldAddress),
		City:             b.text(FieldCity),
		State:            state,
		ZipCode:          b.text(FieldZip),
		County:           b.text(FieldCounty),
		Status:           status,
		AmountDue:        b.number(FieldAmountDue),
		NextAuctionDate:  b.date(FieldNextAuctionDate),
		OwnerName:        b.text(FieldOwnerName),
		OwnerAddress:     b.text(FieldOwnerAddress),
		LegalDescription: b.text(FieldLegalDescription),
		Latitude:         lat,
		Longitude:        lon,
	}

	rec.Details = models.DetailsPatch{
		AssessedValue:    b.number(FieldAssessedValue),
		LandValue:        b.number(FieldLandValue),
		ImprovementValue: b.number(FieldImprovementValue),
		TotalMarketValue: b.number(FieldTotalMarketValue),
		EstimatedValue:   b.number(FieldEstimatedValue),
		RentalValue:      b.number(FieldRentalValue),
		LotAcres:         b.number(FieldLotAcres),
		Sqft:             b.integer(FieldSqft),
		YearBuilt:        b.integer(FieldYearBuilt),
		TaxYear:          b.integer(FieldTaxYear),
		AccountNumber:    b.text(FieldAccountNumber),
		FloodZoneCode:    b.text(FieldFloodZone),
		MarketValueURL:   b.text(FieldMarketValueURL),
		CSNumber:         b.text(FieldCSNumber),
		TaxSaleYear:      b.integer(FieldTaxSaleYear),
		DelinquentYear:   b.integer(FieldDelinquentYear),
		ParcelType:       b.text(FieldParcelType),
		OpportunityZone:  b.text(FieldOpportunityZone),
	}

	rec.Auction = models.AuctionPatch{
		AuctionName:       b.text(FieldAuctionName),
		AuctionDate:       b.date(FieldAuctionDate),
		Location:          b.text(FieldAuctionLocation),
		ListedAs:          b.text(FieldListedAs),
		TaxesDue:          b.number(FieldTaxesDue),
		InfoLink:          b.text(FieldInfoLink),
		ListLink:          b.text(FieldListLink),
		AuctionType:       b.text(FieldAuctionType),
		CaseNumber:        b.text(FieldCaseNumber),
		CertificateNumber: b.text(FieldCertificateNumber),
		OpeningBid:        b.number(FieldOpeningBid),
		SoldAmount:        b.number(FieldSoldAmount),
		SoldTo:            b.text(FieldSoldTo),
		StatusDetail:      b.text(FieldStatusDetail),
		RawText:           b.text(FieldRawText),
	}

	return rec, b.warnings, nil
}

// BuildEvent converts an auction calendar row into a typed event.
//
// The event name and auction date form the natural key. Either missing yields
// ErrMissingKey, and a placeholder such as "N/A" counts as missing. A date that
// is present but unparsable fails the row because the key cannot be formed.
func BuildEvent(attrs Attributes) (models.EventPatch, []string, error) {
	b := &builder{attrs: &attrs}
	var ev models.EventPatch

	name := b.text(FieldAuctionName)
	rawDate, hasDate := attrs.Get(FieldAuctionDate)
	if name == nil || !hasDate || normalize.Text(rawDate) == nil {
		return ev, nil, ErrMissingKey
	}

	date, _ := normalize.DateValue(rawDate)
	if date == nil {
		return ev, nil, fmt.Errorf("%w: invalid auction date %q", ErrInvalidValue, rawDate)
	}

	ev = models.EventPatch{
		Name:             *name,
		AuctionDate:      *date,
		ShortName:        b.text(FieldShortName),
		Time:             b.text(FieldEventTime),
		Location:         b.text(FieldAuctionLocation),
		County:           b.text(FieldCounty),
		CountyCode:       b.text(FieldCountyCode),
		State:            b.text(FieldState),
		TaxStatus:        b.text(FieldTaxStatus),
		ParcelsCount:     b.integer(FieldParcelsCount),
		Notes:            b.text(FieldNotes),
		SearchLink:       b.text(FieldSearchLink),
		RegisterDate:     b.date(FieldRegisterDate),
		RegisterLink:     b.text(FieldRegisterLink),
		ListLink:         b.text(FieldListLink),
		PurchaseInfoLink: b.text(FieldPurchaseInfoLink),
	}

	return ev, b.warnings, nil
}
