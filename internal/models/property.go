package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyStatus is the lifecycle state of a property listing.
type PropertyStatus string

const (
	StatusActive   PropertyStatus = "active"
	StatusPending  PropertyStatus = "pending"
	StatusSold     PropertyStatus = "sold"
	StatusInactive PropertyStatus = "inactive"
	StatusDraft    PropertyStatus = "draft"
)

// Valid reports whether s is one of the known statuses.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSold, StatusInactive, StatusDraft:
		return true
	}
	return false
}

// Property is the canonical record for a real-world parcel, keyed by ParcelID.
// All nullable fields use pointers to distinguish between zero values and NULL.
type Property struct {
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
	ParcelID         *string        `db:"parcel_id" json:"parcelId"`
	Address          *string        `db:"address" json:"address,omitempty"`
	City             *string        `db:"city" json:"city,omitempty"`
	State            *string        `db:"state" json:"state,omitempty"`
	ZipCode          *string        `db:"zip_code" json:"zipCode,omitempty"`
	County           *string        `db:"county" json:"county,omitempty"`
	AmountDue        *float64       `db:"amount_due" json:"amountDue,omitempty"`
	NextAuctionDate  *time.Time     `db:"next_auction_date" json:"nextAuctionDate,omitempty"`
	OwnerName        *string        `db:"owner_name" json:"ownerName,omitempty"`
	OwnerAddress     *string        `db:"owner_address" json:"ownerAddress,omitempty"`
	LegalDescription *string        `db:"legal_description" json:"legalDescription,omitempty"`
	Latitude         *float64       `db:"latitude" json:"-"`
	Longitude        *float64       `db:"longitude" json:"-"`
	Status           PropertyStatus `db:"status" json:"status"`
	ID               uuid.UUID      `db:"id" json:"id"`
}

// Location returns the stored coordinates as a GeoJSON point, or nil.
func (p *Property) Location() *Point {
	return NewPoint(p.Latitude, p.Longitude)
}

// PropertyDetails is the 1:1 valuation and structural extension of a Property.
type PropertyDetails struct {
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
	AssessedValue    *float64  `db:"assessed_value" json:"assessedValue,omitempty"`
	LandValue        *float64  `db:"land_value" json:"landValue,omitempty"`
	ImprovementValue *float64  `db:"improvement_value" json:"improvementValue,omitempty"`
	TotalMarketValue *float64  `db:"total_market_value" json:"totalMarketValue,omitempty"`
	EstimatedValue   *float64  `db:"estimated_value" json:"estimatedValue,omitempty"`
	RentalValue      *float64  `db:"rental_value" json:"rentalValue,omitempty"`
	LotAcres         *float64  `db:"lot_acres" json:"lotAcres,omitempty"`
	Sqft             *int      `db:"sqft" json:"sqft,omitempty"`
	YearBuilt        *int      `db:"year_built" json:"yearBuilt,omitempty"`
	TaxYear          *int      `db:"tax_year" json:"taxYear,omitempty"`
	AccountNumber    *string   `db:"account_number" json:"accountNumber,omitempty"`
	FloodZoneCode    *string   `db:"flood_zone_code" json:"floodZoneCode,omitempty"`
	MarketValueURL   *string   `db:"market_value_url" json:"marketValueUrl,omitempty"`
	MaxBid           *float64  `db:"max_bid" json:"maxBid,omitempty"`
	CSNumber         *string   `db:"cs_number" json:"csNumber,omitempty"`
	TaxSaleYear      *int      `db:"tax_sale_year" json:"taxSaleYear,omitempty"`
	DelinquentYear   *int      `db:"delinquent_year" json:"delinquentYear,omitempty"`
	ParcelType       *string   `db:"parcel_type" json:"parcelType,omitempty"`
	OpportunityZone  *string   `db:"opportunity_zone" json:"opportunityZone,omitempty"`
	PropertyID       uuid.UUID `db:"property_id" json:"propertyId"`
}

// PropertyView is a property together with everything reconciled onto it.
type PropertyView struct {
	Property Property
	Details  *PropertyDetails
	History  []AuctionHistory
}
