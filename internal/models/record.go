package models

import "time"

// Record is one normalized input row ready to be applied to the store.
// Nil fields were not supplied by the source and leave stored values untouched.
type Record struct {
	Property PropertyPatch
	Details  DetailsPatch
	Auction  AuctionPatch
}

// PropertyPatch holds the property attributes supplied by one row.
type PropertyPatch struct {
	Address          *string
	City             *string
	State            *string
	ZipCode          *string
	County           *string
	Status           *PropertyStatus
	AmountDue        *float64
	NextAuctionDate  *time.Time
	OwnerName        *string
	OwnerAddress     *string
	LegalDescription *string
	Latitude         *float64
	Longitude        *float64
	ParcelID         string
}

// DetailsPatch holds the valuation attributes supplied by one row.
type DetailsPatch struct {
	AssessedValue    *float64
	LandValue        *float64
	ImprovementValue *float64
	TotalMarketValue *float64
	EstimatedValue   *float64
	RentalValue      *float64
	LotAcres         *float64
	Sqft             *int
	YearBuilt        *int
	TaxYear          *int
	AccountNumber    *string
	FloodZoneCode    *string
	MarketValueURL   *string
	CSNumber         *string
	TaxSaleYear      *int
	DelinquentYear   *int
	ParcelType       *string
	OpportunityZone  *string
}

// IsEmpty reports whether no detail field was supplied.
func (d DetailsPatch) IsEmpty() bool {
	return d == DetailsPatch{}
}

// AuctionPatch holds auction participation attributes supplied by one row.
type AuctionPatch struct {
	AuctionName       *string
	AuctionDate       *time.Time
	Location          *string
	ListedAs          *string
	TaxesDue          *float64
	InfoLink          *string
	ListLink          *string
	AuctionType       *string
	CaseNumber        *string
	CertificateNumber *string
	OpeningBid        *float64
	SoldAmount        *float64
	SoldTo            *string
	StatusDetail      *string
	RawText           *string
}

// Participates reports whether the row names an auction, by name or by date.
func (a AuctionPatch) Participates() bool {
	return a.AuctionName != nil || a.AuctionDate != nil
}

// EventPatch holds the calendar attributes supplied by one row.
// Name and AuctionDate form the natural key and are always set.
type EventPatch struct {
	AuctionDate      time.Time
	ShortName        *string
	Time             *string
	Location         *string
	County           *string
	CountyCode       *string
	State            *string
	TaxStatus        *string
	ParcelsCount     *int
	Notes            *string
	SearchLink       *string
	RegisterDate     *time.Time
	RegisterLink     *string
	ListLink         *string
	PurchaseInfoLink *string
	Name             string
}
