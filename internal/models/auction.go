package models

import (
	"time"

	"github.com/google/uuid"
)

// AuctionHistory records one property's participation in a named auction.
// It is unique on (PropertyID, AuctionName, AuctionDate).
type AuctionHistory struct {
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
	AuctionName       *string    `db:"auction_name" json:"auctionName,omitempty"`
	AuctionDate       *time.Time `db:"auction_date" json:"auctionDate,omitempty"`
	AuctionEventID    *int64     `db:"auction_event_id" json:"auctionEventId,omitempty"`
	Location          *string    `db:"location" json:"location,omitempty"`
	ListedAs          *string    `db:"listed_as" json:"listedAs,omitempty"`
	TaxesDue          *float64   `db:"taxes_due" json:"taxesDue,omitempty"`
	InfoLink          *string    `db:"info_link" json:"infoLink,omitempty"`
	ListLink          *string    `db:"list_link" json:"listLink,omitempty"`
	AuctionType       *string    `db:"auction_type" json:"auctionType,omitempty"`
	CaseNumber        *string    `db:"case_number" json:"caseNumber,omitempty"`
	CertificateNumber *string    `db:"certificate_number" json:"certificateNumber,omitempty"`
	OpeningBid        *float64   `db:"opening_bid" json:"openingBid,omitempty"`
	SoldAmount        *float64   `db:"sold_amount" json:"soldAmount,omitempty"`
	SoldTo            *string    `db:"sold_to" json:"soldTo,omitempty"`
	StatusDetail      *string    `db:"status_detail" json:"statusDetail,omitempty"`
	RawText           *string    `db:"raw_text" json:"-"`
	PropertyID        uuid.UUID  `db:"property_id" json:"propertyId"`
	ID                int64      `db:"id" json:"id"`
}

// AuctionEvent is a scheduled auction from a county calendar.
// It is unique on (Name, AuctionDate) and is not owned by any property.
type AuctionEvent struct {
	AuctionDate      time.Time  `db:"auction_date" json:"auctionDate"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
	ShortName        *string    `db:"short_name" json:"shortName,omitempty"`
	Time             *string    `db:"time" json:"time,omitempty"`
	Location         *string    `db:"location" json:"location,omitempty"`
	County           *string    `db:"county" json:"county,omitempty"`
	CountyCode       *string    `db:"county_code" json:"countyCode,omitempty"`
	State            *string    `db:"state" json:"state,omitempty"`
	TaxStatus        *string    `db:"tax_status" json:"taxStatus,omitempty"`
	ParcelsCount     *int       `db:"parcels_count" json:"parcelsCount,omitempty"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	SearchLink       *string    `db:"search_link" json:"searchLink,omitempty"`
	RegisterDate     *time.Time `db:"register_date" json:"registerDate,omitempty"`
	RegisterLink     *string    `db:"register_link" json:"registerLink,omitempty"`
	ListLink         *string    `db:"list_link" json:"listLink,omitempty"`
	PurchaseInfoLink *string    `db:"purchase_info_link" json:"purchaseInfoLink,omitempty"`
	Name             string     `db:"name" json:"name"`
	ID               int64      `db:"id" json:"id"`
}
