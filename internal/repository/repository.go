package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/stwalsh4118/taxsale/api/internal/models"
)

// UpsertResult reports how a natural-key upsert resolved.
type UpsertResult struct {
	// Inserted is true when a new row was created, false when an existing
	// row was merged into.
	Inserted bool
}

// DetailsState is the merged valuation state after a details upsert, as needed
// to derive the max bid.
type DetailsState struct {
	EstimatedValue *float64
	MaxBid         *float64
}

// RowWriter applies one input row's writes. All calls made through a single
// RowWriter commit or roll back together.
type RowWriter interface {
	// UpsertProperty creates or merges the property keyed by parcel id.
	// Absent patch fields never overwrite stored values.
	UpsertProperty(ctx context.Context, p *models.PropertyPatch) (uuid.UUID, UpsertResult, error)

	// UpsertDetails creates or merges the 1:1 details row of a property.
	UpsertDetails(ctx context.Context, propertyID uuid.UUID, d *models.DetailsPatch) (DetailsState, error)

	// SetMaxBid overwrites the derived max bid of a property's details.
	SetMaxBid(ctx context.Context, propertyID uuid.UUID, maxBid *float64) error

	// UpsertAuctionHistory creates or merges the participation keyed by
	// (property, auction name, auction date). Null name or date is a distinct
	// key component equal only to itself.
	UpsertAuctionHistory(ctx context.Context, propertyID uuid.UUID, a *models.AuctionPatch) (UpsertResult, error)

	// UpsertAuctionEvent creates or merges the calendar event keyed by
	// (name, auction date).
	UpsertAuctionEvent(ctx context.Context, e *models.EventPatch) (UpsertResult, error)
}

// ReconcileRepository is the write side of the property store.
type ReconcileRepository interface {
	// WithinRow runs fn in a single transaction. If fn returns an error every
	// write made through the RowWriter is discarded.
	WithinRow(ctx context.Context, fn func(RowWriter) error) error

	// LinkAuctionHistory sets auction_event_id on every unlinked history row
	// whose (name, date) exactly matches an event. Returns the number linked.
	LinkAuctionHistory(ctx context.Context) (int64, error)
}

// PropertyRepository is the read side of the property store.
type PropertyRepository interface {
	// FindByParcelID returns the property with its details and auction history.
	// Returns nil, nil if no property has the parcel id.
	FindByParcelID(ctx context.Context, parcelID string) (*models.PropertyView, error)
}

// Store is the full property store.
type Store interface {
	ReconcileRepository
	PropertyRepository
}
