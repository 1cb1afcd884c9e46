package ingest

import (
	"context"

	"github.com/stwalsh4118/taxsale/api/internal/models"
	"github.com/stwalsh4118/taxsale/api/internal/normalize"
	"github.com/stwalsh4118/taxsale/api/internal/repository"
)

// DefaultMaxBidPercentage is the share of the estimated value used as max bid.
const DefaultMaxBidPercentage = 0.70

// Outcome reports what a single row did to its primary entity.
type Outcome struct {
	// Inserted is true when the property (or event) was created by this row.
	Inserted bool
}

// Upserter applies normalized records to the store, one transaction per row.
type Upserter struct {
	store     repository.ReconcileRepository
	maxBidPct float64
}

// NewUpserter creates an Upserter. A non-positive maxBidPct falls back to
// DefaultMaxBidPercentage.
func NewUpserter(store repository.ReconcileRepository, maxBidPct float64) *Upserter {
	if maxBidPct <= 0 {
		maxBidPct = DefaultMaxBidPercentage
	}
	return &Upserter{store: store, maxBidPct: maxBidPct}
}

// Apply upserts the property, then its details when any detail is present,
// then its auction participation when the row names an auction.
func (u *Upserter) Apply(ctx context.Context, rec *models.Record) (Outcome, error) {
	var out Outcome
	err := u.store.WithinRow(ctx, func(w repository.RowWriter) error {
		propertyID, res, err := w.UpsertProperty(ctx, &rec.Property)
		if err != nil {
			return err
		}
		out.Inserted = res.Inserted

		if !rec.Details.IsEmpty() {
			state, err := w.UpsertDetails(ctx, propertyID, &rec.Details)
			if err != nil {
				return err
			}
			maxBid := normalize.MaxBid(state.EstimatedValue, u.maxBidPct)
			if !sameAmount(maxBid, state.MaxBid) {
				if err := w.SetMaxBid(ctx, propertyID, maxBid); err != nil {
					return err
				}
			}
		}

		if rec.Auction.Participates() {
			if _, err := w.UpsertAuctionHistory(ctx, propertyID, &rec.Auction); err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// ApplyEvent upserts one auction calendar entry.
func (u *Upserter) ApplyEvent(ctx context.Context, ev *models.EventPatch) (Outcome, error) {
	var out Outcome
	err := u.store.WithinRow(ctx, func(w repository.RowWriter) error {
		res, err := w.UpsertAuctionEvent(ctx, ev)
		out.Inserted = res.Inserted
		return err
	})
	return out, err
}

func sameAmount(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
