package repository

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/taxsale/api/internal/models"
)

const dayLayout = "2006-01-02"

// historyKey mirrors the (property, name, date) unique constraint with
// NULLS NOT DISTINCT semantics: a null component equals only another null.
type historyKey struct {
	propertyID uuid.UUID
	name       string
	date       string
	hasName    bool
	hasDate    bool
}

type eventKey struct {
	name string
	date string
}

func newHistoryKey(propertyID uuid.UUID, name *string, date *time.Time) historyKey {
	k := historyKey{propertyID: propertyID}
	if name != nil {
		k.name, k.hasName = *name, true
	}
	if date != nil {
		k.date, k.hasDate = date.Format(dayLayout), true
	}
	return k
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store with the same merge, dedup and link
// semantics as the PostgreSQL store. It backs dry runs and tests.
type MemoryStore struct {
	mu         sync.Mutex
	properties map[string]*models.Property
	details    map[uuid.UUID]*models.PropertyDetails
	history    map[historyKey]*models.AuctionHistory
	events     map[eventKey]*models.AuctionEvent
	nextID     int64
	now        func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties: make(map[string]*models.Property),
		details:    make(map[uuid.UUID]*models.PropertyDetails),
		history:    make(map[historyKey]*models.AuctionHistory),
		events:     make(map[eventKey]*models.AuctionEvent),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithinRow runs fn while holding the store lock. Rows are therefore applied
// one at a time, and a failing fn has all of its writes undone.
func (s *MemoryStore) WithinRow(ctx context.Context, fn func(RowWriter) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memRowWriter{store: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// LinkAuctionHistory links unlinked history rows to events by exact key.
func (s *MemoryStore) LinkAuctionHistory(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var linked int64
	for _, h := range s.history {
		if h.AuctionEventID != nil || h.AuctionName == nil || h.AuctionDate == nil {
			continue
		}
		ev, ok := s.events[eventKey{name: *h.AuctionName, date: h.AuctionDate.Format(dayLayout)}]
		if !ok {
			continue
		}
		id := ev.ID
		h.AuctionEventID = &id
		h.UpdatedAt = s.now()
		linked++
	}
	return linked, nil
}

// FindByParcelID returns deep copies of the stored property, details and
// history.
func (s *MemoryStore) FindByParcelID(ctx context.Context, parcelID string) (*models.PropertyView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[parcelID]
	if !ok {
		return nil, nil
	}

	view := &models.PropertyView{Property: *p}
	detach(&view.Property)
	if d, ok := s.details[p.ID]; ok {
		view.Details = clone(d)
		detach(view.Details)
	}
	for _, h := range s.history {
		if h.PropertyID == p.ID {
			cp := *h
			detach(&cp)
			view.History = append(view.History, cp)
		}
	}
	sort.Slice(view.History, func(i, j int) bool {
		a, b := view.History[i].AuctionDate, view.History[j].AuctionDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a == nil && b != nil:
			return false
		case a != nil && b == nil:
			return true
		}
		return view.History[i].ID < view.History[j].ID
	})
	return view, nil
}

// Events returns a copy of every stored auction event.
func (s *MemoryStore) Events() []models.AuctionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.AuctionEvent, 0, len(s.events))
	for _, e := range s.events {
		cp := *e
		detach(&cp)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Counts reports how many properties, history rows and events are stored.
func (s *MemoryStore) Counts() (properties, history, events int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.properties), len(s.history), len(s.events)
}

// memRowWriter mutates the store in place and records how to undo each write.
// The store lock is held by WithinRow for its whole lifetime.
type memRowWriter struct {
	store *MemoryStore
	undo  []func()
}

func (w *memRowWriter) rollback() {
	for i := len(w.undo) - 1; i >= 0; i-- {
		w.undo[i]()
	}
	w.undo = nil
}

func (w *memRowWriter) nextID() int64 {
	w.store.nextID++
	return w.store.nextID
}

// clone copies the value behind p so the store never shares memory with
// callers.
func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func merge[T any](dst **T, src *T) {
	if src != nil {
		*dst = clone(src)
	}
}

// detach replaces every pointer field of the struct behind v with a pointer to
// a fresh copy.
func detach(v any) {
	rv := reflect.ValueOf(v).Elem()
	for i := range rv.NumField() {
		f := rv.Field(i)
		if f.Kind() != reflect.Pointer || f.IsNil() || !f.CanSet() {
			continue
		}
		c := reflect.New(f.Elem().Type())
		c.Elem().Set(f.Elem())
		f.Set(c)
	}
}

func (w *memRowWriter) UpsertProperty(ctx context.Context, p *models.PropertyPatch) (uuid.UUID, UpsertResult, error) {
	s := w.store
	now := s.now()

	existing, ok := s.properties[p.ParcelID]
	if !ok {
		parcelID := p.ParcelID
		prop := &models.Property{
			ID:        uuid.New(),
			ParcelID:  &parcelID,
			Status:    models.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyProperty(prop, p)
		s.properties[p.ParcelID] = prop
		w.undo = append(w.undo, func() { delete(s.properties, parcelID) })
		return prop.ID, UpsertResult{Inserted: true}, nil
	}

	prev := *existing
	w.undo = append(w.undo, func() { *existing = prev })
	applyProperty(existing, p)
	existing.UpdatedAt = now
	return existing.ID, UpsertResult{Inserted: false}, nil
}

func applyProperty(dst *models.Property, p *models.PropertyPatch) {
	merge(&dst.Address, p.Address)
	merge(&dst.City, p.City)
	merge(&dst.State, p.State)
	merge(&dst.ZipCode, p.ZipCode)
	merge(&dst.County, p.County)
	if p.Status != nil {
		dst.Status = *p.Status
	}
	merge(&dst.AmountDue, p.AmountDue)
	merge(&dst.NextAuctionDate, p.NextAuctionDate)
	merge(&dst.OwnerName, p.OwnerName)
	merge(&dst.OwnerAddress, p.OwnerAddress)
	merge(&dst.LegalDescription, p.LegalDescription)
	if p.Latitude != nil {
		dst.Latitude = clone(p.Latitude)
		dst.Longitude = clone(p.Longitude)
	}
}

func (w *memRowWriter) UpsertDetails(ctx context.Context, propertyID uuid.UUID, d *models.DetailsPatch) (DetailsState, error) {
	s := w.store
	now := s.now()

	existing, ok := s.details[propertyID]
	if !ok {
		existing = &models.PropertyDetails{PropertyID: propertyID, CreatedAt: now}
		s.details[propertyID] = existing
		w.undo = append(w.undo, func() { delete(s.details, propertyID) })
	} else {
		prev := *existing
		w.undo = append(w.undo, func() { *existing = prev })
	}

	merge(&existing.AssessedValue, d.AssessedValue)
	merge(&existing.LandValue, d.LandValue)
	merge(&existing.ImprovementValue, d.ImprovementValue)
	merge(&existing.TotalMarketValue, d.TotalMarketValue)
	merge(&existing.EstimatedValue, d.EstimatedValue)
	merge(&existing.RentalValue, d.RentalValue)
	merge(&existing.LotAcres, d.LotAcres)
	merge(&existing.Sqft, d.Sqft)
	merge(&existing.YearBuilt, d.YearBuilt)
	merge(&existing.TaxYear, d.TaxYear)
	merge(&existing.AccountNumber, d.AccountNumber)
	merge(&existing.FloodZoneCode, d.FloodZoneCode)
	merge(&existing.MarketValueURL, d.MarketValueURL)
	merge(&existing.CSNumber, d.CSNumber)
	merge(&existing.TaxSaleYear, d.TaxSaleYear)
	merge(&existing.DelinquentYear, d.DelinquentYear)
	merge(&existing.ParcelType, d.ParcelType)
	merge(&existing.OpportunityZone, d.OpportunityZone)
	existing.UpdatedAt = now

	return DetailsState{EstimatedValue: existing.EstimatedValue, MaxBid: existing.MaxBid}, nil
}

func (w *memRowWriter) SetMaxBid(ctx context.Context, propertyID uuid.UUID, maxBid *float64) error {
	existing, ok := w.store.details[propertyID]
	if !ok {
		return nil
	}
	prev := *existing
	w.undo = append(w.undo, func() { *existing = prev })
	existing.MaxBid = clone(maxBid)
	existing.UpdatedAt = w.store.now()
	return nil
}

func (w *memRowWriter) UpsertAuctionHistory(ctx context.Context, propertyID uuid.UUID, a *models.AuctionPatch) (UpsertResult, error) {
	s := w.store
	now := s.now()
	key := newHistoryKey(propertyID, a.AuctionName, a.AuctionDate)

	existing, ok := s.history[key]
	if !ok {
		existing = &models.AuctionHistory{
			ID:          w.nextID(),
			PropertyID:  propertyID,
			AuctionName: clone(a.AuctionName),
			AuctionDate: clone(a.AuctionDate),
			CreatedAt:   now,
		}
		s.history[key] = existing
		w.undo = append(w.undo, func() { delete(s.history, key) })
	} else {
		prev := *existing
		w.undo = append(w.undo, func() { *existing = prev })
	}

	merge(&existing.Location, a.Location)
	merge(&existing.ListedAs, a.ListedAs)
	merge(&existing.TaxesDue, a.TaxesDue)
	merge(&existing.InfoLink, a.InfoLink)
	merge(&existing.ListLink, a.ListLink)
	merge(&existing.AuctionType, a.AuctionType)
	merge(&existing.CaseNumber, a.CaseNumber)
	merge(&existing.CertificateNumber, a.CertificateNumber)
	merge(&existing.OpeningBid, a.OpeningBid)
	merge(&existing.SoldAmount, a.SoldAmount)
	merge(&existing.SoldTo, a.SoldTo)
	merge(&existing.StatusDetail, a.StatusDetail)
	merge(&existing.RawText, a.RawText)
	existing.UpdatedAt = now

	return UpsertResult{Inserted: !ok}, nil
}

func (w *memRowWriter) UpsertAuctionEvent(ctx context.Context, e *models.EventPatch) (UpsertResult, error) {
	s := w.store
	now := s.now()
	key := eventKey{name: e.Name, date: e.AuctionDate.Format(dayLayout)}

	existing, ok := s.events[key]
	if !ok {
		existing = &models.AuctionEvent{
			ID:          w.nextID(),
			Name:        e.Name,
			AuctionDate: e.AuctionDate,
			CreatedAt:   now,
		}
		s.events[key] = existing
		w.undo = append(w.undo, func() { delete(s.events, key) })
	} else {
		prev := *existing
		w.undo = append(w.undo, func() { *existing = prev })
	}

	merge(&existing.ShortName, e.ShortName)
	merge(&existing.Time, e.Time)
	merge(&existing.Location, e.Location)
	merge(&existing.County, e.County)
	merge(&existing.CountyCode, e.CountyCode)
	merge(&existing.State, e.State)
	merge(&existing.TaxStatus, e.TaxStatus)
	merge(&existing.ParcelsCount, e.ParcelsCount)
	merge(&existing.Notes, e.Notes)
	merge(&existing.SearchLink, e.SearchLink)
	merge(&existing.RegisterDate, e.RegisterDate)
	merge(&existing.RegisterLink, e.RegisterLink)
	merge(&existing.ListLink, e.ListLink)
	merge(&existing.PurchaseInfoLink, e.PurchaseInfoLink)
	existing.UpdatedAt = now

	return UpsertResult{Inserted: !ok}, nil
}
