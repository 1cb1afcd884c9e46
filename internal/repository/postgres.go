package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/taxsale/api/internal/database"
	"github.com/stwalsh4118/taxsale/api/internal/models"
)

// postgresStore is the PostgreSQL implementation of Store.
type postgresStore struct {
	db *database.Database
}

// NewPostgresStore creates a Store backed by the given connection pool.
func NewPostgresStore(db *database.Database) Store {
	return &postgresStore{
		db: db,
	}
}

// WithinRow runs fn inside a transaction, committing only if fn succeeds.
func (s *postgresStore) WithinRow(ctx context.Context, fn func(RowWriter) error) error {
	return pgx.BeginFunc(ctx, s.db.Pool, func(tx pgx.Tx) error {
		return fn(&pgRowWriter{tx: tx})
	})
}

// LinkAuctionHistory resolves unlinked history rows to calendar events by
// exact (name, date) match in a single statement.
func (s *postgresStore) LinkAuctionHistory(ctx context.Context) (int64, error) {
	query := `
		UPDATE auction_history h
		SET auction_event_id = e.id,
			updated_at = NOW()
		FROM auction_events e
		WHERE h.auction_event_id IS NULL
			AND h.auction_name = e.name
			AND h.auction_date = e.auction_date
	`

	tag, err := s.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to link auction history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FindByParcelID loads a property with its details and auction history.
func (s *postgresStore) FindByParcelID(ctx context.Context, parcelID string) (*models.PropertyView, error) {
	query := `
		SELECT
			id,
			parcel_id,
			address,
			city,
			state,
			zip_code,
			county,
			status,
			amount_due,
			next_auction_date,
			owner_name,
			owner_address,
			legal_description,
			latitude,
			longitude,
			created_at,
			updated_at
		FROM properties
		WHERE parcel_id = $1
	`

	var view models.PropertyView
	p := &view.Property
	err := s.db.Pool.QueryRow(ctx, query, parcelID).Scan(
		&p.ID,
		&p.ParcelID,
		&p.Address,
		&p.City,
		&p.State,
		&p.ZipCode,
		&p.County,
		&p.Status,
		&p.AmountDue,
		&p.NextAuctionDate,
		&p.OwnerName,
		&p.OwnerAddress,
		&p.LegalDescription,
		&p.Latitude,
		&p.Longitude,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %q: %w", parcelID, err)
	}

	rows, err := s.db.Pool.Query(ctx, `SELECT * FROM property_details WHERE property_id = $1`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query details for property %s: %w", p.ID, err)
	}
	details, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.PropertyDetails])
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to scan details for property %s: %w", p.ID, err)
	default:
		view.Details = details
	}

	rows, err = s.db.Pool.Query(ctx, `
		SELECT * FROM auction_history
		WHERE property_id = $1
		ORDER BY auction_date DESC NULLS LAST, id
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query auction history for property %s: %w", p.ID, err)
	}
	view.History, err = pgx.CollectRows(rows, pgx.RowToStructByName[models.AuctionHistory])
	if err != nil {
		return nil, fmt.Errorf("failed to scan auction history for property %s: %w", p.ID, err)
	}

	return &view, nil
}

// pgRowWriter performs upserts inside one transaction.
type pgRowWriter struct {
	tx pgx.Tx
}

func statusParam(s *models.PropertyStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func (w *pgRowWriter) UpsertProperty(ctx context.Context, p *models.PropertyPatch) (uuid.UUID, UpsertResult, error) {
	query := `
		INSERT INTO properties (
			id, parcel_id, address, city, state, zip_code, county, status,
			amount_due, next_auction_date, owner_name, owner_address,
			legal_description, latitude, longitude
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, COALESCE($8::varchar, 'active'),
			$9, $10, $11, $12, $13, $14, $15
		)
		ON CONFLICT (parcel_id) DO UPDATE SET
			address = COALESCE(EXCLUDED.address, properties.address),
			city = COALESCE(EXCLUDED.city, properties.city),
			state = COALESCE(EXCLUDED.state, properties.state),
			zip_code = COALESCE(EXCLUDED.zip_code, properties.zip_code),
			county = COALESCE(EXCLUDED.county, properties.county),
			status = COALESCE($8::varchar, properties.status),
			amount_due = COALESCE(EXCLUDED.amount_due, properties.amount_due),
			next_auction_date = COALESCE(EXCLUDED.next_auction_date, properties.next_auction_date),
			owner_name = COALESCE(EXCLUDED.owner_name, properties.owner_name),
			owner_address = COALESCE(EXCLUDED.owner_address, properties.owner_address),
			legal_description = COALESCE(EXCLUDED.legal_description, properties.legal_description),
			latitude = CASE WHEN EXCLUDED.latitude IS NULL THEN properties.latitude ELSE EXCLUDED.latitude END,
			longitude = CASE WHEN EXCLUDED.latitude IS NULL THEN properties.longitude ELSE EXCLUDED.longitude END,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted
	`

	var id uuid.UUID
	var res UpsertResult
	err := w.tx.QueryRow(ctx, query,
		uuid.New(),
		p.ParcelID,
		p.Address,
		p.City,
		p.State,
		p.ZipCode,
		p.County,
		statusParam(p.Status),
		p.AmountDue,
		p.NextAuctionDate,
		p.OwnerName,
		p.OwnerAddress,
		p.LegalDescription,
		p.Latitude,
		p.Longitude,
	).Scan(&id, &res.Inserted)
	if err != nil {
		return uuid.Nil, res, fmt.Errorf("failed to upsert property %q: %w", p.ParcelID, err)
	}
	return id, res, nil
}

func (w *pgRowWriter) UpsertDetails(ctx context.Context, propertyID uuid.UUID, d *models.DetailsPatch) (DetailsState, error) {
	query := `
		INSERT INTO property_details (
			property_id, assessed_value, land_value, improvement_value,
			total_market_value, estimated_value, rental_value, lot_acres,
			sqft, year_built, tax_year, account_number, flood_zone_code,
			market_value_url, cs_number, tax_sale_year, delinquent_year,
			parcel_type, opportunity_zone
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19
		)
		ON CONFLICT (property_id) DO UPDATE SET
			assessed_value = COALESCE(EXCLUDED.assessed_value, property_details.assessed_value),
			land_value = COALESCE(EXCLUDED.land_value, property_details.land_value),
			improvement_value = COALESCE(EXCLUDED.improvement_value, property_details.improvement_value),
			total_market_value = COALESCE(EXCLUDED.total_market_value, property_details.total_market_value),
			estimated_value = COALESCE(EXCLUDED.estimated_value, property_details.estimated_value),
			rental_value = COALESCE(EXCLUDED.rental_value, property_details.rental_value),
			lot_acres = COALESCE(EXCLUDED.lot_acres, property_details.lot_acres),
			sqft = COALESCE(EXCLUDED.sqft, property_details.sqft),
			year_built = COALESCE(EXCLUDED.year_built, property_details.year_built),
			tax_year = COALESCE(EXCLUDED.tax_year, property_details.tax_year),
			account_number = COALESCE(EXCLUDED.account_number, property_details.account_number),
			flood_zone_code = COALESCE(EXCLUDED.flood_zone_code, property_details.flood_zone_code),
			market_value_url = COALESCE(EXCLUDED.market_value_url, property_details.market_value_url),
			cs_number = COALESCE(EXCLUDED.cs_number, property_details.cs_number),
			tax_sale_year = COALESCE(EXCLUDED.tax_sale_year, property_details.tax_sale_year),
			delinquent_year = COALESCE(EXCLUDED.delinquent_year, property_details.delinquent_year),
			parcel_type = COALESCE(EXCLUDED.parcel_type, property_details.parcel_type),
			opportunity_zone = COALESCE(EXCLUDED.opportunity_zone, property_details.opportunity_zone),
			updated_at = NOW()
		RETURNING estimated_value, max_bid
	`

	var state DetailsState
	err := w.tx.QueryRow(ctx, query,
		propertyID,
		d.AssessedValue,
		d.LandValue,
		d.ImprovementValue,
		d.TotalMarketValue,
		d.EstimatedValue,
		d.RentalValue,
		d.LotAcres,
		d.Sqft,
		d.YearBuilt,
		d.TaxYear,
		d.AccountNumber,
		d.FloodZoneCode,
		d.MarketValueURL,
		d.CSNumber,
		d.TaxSaleYear,
		d.DelinquentYear,
		d.ParcelType,
		d.OpportunityZone,
	).Scan(&state.EstimatedValue, &state.MaxBid)
	if err != nil {
		return state, fmt.Errorf("failed to upsert details for property %s: %w", propertyID, err)
	}
	return state, nil
}

func (w *pgRowWriter) SetMaxBid(ctx context.Context, propertyID uuid.UUID, maxBid *float64) error {
	_, err := w.tx.Exec(ctx,
		`UPDATE property_details SET max_bid = $2, updated_at = NOW() WHERE property_id = $1`,
		propertyID, maxBid,
	)
	if err != nil {
		return fmt.Errorf("failed to set max bid for property %s: %w", propertyID, err)
	}
	return nil
}

func (w *pgRowWriter) UpsertAuctionHistory(ctx context.Context, propertyID uuid.UUID, a *models.AuctionPatch) (UpsertResult, error) {
	query := `
		INSERT INTO auction_history (
			property_id, auction_name, auction_date, location, listed_as,
			taxes_due, info_link, list_link, auction_type, case_number,
			certificate_number, opening_bid, sold_amount, sold_to,
			status_detail, raw_text
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT ON CONSTRAINT uq_auction_history_participation DO UPDATE SET
			location = COALESCE(EXCLUDED.location, auction_history.location),
			listed_as = COALESCE(EXCLUDED.listed_as, auction_history.listed_as),
			taxes_due = COALESCE(EXCLUDED.taxes_due, auction_history.taxes_due),
			info_link = COALESCE(EXCLUDED.info_link, auction_history.info_link),
			list_link = COALESCE(EXCLUDED.list_link, auction_history.list_link),
			auction_type = COALESCE(EXCLUDED.auction_type, auction_history.auction_type),
			case_number = COALESCE(EXCLUDED.case_number, auction_history.case_number),
			certificate_number = COALESCE(EXCLUDED.certificate_number, auction_history.certificate_number),
			opening_bid = COALESCE(EXCLUDED.opening_bid, auction_history.opening_bid),
			sold_amount = COALESCE(EXCLUDED.sold_amount, auction_history.sold_amount),
			sold_to = COALESCE(EXCLUDED.sold_to, auction_history.sold_to),
			status_detail = COALESCE(EXCLUDED.status_detail, auction_history.status_detail),
			raw_text = COALESCE(EXCLUDED.raw_text, auction_history.raw_text),
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var res UpsertResult
	err := w.tx.QueryRow(ctx, query,
		propertyID,
		a.AuctionName,
		a.AuctionDate,
		a.Location,
		a.ListedAs,
		a.TaxesDue,
		a.InfoLink,
		a.ListLink,
		a.AuctionType,
		a.CaseNumber,
		a.CertificateNumber,
		a.OpeningBid,
		a.SoldAmount,
		a.SoldTo,
		a.StatusDetail,
		a.RawText,
	).Scan(&res.Inserted)
	if err != nil {
		return res, fmt.Errorf("failed to upsert auction history for property %s: %w", propertyID, err)
	}
	return res, nil
}

func (w *pgRowWriter) UpsertAuctionEvent(ctx context.Context, e *models.EventPatch) (UpsertResult, error) {
	query := `
		INSERT INTO auction_events (
			name, auction_date, short_name, time, location, county,
			county_code, state, tax_status, parcels_count, notes,
			search_link, register_date, register_link, list_link,
			purchase_info_link
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT ON CONSTRAINT uq_auction_events_name_date DO UPDATE SET
			short_name = COALESCE(EXCLUDED.short_name, auction_events.short_name),
			time = COALESCE(EXCLUDED.time, auction_events.time),
			location = COALESCE(EXCLUDED.location, auction_events.location),
			county = COALESCE(EXCLUDED.county, auction_events.county),
			county_code = COALESCE(EXCLUDED.county_code, auction_events.county_code),
			state = COALESCE(EXCLUDED.state, auction_events.state),
			tax_status = COALESCE(EXCLUDED.tax_status, auction_events.tax_status),
			parcels_count = COALESCE(EXCLUDED.parcels_count, auction_events.parcels_count),
			notes = COALESCE(EXCLUDED.notes, auction_events.notes),
			search_link = COALESCE(EXCLUDED.search_link, auction_events.search_link),
			register_date = COALESCE(EXCLUDED.register_date, auction_events.register_date),
			register_link = COALESCE(EXCLUDED.register_link, auction_events.register_link),
			list_link = COALESCE(EXCLUDED.list_link, auction_events.list_link),
			purchase_info_link = COALESCE(EXCLUDED.purchase_info_link, auction_events.purchase_info_link),
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var res UpsertResult
	err := w.tx.QueryRow(ctx, query,
		e.Name,
		e.AuctionDate,
		e.ShortName,
		e.Time,
		e.Location,
		e.County,
		e.CountyCode,
		e.State,
		e.TaxStatus,
		e.ParcelsCount,
		e.Notes,
		e.SearchLink,
		e.RegisterDate,
		e.RegisterLink,
		e.ListLink,
		e.PurchaseInfoLink,
	).Scan(&res.Inserted)
	if err != nil {
		return res, fmt.Errorf("failed to upsert auction event %q: %w", e.Name, err)
	}
	return res, nil
}
