package mirror

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sjsage522/listingtracker/internal/listing"
	"sjsage522/listingtracker/logger"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// DefaultBatchSize is the number of upserts sent per round trip
const DefaultBatchSize = 200

const createTable = `CREATE TABLE IF NOT EXISTS listings (
	id               TEXT PRIMARY KEY,
	portal_id        TEXT,
	address          TEXT NOT NULL,
	price            TEXT,
	beds             INTEGER,
	baths            INTEGER,
	property_type    TEXT,
	estate_agent     TEXT,
	ber_rating       TEXT,
	floor_area       DOUBLE PRECISION,
	floor_area_unit  TEXT,
	longitude        DOUBLE PRECISION,
	latitude         DOUBLE PRECISION,
	publish_date     DATE,
	description      TEXT,
	features         TEXT,
	view_count       INTEGER,
	small_area       TEXT,
	county_area      TEXT,
	constituency     TEXT,
	province         TEXT,
	local_electoral  TEXT,
	county           TEXT,
	currently_listed BOOLEAN NOT NULL,
	sold             BOOLEAN NOT NULL,
	date_scraped     DATE NOT NULL
)`

// Only the flags move on conflict; everything else keeps its first-written value.
const upsertListing = `INSERT INTO listings
	(id, portal_id, address, price, beds, baths, property_type, estate_agent, ber_rating,
	 floor_area, floor_area_unit, longitude, latitude, publish_date, description, features,
	 view_count, small_area, county_area, constituency, province, local_electoral, county,
	 currently_listed, sold, date_scraped)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
	ON CONFLICT (id) DO UPDATE SET
	 currently_listed = EXCLUDED.currently_listed,
	 sold = EXCLUDED.sold`

// Mirror copies a dataset into an external store
type Mirror interface {
	Sync(ctx context.Context, ds *listing.Dataset) (int, error)
	Close()
}

// PostgresMirror upserts listings into a Postgres table
type PostgresMirror struct {
	pool  *pgxpool.Pool
	batch int
	log   *logger.Logger
}

// NewPostgresMirror opens a pool for dsn and makes sure the table exists
func NewPostgresMirror(ctx context.Context, dsn string, batch int, log *logger.Logger) (*PostgresMirror, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperrors.NewConfiguration("invalid PG_DSN", err)
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, apperrors.NewStorage("postgres", "failed to connect", err)
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if log == nil {
		log = logger.Nop()
	}

	m := &PostgresMirror{pool: pool, batch: batch, log: log}
	if err := m.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return m, nil
}

// EnsureTable creates the listings table when missing
func (m *PostgresMirror) EnsureTable(ctx context.Context) error {
	if _, err := m.pool.Exec(ctx, createTable); err != nil {
		return apperrors.NewStorage("postgres", "failed to create listings table", err)
	}
	return nil
}

// Sync upserts every record of ds and returns the number of rows affected
func (m *PostgresMirror) Sync(ctx context.Context, ds *listing.Dataset) (int, error) {
	records := ds.Records()
	total := 0

	for i := 0; i < len(records); i += m.batch {
		j := min(i+m.batch, len(records))

		b := &pgx.Batch{}
		count := QueueUpserts(b, records[i:j])

		br := m.pool.SendBatch(ctx, b)
		for k := 0; k < count; k++ {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return total, apperrors.NewStorage("postgres", "upsert failed", err)
			}
			total += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return total, apperrors.NewStorage("postgres", "batch close failed", err)
		}
	}

	m.log.Debug().Int("rows", total).Msg("Mirrored dataset to postgres")
	return total, nil
}

// Close releases the pool
func (m *PostgresMirror) Close() {
	m.pool.Close()
}

// QueueUpserts adds one upsert per record to b, skipping rows without an id
func QueueUpserts(b *pgx.Batch, records []listing.Record) int {
	count := 0
	for _, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			continue
		}
		b.Queue(upsertListing, rowArgs(r)...)
		count++
	}
	return count
}

func rowArgs(r listing.Record) []any {
	var price *string
	if r.Price != nil {
		s := r.Price.String()
		price = &s
	}
	var ber *string
	if r.BER != nil {
		s := string(*r.BER)
		ber = &s
	}

	return []any{
		r.ID, r.PortalID, r.Address, price, r.Beds, r.Baths, r.PropertyType, r.EstateAgent, ber,
		r.FloorArea, r.FloorAreaUnit, r.Longitude, r.Latitude, r.PublishDate, r.Description, r.Features,
		r.ViewCount, r.Geo.SmallArea, r.Geo.CountyArea, r.Geo.Constituency, r.Geo.Province,
		r.Geo.LocalElectoral, r.Geo.County,
		r.CurrentlyListed, r.Sold, r.DateScraped,
	}
}
