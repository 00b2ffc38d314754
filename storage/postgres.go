package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"realty-sync/models"
	"realty-sync/utils"
)

// PostgresStore persists offers to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// offerColumns lists every non-surrogate column in insert order.
// internal_id comes first; everything after it is overwritten on conflict.
var offerColumns = []string{
	"internal_id",
	"case_id", "deal_type", "property_type", "category", "deal_status", "deal_state",
	"creation_date", "last_update_date",
	"country", "region", "district", "locality_name", "sub_locality_name", "address",
	"latitude", "longitude",
	"metro_name", "metro_time_on_foot", "metro_time_on_transport",
	"price", "price_base", "price_cost", "currency",
	"area_total", "area_living", "area_kitchen", "area_lot", "area_balcony",
	"rooms", "floor", "floors_total", "ceiling_height",
	"is_new_flat", "is_apartments", "is_studio",
	"building_id", "building_name", "building_state", "building_phase",
	"building_type", "building_section", "building_material", "building_year", "brand",
	"decoration_type", "number_flat", "entrance", "section",
	"photos", "description",
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS offers (
			id                      SERIAL PRIMARY KEY,
			internal_id             VARCHAR(64)  UNIQUE NOT NULL,
			case_id                 VARCHAR(64)  NOT NULL DEFAULT '',
			deal_type               VARCHAR(50)  NOT NULL DEFAULT '',
			property_type           VARCHAR(50)  NOT NULL DEFAULT '',
			category                VARCHAR(50)  NOT NULL DEFAULT '',
			deal_status             VARCHAR(100) NOT NULL DEFAULT '',
			deal_state              VARCHAR(100) NOT NULL DEFAULT '',
			creation_date           TIMESTAMPTZ,
			last_update_date        TIMESTAMPTZ,
			country                 VARCHAR(100) NOT NULL DEFAULT '',
			region                  VARCHAR(100) NOT NULL DEFAULT '',
			district                VARCHAR(100) NOT NULL DEFAULT '',
			locality_name           VARCHAR(150) NOT NULL DEFAULT '',
			sub_locality_name       VARCHAR(150) NOT NULL DEFAULT '',
			address                 VARCHAR(255) NOT NULL DEFAULT '',
			latitude                NUMERIC(9,6),
			longitude               NUMERIC(9,6),
			metro_name              VARCHAR(100) NOT NULL DEFAULT '',
			metro_time_on_foot      INTEGER,
			metro_time_on_transport INTEGER,
			price                   NUMERIC(18,2),
			price_base              NUMERIC(18,2),
			price_cost              NUMERIC(18,2),
			currency                VARCHAR(10)  NOT NULL DEFAULT '',
			area_total              NUMERIC(10,2),
			area_living             NUMERIC(10,2),
			area_kitchen            NUMERIC(10,2),
			area_lot                NUMERIC(10,2),
			area_balcony            NUMERIC(10,2),
			rooms                   INTEGER,
			floor                   INTEGER,
			floors_total            INTEGER,
			ceiling_height          NUMERIC(5,2),
			is_new_flat             BOOLEAN NOT NULL DEFAULT FALSE,
			is_apartments           BOOLEAN NOT NULL DEFAULT FALSE,
			is_studio               BOOLEAN NOT NULL DEFAULT FALSE,
			building_id             VARCHAR(64)  NOT NULL DEFAULT '',
			building_name           VARCHAR(150) NOT NULL DEFAULT '',
			building_state          VARCHAR(100) NOT NULL DEFAULT '',
			building_phase          VARCHAR(100) NOT NULL DEFAULT '',
			building_type           VARCHAR(100) NOT NULL DEFAULT '',
			building_section        VARCHAR(100) NOT NULL DEFAULT '',
			building_material       VARCHAR(100) NOT NULL DEFAULT '',
			building_year           VARCHAR(50)  NOT NULL DEFAULT '',
			brand                   VARCHAR(100) NOT NULL DEFAULT '',
			decoration_type         VARCHAR(100) NOT NULL DEFAULT '',
			number_flat             VARCHAR(50)  NOT NULL DEFAULT '',
			entrance                VARCHAR(50)  NOT NULL DEFAULT '',
			section                 VARCHAR(50)  NOT NULL DEFAULT '',
			photos                  TEXT NOT NULL DEFAULT '',
			description             TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_offers_address     ON offers(address);
		CREATE INDEX IF NOT EXISTS idx_offers_region      ON offers(region);
		CREATE INDEX IF NOT EXISTS idx_offers_last_update ON offers(last_update_date);
	`)
	return err
}

// UpsertOffer inserts or overwrites a single offer keyed by internal_id.
// Each call is one implicit transaction, so a failure never rolls back
// offers committed earlier in the same feed.
func (ps *PostgresStore) UpsertOffer(offer *models.Offer) error {
	placeholders := make([]string, len(offerColumns))
	for i := range offerColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	updates := make([]string, 0, len(offerColumns)-1)
	for _, col := range offerColumns[1:] {
		updates = append(updates, col+" = EXCLUDED."+col)
	}

	query := fmt.Sprintf(`
		INSERT INTO offers (%s)
		VALUES (%s)
		ON CONFLICT (internal_id) DO UPDATE SET %s
	`, strings.Join(offerColumns, ", "), strings.Join(placeholders, ","), strings.Join(updates, ", "))

	_, err := ps.db.Exec(query, offerArgs(offer)...)
	if err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", offer.InternalID, err)
	}
	return nil
}

func offerArgs(o *models.Offer) []interface{} {
	return []interface{}{
		o.InternalID,
		o.CaseID, o.DealType, o.PropertyType, o.Category, o.DealStatus, o.DealState,
		o.CreationDate, o.LastUpdateDate,
		o.Country, o.Region, o.District, o.LocalityName, o.SubLocalityName, o.Address,
		o.Latitude, o.Longitude,
		o.MetroName, o.MetroTimeOnFoot, o.MetroTimeOnTransport,
		o.Price, o.PriceBase, o.PriceCost, o.Currency,
		o.AreaTotal, o.AreaLiving, o.AreaKitchen, o.AreaLot, o.AreaBalcony,
		o.Rooms, o.Floor, o.FloorsTotal, o.CeilingHeight,
		o.IsNewFlat, o.IsApartments, o.IsStudio,
		o.BuildingID, o.BuildingName, o.BuildingState, o.BuildingPhase,
		o.BuildingType, o.BuildingSection, o.BuildingMaterial, o.BuildingYear, o.Brand,
		o.DecorationType, o.NumberFlat, o.Entrance, o.Section,
		o.Photos, o.Description,
	}
}

// CountOffers returns the total number of persisted offers.
func (ps *PostgresStore) CountOffers() (int, error) {
	var n int
	if err := ps.db.QueryRow("SELECT COUNT(*) FROM offers").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

const selectOffer = `
	SELECT id, internal_id,
	       case_id, deal_type, property_type, category, deal_status, deal_state,
	       creation_date, last_update_date,
	       country, region, district, locality_name, sub_locality_name, address,
	       latitude, longitude,
	       metro_name, metro_time_on_foot, metro_time_on_transport,
	       price, price_base, price_cost, currency,
	       area_total, area_living, area_kitchen, area_lot, area_balcony,
	       rooms, floor, floors_total, ceiling_height,
	       is_new_flat, is_apartments, is_studio,
	       building_id, building_name, building_state, building_phase,
	       building_type, building_section, building_material, building_year, brand,
	       decoration_type, number_flat, entrance, section,
	       photos, description
	FROM offers
`

// FetchAll retrieves all stored offers, newest update first.
func (ps *PostgresStore) FetchAll() ([]*models.Offer, error) {
	return ps.queryOffers(selectOffer + " ORDER BY last_update_date DESC, internal_id")
}

// OffersForDedup returns the dedup-eligible offers in the exact ordering the
// resolver's keep-newest walk depends on.
func (ps *PostgresStore) OffersForDedup() ([]*models.Offer, error) {
	return ps.queryOffers(selectOffer + `
		WHERE address <> '' AND number_flat <> '' AND area_total IS NOT NULL
		ORDER BY address, number_flat, area_total, last_update_date DESC, id DESC
	`)
}

// OffersWithPhotos returns up to limit offers that carry photo URLs.
func (ps *PostgresStore) OffersWithPhotos(limit int) ([]*models.Offer, error) {
	return ps.queryOffers(selectOffer+" WHERE photos <> '' ORDER BY id LIMIT $1", limit)
}

func (ps *PostgresStore) queryOffers(query string, args ...interface{}) ([]*models.Offer, error) {
	rows, err := ps.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query offers: %w", err)
	}
	defer rows.Close()

	var offers []*models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func scanOffer(rows *sql.Rows) (*models.Offer, error) {
	var (
		o                                 models.Offer
		creationDate, lastUpdateDate      sql.NullTime
		latitude, longitude               sql.NullFloat64
		metroFoot, metroTransport         sql.NullInt64
		price, priceBase, priceCost       sql.NullFloat64
		areaTotal, areaLiving             sql.NullFloat64
		areaKitchen, areaLot, areaBalcony sql.NullFloat64
		rooms, floor, floorsTotal         sql.NullInt64
		ceilingHeight                     sql.NullFloat64
	)

	err := rows.Scan(
		&o.ID, &o.InternalID,
		&o.CaseID, &o.DealType, &o.PropertyType, &o.Category, &o.DealStatus, &o.DealState,
		&creationDate, &lastUpdateDate,
		&o.Country, &o.Region, &o.District, &o.LocalityName, &o.SubLocalityName, &o.Address,
		&latitude, &longitude,
		&o.MetroName, &metroFoot, &metroTransport,
		&price, &priceBase, &priceCost, &o.Currency,
		&areaTotal, &areaLiving, &areaKitchen, &areaLot, &areaBalcony,
		&rooms, &floor, &floorsTotal, &ceilingHeight,
		&o.IsNewFlat, &o.IsApartments, &o.IsStudio,
		&o.BuildingID, &o.BuildingName, &o.BuildingState, &o.BuildingPhase,
		&o.BuildingType, &o.BuildingSection, &o.BuildingMaterial, &o.BuildingYear, &o.Brand,
		&o.DecorationType, &o.NumberFlat, &o.Entrance, &o.Section,
		&o.Photos, &o.Description,
	)
	if err != nil {
		return nil, err
	}

	o.CreationDate = nullTime(creationDate)
	o.LastUpdateDate = nullTime(lastUpdateDate)
	o.Latitude = nullFloat(latitude)
	o.Longitude = nullFloat(longitude)
	o.MetroTimeOnFoot = nullInt(metroFoot)
	o.MetroTimeOnTransport = nullInt(metroTransport)
	o.Price = nullFloat(price)
	o.PriceBase = nullFloat(priceBase)
	o.PriceCost = nullFloat(priceCost)
	o.AreaTotal = nullFloat(areaTotal)
	o.AreaLiving = nullFloat(areaLiving)
	o.AreaKitchen = nullFloat(areaKitchen)
	o.AreaLot = nullFloat(areaLot)
	o.AreaBalcony = nullFloat(areaBalcony)
	o.Rooms = nullInt(rooms)
	o.Floor = nullInt(floor)
	o.FloorsTotal = nullInt(floorsTotal)
	o.CeilingHeight = nullFloat(ceilingHeight)

	return &o, nil
}

func nullTime(v sql.NullTime) *time.Time {
	if v.Valid {
		t := v.Time
		return &t
	}
	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if v.Valid {
		f := v.Float64
		return &f
	}
	return nil
}

func nullInt(v sql.NullInt64) *int {
	if v.Valid {
		n := int(v.Int64)
		return &n
	}
	return nil
}

// UpdateOfferPhotos rewrites the photo field of a single offer.
func (ps *PostgresStore) UpdateOfferPhotos(id int64, photos string) error {
	_, err := ps.db.Exec("UPDATE offers SET photos = $2 WHERE id = $1", id, photos)
	if err != nil {
		return fmt.Errorf("postgres: update photos for %d: %w", id, err)
	}
	return nil
}

// DeleteOffers removes offers by surrogate id in one statement.
func (ps *PostgresStore) DeleteOffers(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := ps.db.Exec("DELETE FROM offers WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("postgres: delete offers: %w", err)
	}
	return res.RowsAffected()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
