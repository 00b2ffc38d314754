package storage

import "realty-sync/models"

// OfferStore is the interface any offer storage backend must satisfy.
// Each mutating call is its own atomic unit; the ingestion loop relies on
// that to keep already-committed offers when a later upsert fails.
type OfferStore interface {
	// UpsertOffer inserts the offer or, when its internal id is already
	// present, overwrites every non-identity field unconditionally.
	UpsertOffer(offer *models.Offer) error

	// CountOffers returns the total number of persisted offers.
	CountOffers() (int, error)

	// FetchAll returns every offer, newest update first.
	FetchAll() ([]*models.Offer, error)

	// OffersForDedup returns offers eligible for duplicate detection:
	// non-empty address and flat number, non-null total area, ordered by
	// (address, number_flat, area_total, last_update_date desc, id desc).
	// The ordering is what makes the resolver keep the newest record.
	OffersForDedup() ([]*models.Offer, error)

	// OffersWithPhotos returns up to limit offers that carry photo URLs,
	// ordered by surrogate id.
	OffersWithPhotos(limit int) ([]*models.Offer, error)

	// UpdateOfferPhotos rewrites a single offer's photo field.
	UpdateOfferPhotos(id int64, photos string) error

	// DeleteOffers bulk-deletes offers by surrogate id and reports how
	// many rows went away.
	DeleteOffers(ids []int64) (int64, error)

	Close() error
}
