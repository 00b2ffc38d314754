package storage

import (
	"sort"
	"sync"

	"realty-sync/models"
)

// MemoryStore is an in-memory OfferStore. It mirrors the PostgresStore
// semantics closely enough for the service tests, including the dedup
// scan ordering.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Offer
	byKey  map[string]int64 // internal_id -> surrogate id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		byID:   make(map[int64]*models.Offer),
		byKey:  make(map[string]int64),
	}
}

func (ms *MemoryStore) UpsertOffer(offer *models.Offer) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	clone := *offer
	if id, ok := ms.byKey[offer.InternalID]; ok {
		clone.ID = id
	} else {
		clone.ID = ms.nextID
		ms.nextID++
		ms.byKey[offer.InternalID] = clone.ID
	}
	ms.byID[clone.ID] = &clone
	return nil
}

func (ms *MemoryStore) CountOffers() (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.byID), nil
}

// GetByInternalID returns the stored offer for an internal id, or nil.
func (ms *MemoryStore) GetByInternalID(internalID string) *models.Offer {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if id, ok := ms.byKey[internalID]; ok {
		clone := *ms.byID[id]
		return &clone
	}
	return nil
}

func (ms *MemoryStore) FetchAll() ([]*models.Offer, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	offers := ms.snapshot()
	sort.Slice(offers, func(i, j int) bool {
		ti, tj := offers[i].LastUpdateDate, offers[j].LastUpdateDate
		switch {
		case ti == nil && tj == nil:
			return offers[i].InternalID < offers[j].InternalID
		case ti == nil:
			return true
		case tj == nil:
			return false
		case !ti.Equal(*tj):
			return ti.After(*tj)
		}
		return offers[i].InternalID < offers[j].InternalID
	})
	return offers, nil
}

func (ms *MemoryStore) OffersForDedup() ([]*models.Offer, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var offers []*models.Offer
	for _, o := range ms.snapshot() {
		if o.Address != "" && o.NumberFlat != "" && o.AreaTotal != nil {
			offers = append(offers, o)
		}
	}

	// Matches the SQL ordering: address, number_flat, area_total ascending,
	// then last_update_date and id descending (nulls first, as Postgres
	// sorts DESC).
	sort.Slice(offers, func(i, j int) bool {
		a, b := offers[i], offers[j]
		if a.Address != b.Address {
			return a.Address < b.Address
		}
		if a.NumberFlat != b.NumberFlat {
			return a.NumberFlat < b.NumberFlat
		}
		if *a.AreaTotal != *b.AreaTotal {
			return *a.AreaTotal < *b.AreaTotal
		}
		ta, tb := a.LastUpdateDate, b.LastUpdateDate
		switch {
		case ta == nil && tb != nil:
			return true
		case ta != nil && tb == nil:
			return false
		case ta != nil && tb != nil && !ta.Equal(*tb):
			return ta.After(*tb)
		}
		return a.ID > b.ID
	})
	return offers, nil
}

func (ms *MemoryStore) OffersWithPhotos(limit int) ([]*models.Offer, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var offers []*models.Offer
	for _, o := range ms.snapshot() {
		if o.Photos != "" {
			offers = append(offers, o)
		}
	}
	sort.Slice(offers, func(i, j int) bool { return offers[i].ID < offers[j].ID })
	if limit > 0 && len(offers) > limit {
		offers = offers[:limit]
	}
	return offers, nil
}

func (ms *MemoryStore) UpdateOfferPhotos(id int64, photos string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if o, ok := ms.byID[id]; ok {
		o.Photos = photos
	}
	return nil
}

func (ms *MemoryStore) DeleteOffers(ids []int64) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		o, ok := ms.byID[id]
		if !ok {
			continue
		}
		delete(ms.byID, id)
		delete(ms.byKey, o.InternalID)
		deleted++
	}
	return deleted, nil
}

func (ms *MemoryStore) Close() error { return nil }

// snapshot copies the current offers so callers never alias internal state.
// Callers must hold ms.mu.
func (ms *MemoryStore) snapshot() []*models.Offer {
	offers := make([]*models.Offer, 0, len(ms.byID))
	for _, o := range ms.byID {
		clone := *o
		offers = append(offers, &clone)
	}
	return offers
}
