package services

import (
	"fmt"
	"strconv"
	"strings"

	"realty-sync/models"
	"realty-sync/storage"
	"realty-sync/utils"
)

// Resolver finds persisted offers that describe the same physical unit and
// deletes all but the most recent one.
type Resolver struct {
	store  storage.OfferStore
	logger *utils.Logger
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store storage.OfferStore, logger *utils.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// dedupKey is the normalized composite identity of a unit: address and flat
// number case-folded and trimmed, total area formatted to two decimals.
// The textual two-decimal form is deliberate, it absorbs float rounding
// noise between feed revisions.
type dedupKey struct {
	address string
	flat    string
	area    string
}

func keyFor(o *models.Offer) dedupKey {
	return dedupKey{
		address: norm(o.Address),
		flat:    norm(o.NumberFlat),
		area:    strconv.FormatFloat(*o.AreaTotal, 'f', 2, 64),
	}
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FindDuplicates walks the dedup-eligible offers in store order and collects
// the ids of every offer whose key was already seen. Because the store
// orders each key group newest-first (last_update_date, then id), the first
// sighting is the record kept and all later ones are the stale duplicates.
// Offers lacking address, flat number or area never enter the scan.
func (r *Resolver) FindDuplicates() (toDelete []int64, scanned int, err error) {
	offers, err := r.store.OffersForDedup()
	if err != nil {
		return nil, 0, fmt.Errorf("dedup: %w", err)
	}

	seen := make(map[dedupKey]int64)
	for _, o := range offers {
		key := keyFor(o)
		if _, dup := seen[key]; dup {
			toDelete = append(toDelete, o.ID)
		} else {
			seen[key] = o.ID
		}
	}
	return toDelete, len(offers), nil
}

// Run performs one cleanup pass. With dryRun set it reports the candidate
// set without deleting anything; the candidate computation is identical
// either way.
func (r *Resolver) Run(dryRun bool) (*models.DedupReport, error) {
	toDelete, scanned, err := r.FindDuplicates()
	if err != nil {
		return nil, err
	}

	report := &models.DedupReport{Scanned: scanned, Duplicates: len(toDelete)}
	if len(toDelete) == 0 {
		r.logger.Info("[dedup] no duplicates among %d offers", scanned)
		return report, nil
	}

	r.logger.Info("[dedup] found %d duplicates among %d offers", len(toDelete), scanned)
	if dryRun {
		return report, nil
	}

	deleted, err := r.store.DeleteOffers(toDelete)
	if err != nil {
		return report, fmt.Errorf("dedup: delete: %w", err)
	}
	report.Deleted = int(deleted)
	r.logger.Info("[dedup] deleted %d offers", deleted)
	return report, nil
}
