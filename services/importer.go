package services

import (
	"errors"
	"fmt"
	"io"

	"realty-sync/feed/setl"
	"realty-sync/models"
	"realty-sync/storage"
	"realty-sync/utils"
)

// Importer drives one pass over the Setl feed and upserts every listing
// into storage, keyed by internal id.
type Importer struct {
	store  storage.OfferStore
	logger *utils.Logger
}

// NewImporter creates an Importer writing to the given store.
func NewImporter(store storage.OfferStore, logger *utils.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Run ingests the feed at path. The only hard failure is a feed that cannot
// be opened or read; a single offer failing to persist is logged, counted
// and skipped so the rest of the file still lands. When an internal id
// repeats within one file the later sighting wins, matching feed order.
func (im *Importer) Run(path string) (*models.ImportReport, error) {
	reader, err := setl.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	defer reader.Close()

	report := &models.ImportReport{}
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("import: %w", err)
		}

		if err := im.store.UpsertOffer(&rec.Offer); err != nil {
			im.logger.Warn("[import] offer %s not saved: %v", rec.InternalID, err)
			report.Failed++
			continue
		}
		report.Imported++
	}
	report.Skipped = reader.Skipped()

	im.logger.Info("[import] done: %d imported, %d skipped, %d failed",
		report.Imported, report.Skipped, report.Failed)
	return report, nil
}
