package services

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"realty-sync/models"
	"realty-sync/storage"
	"realty-sync/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

const importFeed = `<?xml version="1.0" encoding="UTF-8"?>
<realty-feed xmlns="http://webmaster.yandex.ru/schemas/feed/realty/2010-06">
  <Offer internal-id="1">
    <location><address>Ленина 5</address></location>
    <area><value>55,5</value></area>
    <rooms>2</rooms>
  </Offer>
  <Offer internal-id="2">
    <location><address>Мира 7</address></location>
    <rooms>1</rooms>
  </Offer>
  <Offer>
    <location><address>без идентификатора</address></location>
  </Offer>
  <Offer internal-id="2">
    <location><address>Мира 7, корп. 2</address></location>
    <rooms>3</rooms>
  </Offer>
</realty-feed>
`

func writeImportFeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(importFeed), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImporterCountsAndSkips(t *testing.T) {
	store := storage.NewMemoryStore()
	importer := NewImporter(store, newTestLogger())

	report, err := importer.Run(writeImportFeed(t))
	if err != nil {
		t.Fatal(err)
	}
	// Three upserts happen (id 2 twice), one element has no identifier.
	if report.Imported != 3 || report.Skipped != 1 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	if n, _ := store.CountOffers(); n != 2 {
		t.Errorf("stored offers = %d, want 2", n)
	}
}

func TestImporterRepeatedIDLastWins(t *testing.T) {
	store := storage.NewMemoryStore()
	importer := NewImporter(store, newTestLogger())
	if _, err := importer.Run(writeImportFeed(t)); err != nil {
		t.Fatal(err)
	}

	o := store.GetByInternalID("2")
	if o == nil {
		t.Fatal("offer 2 not stored")
	}
	if o.Address != "Мира 7, корп. 2" || o.Rooms == nil || *o.Rooms != 3 {
		t.Errorf("offer 2 = %q / %v, want the later sighting", o.Address, o.Rooms)
	}
}

func TestImporterIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	importer := NewImporter(store, newTestLogger())
	path := writeImportFeed(t)

	if _, err := importer.Run(path); err != nil {
		t.Fatal(err)
	}
	first, _ := store.FetchAll()

	if _, err := importer.Run(path); err != nil {
		t.Fatal(err)
	}
	second, _ := store.FetchAll()

	if len(first) != len(second) {
		t.Fatalf("row count changed: %d -> %d", len(first), len(second))
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("re-importing an unchanged feed altered stored fields")
	}
}

func TestImporterMissingFeedIsFatal(t *testing.T) {
	importer := NewImporter(storage.NewMemoryStore(), newTestLogger())
	if _, err := importer.Run(filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Error("expected error for missing feed path")
	}
}

// failingStore rejects one internal id to exercise the keep-going path.
type failingStore struct {
	*storage.MemoryStore
	rejectID string
}

func (fs *failingStore) UpsertOffer(offer *models.Offer) error {
	if offer.InternalID == fs.rejectID {
		return errors.New("constraint violation")
	}
	return fs.MemoryStore.UpsertOffer(offer)
}

func TestImporterContinuesPastUpsertFailure(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), rejectID: "1"}
	importer := NewImporter(store, newTestLogger())

	report, err := importer.Run(writeImportFeed(t))
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed != 1 {
		t.Errorf("failed = %d, want 1", report.Failed)
	}
	if report.Imported != 2 {
		t.Errorf("imported = %d, want 2 (processing must continue)", report.Imported)
	}
	if store.GetByInternalID("2") == nil {
		t.Error("offer after the failing one was not stored")
	}
}
