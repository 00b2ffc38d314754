package setl

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"realty-sync/models"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<realty-feed xmlns="http://webmaster.yandex.ru/schemas/feed/realty/2010-06">
  <generation-date>2024-03-01T12:00:00+03:00</generation-date>
  <Offer internal-id="101">
    <type>продажа</type>
    <property-type>жилая</property-type>
    <category>квартира</category>
    <creation-date>2024-01-15T10:00:00Z</creation-date>
    <last-update-date>2024-02-20T08:30:00+03:00</last-update-date>
    <location>
      <country>Россия</country>
      <region>Санкт-Петербург</region>
      <address>Ленина 5</address>
      <latitude>59,93</latitude>
      <longitude>30.33</longitude>
    </location>
    <metro>
      <name>Площадь Ленина</name>
      <time-on-foot>10</time-on-foot>
    </metro>
    <price>
      <value>5500000,50</value>
      <currency>RUB</currency>
    </price>
    <area><value>55,50</value></area>
    <kitchen-space><value>12.3</value></kitchen-space>
    <rooms>2</rooms>
    <floor>3</floor>
    <floors-total>12</floors-total>
    <new-flat>да</new-flat>
    <studio>no</studio>
    <number-flat>12</number-flat>
    <image>http://example.com/1.jpg</image>
    <image tag="plan">http://example.com/plan.jpg</image>
    <image tag="floor">http://example.com/floor.jpg</image>
    <image>http://example.com/2.jpg</image>
    <description>Просторная квартира</description>
  </Offer>
  <Offer>
    <category>без идентификатора</category>
  </Offer>
  <Offer internal-id="102">
    <category>квартира</category>
    <location><address>Мира 7</address></location>
    <rooms>не число</rooms>
  </Offer>
</realty-feed>
`

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readRecords(t *testing.T, path string) ([]*models.FeedRecord, int) {
	t.Helper()
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var records []*models.FeedRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, r.Skipped()
		}
		if err != nil {
			t.Fatal(err)
		}
		records = append(records, rec)
	}
}

func TestReaderParsesOfferFields(t *testing.T) {
	records, _ := readRecords(t, writeFeed(t, testFeed))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	o := records[0].Offer
	if o.InternalID != "101" {
		t.Errorf("internal id = %q", o.InternalID)
	}
	if o.DealType != "продажа" || o.Category != "квартира" {
		t.Errorf("classification = %q / %q", o.DealType, o.Category)
	}
	if o.Address != "Ленина 5" || o.Region != "Санкт-Петербург" {
		t.Errorf("location = %q / %q", o.Address, o.Region)
	}
	if o.Latitude == nil || *o.Latitude != 59.93 {
		t.Errorf("latitude = %v, want 59.93 (decimal comma)", o.Latitude)
	}
	if o.Price == nil || *o.Price != 5500000.50 {
		t.Errorf("price = %v", o.Price)
	}
	if o.AreaTotal == nil || *o.AreaTotal != 55.50 {
		t.Errorf("area_total = %v", o.AreaTotal)
	}
	if o.AreaKitchen == nil || *o.AreaKitchen != 12.3 {
		t.Errorf("area_kitchen = %v", o.AreaKitchen)
	}
	if o.MetroTimeOnFoot == nil || *o.MetroTimeOnFoot != 10 {
		t.Errorf("metro_time_on_foot = %v", o.MetroTimeOnFoot)
	}
	if o.Rooms == nil || *o.Rooms != 2 {
		t.Errorf("rooms = %v", o.Rooms)
	}
	if !o.IsNewFlat {
		t.Error("new-flat 'да' should be true")
	}
	if o.IsStudio {
		t.Error("studio 'no' should be false")
	}
	if o.LastUpdateDate == nil || o.LastUpdateDate.UTC().Hour() != 5 {
		t.Errorf("last_update_date = %v", o.LastUpdateDate)
	}
}

func TestReaderSkipsOffersWithoutID(t *testing.T) {
	records, skipped := readRecords(t, writeFeed(t, testFeed))
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	for _, rec := range records {
		if rec.InternalID == "" {
			t.Error("record without internal id surfaced")
		}
	}
}

func TestReaderDefaultsMalformedFieldsToNoValue(t *testing.T) {
	records, _ := readRecords(t, writeFeed(t, testFeed))
	o := records[1].Offer
	if o.InternalID != "102" {
		t.Fatalf("internal id = %q", o.InternalID)
	}
	if o.Rooms != nil {
		t.Errorf("rooms = %v, want nil for unparsable input", o.Rooms)
	}
	if o.Price != nil || o.AreaTotal != nil || o.CreationDate != nil {
		t.Error("absent fields should stay nil")
	}
}

func TestReaderSplitsTaggedImages(t *testing.T) {
	records, _ := readRecords(t, writeFeed(t, testFeed))
	rec := records[0]

	wantPhotos := []string{"http://example.com/1.jpg", "http://example.com/2.jpg"}
	if !reflect.DeepEqual(rec.PhotoList(), wantPhotos) {
		t.Errorf("photos = %v, want %v", rec.PhotoList(), wantPhotos)
	}
	if !reflect.DeepEqual(rec.PlanPhotos, []string{"http://example.com/plan.jpg"}) {
		t.Errorf("plan photos = %v", rec.PlanPhotos)
	}
	if !reflect.DeepEqual(rec.FloorPhotos, []string{"http://example.com/floor.jpg"}) {
		t.Errorf("floor photos = %v", rec.FloorPhotos)
	}
}

func TestReaderIsDeterministic(t *testing.T) {
	path := writeFeed(t, testFeed)
	first, _ := readRecords(t, path)
	second, _ := readRecords(t, path)
	if !reflect.DeepEqual(first, second) {
		t.Error("two independent parses of the same feed differ")
	}
}

func TestReaderIgnoresForeignNamespace(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<realty-feed xmlns="http://webmaster.yandex.ru/schemas/feed/realty/2010-06"
             xmlns:x="http://example.com/other">
  <x:Offer internal-id="999">
    <x:category>чужое</x:category>
  </x:Offer>
  <Offer internal-id="201">
    <category>квартира</category>
    <x:category>чужое</x:category>
  </Offer>
</realty-feed>
`
	records, _ := readRecords(t, writeFeed(t, feed))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].InternalID != "201" {
		t.Errorf("internal id = %q", records[0].InternalID)
	}
	if records[0].Category != "квартира" {
		t.Errorf("category = %q, foreign-namespace element must not win", records[0].Category)
	}
}

func TestReadAllLastSightingWins(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<realty-feed xmlns="http://webmaster.yandex.ru/schemas/feed/realty/2010-06">
  <Offer internal-id="301"><rooms>1</rooms></Offer>
  <Offer internal-id="301"><rooms>3</rooms></Offer>
</realty-feed>
`
	records, err := ReadAll(writeFeed(t, feed))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if rec := records["301"]; rec.Rooms == nil || *rec.Rooms != 3 {
		t.Errorf("rooms = %v, want 3 (last sighting in file order)", rec.Rooms)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Error("expected error for missing feed file")
	}
}
