// Package setl reads the Setl partner XML feed as a forward-only stream of
// normalized listing records.
//
// The feed is a single large document in the Yandex realty namespace; a
// Reader decodes one Offer element at a time so peak memory stays flat no
// matter how many listings the file carries.
package setl

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"realty-sync/models"
)

// Namespace is the only XML namespace the feed is allowed to use.
// Elements qualified with anything else are ignored.
const Namespace = "http://webmaster.yandex.ru/schemas/feed/realty/2010-06"

// Reader is a forward-only stream of feed records. It is not restartable:
// callers needing a second pass open a new Reader.
type Reader struct {
	file    *os.File
	dec     *xml.Decoder
	skipped int
}

// Open opens the feed file at path and returns a Reader positioned before
// the first listing.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("setl: open feed: %w", err)
	}
	return &Reader{file: f, dec: xml.NewDecoder(f)}, nil
}

// Next returns the next normalized record, or io.EOF when the document is
// exhausted. Offer elements without an internal-id attribute are skipped
// silently; their count is available via Skipped.
func (r *Reader) Next() (*models.FeedRecord, error) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("setl: read feed: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Space != Namespace || se.Name.Local != "Offer" {
			continue
		}

		// DecodeElement consumes exactly this offer's subtree; once the
		// wire struct goes out of scope the element's memory is free again.
		var w wireOffer
		if err := r.dec.DecodeElement(&w, &se); err != nil {
			return nil, fmt.Errorf("setl: decode offer: %w", err)
		}

		if strings.TrimSpace(w.InternalID) == "" {
			r.skipped++
			continue
		}
		return w.record(), nil
	}
}

// Skipped reports how many offers were dropped for lacking an internal-id.
func (r *Reader) Skipped() int { return r.skipped }

// Close releases the underlying file.
func (r *Reader) Close() error { return r.file.Close() }

// ReadAll drains a whole feed into a map keyed by internal id. Later
// sightings of an id overwrite earlier ones, matching file order.
func ReadAll(path string) (map[string]*models.FeedRecord, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	records := make(map[string]*models.FeedRecord)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records[rec.InternalID] = rec
	}
}

// wireOffer mirrors one Offer element of the feed. Field tags are
// namespace-qualified so elements outside the feed namespace never match.
type wireOffer struct {
	InternalID string `xml:"internal-id,attr"`

	CaseID       string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 caseid"`
	Type         string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 type"`
	PropertyType string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 property-type"`
	Category     string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 category"`
	DealStatus   string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 deal-status"`
	DealState    string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 deal-state"`

	CreationDate   string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 creation-date"`
	LastUpdateDate string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 last-update-date"`

	Location wireLocation `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 location"`
	Metro    wireMetro    `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 metro"`
	Price    wirePrice    `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 price"`

	Area         wireArea `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 area"`
	LivingSpace  wireArea `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 living-space"`
	KitchenSpace wireArea `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 kitchen-space"`
	LotArea      wireArea `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 lot-area"`
	BalconyArea  wireArea `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 balcony-area"`

	Rooms         string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 rooms"`
	Floor         string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 floor"`
	FloorsTotal   string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 floors-total"`
	CeilingHeight string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 ceiling-height"`

	NewFlat    string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 new-flat"`
	Apartments string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 apartments"`
	Studio     string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 studio"`

	BuildingID       string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 building-id"`
	BuildingName     string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 building-name"`
	BuildingState    string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 building-state"`
	BuildingPhase    string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 building-phase"`
	BuildingType     string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 building-type"`
	BuildingSection  string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 building-section"`
	BuildingMaterial string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 building-material"`
	BuiltYear        string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 built-year"`
	Brand            string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 brand"`

	DecorationType string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 decoration-type"`
	NumberFlat     string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 number-flat"`
	Entrance       string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 entrance"`
	Section        string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 section"`

	Images      []wireImage `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 image"`
	Description string      `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 description"`
}

type wireLocation struct {
	Country         string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 country"`
	Region          string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 region"`
	District        string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 district"`
	LocalityName    string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 locality-name"`
	SubLocalityName string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 sub-locality-name"`
	Address         string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 address"`
	Latitude        string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 latitude"`
	Longitude       string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 longitude"`
}

type wireMetro struct {
	Name            string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 name"`
	TimeOnFoot      string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 time-on-foot"`
	TimeOnTransport string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 time-on-transport"`
}

type wirePrice struct {
	Value    string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 value"`
	BaseCost string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 basecost"`
	Cost     string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 cost"`
	Currency string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 currency"`
}

type wireArea struct {
	Value string `xml:"http://webmaster.yandex.ru/schemas/feed/realty/2010-06 value"`
}

type wireImage struct {
	Tag string `xml:"tag,attr"`
	URL string `xml:",chardata"`
}

// record coerces the wire form into the canonical full projection.
func (w *wireOffer) record() *models.FeedRecord {
	rec := &models.FeedRecord{}
	o := &rec.Offer

	o.InternalID = strings.TrimSpace(w.InternalID)
	o.CaseID = strings.TrimSpace(w.CaseID)
	o.DealType = strings.TrimSpace(w.Type)
	o.PropertyType = strings.TrimSpace(w.PropertyType)
	o.Category = strings.TrimSpace(w.Category)
	o.DealStatus = strings.TrimSpace(w.DealStatus)
	o.DealState = strings.TrimSpace(w.DealState)

	o.CreationDate = timePtr(w.CreationDate)
	o.LastUpdateDate = timePtr(w.LastUpdateDate)

	o.Country = strings.TrimSpace(w.Location.Country)
	o.Region = strings.TrimSpace(w.Location.Region)
	o.District = strings.TrimSpace(w.Location.District)
	o.LocalityName = strings.TrimSpace(w.Location.LocalityName)
	o.SubLocalityName = strings.TrimSpace(w.Location.SubLocalityName)
	o.Address = strings.TrimSpace(w.Location.Address)
	o.Latitude = decimalPtr(w.Location.Latitude)
	o.Longitude = decimalPtr(w.Location.Longitude)

	o.MetroName = strings.TrimSpace(w.Metro.Name)
	o.MetroTimeOnFoot = intPtr(w.Metro.TimeOnFoot)
	o.MetroTimeOnTransport = intPtr(w.Metro.TimeOnTransport)

	o.Price = decimalPtr(w.Price.Value)
	o.PriceBase = decimalPtr(w.Price.BaseCost)
	o.PriceCost = decimalPtr(w.Price.Cost)
	o.Currency = strings.TrimSpace(w.Price.Currency)

	o.AreaTotal = decimalPtr(w.Area.Value)
	o.AreaLiving = decimalPtr(w.LivingSpace.Value)
	o.AreaKitchen = decimalPtr(w.KitchenSpace.Value)
	o.AreaLot = decimalPtr(w.LotArea.Value)
	o.AreaBalcony = decimalPtr(w.BalconyArea.Value)

	o.Rooms = intPtr(w.Rooms)
	o.Floor = intPtr(w.Floor)
	o.FloorsTotal = intPtr(w.FloorsTotal)
	o.CeilingHeight = decimalPtr(w.CeilingHeight)

	o.IsNewFlat = parseBool(w.NewFlat)
	o.IsApartments = parseBool(w.Apartments)
	o.IsStudio = parseBool(w.Studio)

	o.BuildingID = strings.TrimSpace(w.BuildingID)
	o.BuildingName = strings.TrimSpace(w.BuildingName)
	o.BuildingState = strings.TrimSpace(w.BuildingState)
	o.BuildingPhase = strings.TrimSpace(w.BuildingPhase)
	o.BuildingType = strings.TrimSpace(w.BuildingType)
	o.BuildingSection = strings.TrimSpace(w.BuildingSection)
	o.BuildingMaterial = strings.TrimSpace(w.BuildingMaterial)
	o.BuildingYear = strings.TrimSpace(w.BuiltYear)
	o.Brand = strings.TrimSpace(w.Brand)

	o.DecorationType = strings.TrimSpace(w.DecorationType)
	o.NumberFlat = strings.TrimSpace(w.NumberFlat)
	o.Entrance = strings.TrimSpace(w.Entrance)
	o.Section = strings.TrimSpace(w.Section)

	var photos []string
	for _, img := range w.Images {
		url := strings.TrimSpace(img.URL)
		if url == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(img.Tag)) {
		case "plan":
			rec.PlanPhotos = append(rec.PlanPhotos, url)
		case "floor":
			rec.FloorPhotos = append(rec.FloorPhotos, url)
		default:
			photos = append(photos, url)
		}
	}
	o.Photos = strings.Join(photos, "\n")
	o.Description = strings.TrimSpace(w.Description)

	return rec
}
