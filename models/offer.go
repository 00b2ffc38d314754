package models

import (
	"strings"
	"time"
)

// Offer is the persisted projection of one listing from the Setl feed,
// uniquely identified by InternalID. Text fields use "" for absent values;
// numeric and date fields use nil pointers so that absent and zero stay
// distinguishable in storage.
type Offer struct {
	ID         int64
	InternalID string

	CaseID       string
	DealType     string
	PropertyType string
	Category     string
	DealStatus   string
	DealState    string

	CreationDate   *time.Time
	LastUpdateDate *time.Time

	Country         string
	Region          string
	District        string
	LocalityName    string
	SubLocalityName string
	Address         string
	Latitude        *float64
	Longitude       *float64

	MetroName            string
	MetroTimeOnFoot      *int
	MetroTimeOnTransport *int

	Price     *float64
	PriceBase *float64
	PriceCost *float64
	Currency  string

	AreaTotal   *float64
	AreaLiving  *float64
	AreaKitchen *float64
	AreaLot     *float64
	AreaBalcony *float64

	Rooms         *int
	Floor         *int
	FloorsTotal   *int
	CeilingHeight *float64

	IsNewFlat    bool
	IsApartments bool
	IsStudio     bool

	BuildingID       string
	BuildingName     string
	BuildingState    string
	BuildingPhase    string
	BuildingType     string
	BuildingSection  string
	BuildingMaterial string
	BuildingYear     string
	Brand            string

	DecorationType string
	NumberFlat     string
	Entrance       string
	Section        string

	// Photos is the newline-joined ordered list of plain photo URLs.
	Photos      string
	Description string
}

// PhotoList splits Photos into its ordered URL list, dropping blank lines.
func (o *Offer) PhotoList() []string {
	var urls []string
	for _, line := range strings.Split(o.Photos, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}

// FeedRecord is the full projection of one listing: everything the feed
// exposes. The persisted subset is the embedded Offer; the remaining fields
// exist only in the feed and are served through the fallback cache.
type FeedRecord struct {
	Offer

	// Images tagged "plan" and "floor" in the feed. Kept out of Photos.
	PlanPhotos  []string
	FloorPhotos []string
}

// ImportReport summarises one feed ingestion run.
type ImportReport struct {
	Imported int // offers upserted into storage
	Skipped  int // feed elements without an internal-id
	Failed   int // offers whose upsert errored (logged, not fatal)
}

// DedupReport summarises one duplicate-cleanup run.
type DedupReport struct {
	Scanned    int
	Duplicates int
	Deleted    int
}

// PhotoReport summarises one photo-link cleanup run.
type PhotoReport struct {
	Processed    int
	Changed      int
	RemovedLinks int
}

// StatsReport holds the computed summary over the persisted offers.
type StatsReport struct {
	TotalOffers int
	WithPhotos  int

	AveragePrice float64
	MinPrice     float64
	MaxPrice     float64

	OffersByRegion map[string]int
	RoomsHistogram map[int]int

	NewestUpdate *time.Time
}
