package services

import (
	"fmt"
	"sort"
	"strings"

	"realty-sync/models"
	"realty-sync/utils"
)

// StatsService computes summary statistics over the persisted offers, the
// numbers the dashboard side surfaces.
type StatsService struct {
	logger *utils.Logger
}

func NewStatsService(logger *utils.Logger) *StatsService {
	return &StatsService{logger: logger}
}

func (s *StatsService) Generate(offers []*models.Offer) *models.StatsReport {
	report := &models.StatsReport{
		OffersByRegion: make(map[string]int),
		RoomsHistogram: make(map[int]int),
	}

	if len(offers) == 0 {
		return report
	}

	report.TotalOffers = len(offers)

	var priced []*models.Offer
	for _, o := range offers {
		if o.Photos != "" {
			report.WithPhotos++
		}
		if o.Price != nil && *o.Price > 0 {
			priced = append(priced, o)
		}
		if o.Region != "" {
			report.OffersByRegion[o.Region]++
		}
		if o.Rooms != nil {
			report.RoomsHistogram[*o.Rooms]++
		}
		if o.LastUpdateDate != nil &&
			(report.NewestUpdate == nil || o.LastUpdateDate.After(*report.NewestUpdate)) {
			t := *o.LastUpdateDate
			report.NewestUpdate = &t
		}
	}

	if len(priced) > 0 {
		report.MinPrice = *priced[0].Price
		report.MaxPrice = *priced[0].Price
		var total float64
		for _, o := range priced {
			p := *o.Price
			total += p
			if p < report.MinPrice {
				report.MinPrice = p
			}
			if p > report.MaxPrice {
				report.MaxPrice = p
			}
		}
		report.AveragePrice = round2(total / float64(len(priced)))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	return report
}

func (s *StatsService) Print(r *models.StatsReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n%s\n", sep)
	fmt.Printf("  OFFER DATABASE SUMMARY\n")
	fmt.Printf("%s\n\n", sep)

	fmt.Printf("  Overview\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total offers        : %d\n", r.TotalOffers)
	fmt.Printf("  Offers with photos  : %d\n", r.WithPhotos)
	if r.NewestUpdate != nil {
		fmt.Printf("  Newest feed update  : %s\n", r.NewestUpdate.Format("2006-01-02 15:04"))
	}
	fmt.Println()

	fmt.Printf("  Price Statistics\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average price : %.2f\n", r.AveragePrice)
		fmt.Printf("  Minimum price : %.2f\n", r.MinPrice)
		fmt.Printf("  Maximum price : %.2f\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	fmt.Printf("  Offers by Region\n")
	fmt.Printf("  %s\n", thin)
	if len(r.OffersByRegion) == 0 {
		fmt.Printf("  No region data\n")
	} else {
		type regionCount struct {
			region string
			count  int
		}
		var regions []regionCount
		for region, cnt := range r.OffersByRegion {
			regions = append(regions, regionCount{region, cnt})
		}
		sort.Slice(regions, func(i, j int) bool { return regions[i].count > regions[j].count })
		for _, rc := range regions {
			fmt.Printf("  %-30s %d\n", truncate(rc.region, 28), rc.count)
		}
	}
	fmt.Println()

	fmt.Printf("  Rooms\n")
	fmt.Printf("  %s\n", thin)
	if len(r.RoomsHistogram) == 0 {
		fmt.Printf("  No rooms data\n")
	} else {
		var rooms []int
		for n := range r.RoomsHistogram {
			rooms = append(rooms, n)
		}
		sort.Ints(rooms)
		for _, n := range rooms {
			fmt.Printf("  %d-комн. %s (%d)\n", n, strings.Repeat("█", bar(r.RoomsHistogram[n])), r.RoomsHistogram[n])
		}
	}

	fmt.Printf("\n%s\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// bar caps histogram bars so a big table keeps the report readable.
func bar(n int) int {
	if n > 40 {
		return 40
	}
	return n
}
