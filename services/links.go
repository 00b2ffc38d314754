package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"realty-sync/models"
	"realty-sync/storage"
	"realty-sync/utils"
)

// Checker probes photo URLs and strips dead ones from persisted offers.
type Checker struct {
	store  storage.OfferStore
	logger *utils.Logger

	client      *http.Client
	concurrency int
	limiter     *rate.Limiter // nil means unthrottled
}

// NewChecker creates a Checker. timeout applies to every probe identically;
// concurrency bounds in-flight probes; ratePerSec > 0 additionally throttles
// probe starts.
func NewChecker(store storage.OfferStore, logger *utils.Logger, timeout time.Duration, concurrency int, ratePerSec float64) *Checker {
	if concurrency < 1 {
		concurrency = 1
	}
	c := &Checker{
		store:       store,
		logger:      logger,
		client:      &http.Client{Timeout: timeout},
		concurrency: concurrency,
	}
	if ratePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return c
}

// Validate partitions urls into alive and dead, preserving input order in
// both halves. A probe is a HEAD request; any status of 400 or above, any
// transport error and any timeout all classify the URL as dead. Nothing a
// single probe does can fail the batch.
func (c *Checker) Validate(ctx context.Context, urls []string) (good, bad []string) {
	alive := make([]bool, len(urls))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return nil
				}
			}
			alive[i] = c.probe(ctx, url)
			return nil
		})
	}
	_ = g.Wait()

	for i, url := range urls {
		if alive[i] {
			good = append(good, url)
		} else {
			bad = append(bad, url)
		}
	}
	return good, bad
}

func (c *Checker) probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("[photos] probe %s: %v", url, err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

// Run checks the photo lists of up to limit offers and rewrites each
// changed offer's photo field to the surviving ordered subsequence. Offers
// whose links are all alive are left untouched. With dryRun set the same
// probes run but nothing is persisted.
func (c *Checker) Run(ctx context.Context, limit int, dryRun bool) (*models.PhotoReport, error) {
	offers, err := c.store.OffersWithPhotos(limit)
	if err != nil {
		return nil, err
	}

	report := &models.PhotoReport{}
	for _, offer := range offers {
		report.Processed++

		photos := offer.PhotoList()
		if len(photos) == 0 {
			continue
		}

		good, bad := c.Validate(ctx, photos)
		if len(bad) == 0 {
			continue
		}

		report.Changed++
		report.RemovedLinks += len(bad)
		c.logger.Info("[photos] offer %s: dropping %d of %d links",
			offer.InternalID, len(bad), len(photos))

		if dryRun {
			continue
		}
		if err := c.store.UpdateOfferPhotos(offer.ID, strings.Join(good, "\n")); err != nil {
			c.logger.Warn("[photos] offer %s not updated: %v", offer.InternalID, err)
		}
	}

	c.logger.Info("[photos] done: %d processed, %d changed, %d links removed",
		report.Processed, report.Changed, report.RemovedLinks)
	return report, nil
}
