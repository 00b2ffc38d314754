package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"realty-sync/models"
)

const cacheFeed = `<?xml version="1.0" encoding="UTF-8"?>
<realty-feed xmlns="http://webmaster.yandex.ru/schemas/feed/realty/2010-06">
  <Offer internal-id="10">
    <location><address>Ленина 5</address></location>
    <image tag="plan">http://example.com/plan10.jpg</image>
  </Offer>
</realty-feed>
`

// countingCache wraps a Cache with a parse counter on the load hook.
func countingCache(t *testing.T, path string) (*Cache, *int) {
	t.Helper()
	c := NewCache(path, newTestLogger())
	inner := c.load
	calls := new(int)
	c.load = func(p string) (map[string]*models.FeedRecord, error) {
		*calls++
		return inner(p)
	}
	return c, calls
}

func TestCacheMissingFeedYieldsEmptyEnrichment(t *testing.T) {
	c, calls := countingCache(t, filepath.Join(t.TempDir(), "nope.xml"))

	out := c.Lookup([]string{"10", "11"})
	if len(out) != 2 || out["10"] != nil || out["11"] != nil {
		t.Errorf("out = %v, want nil enrichment for every id", out)
	}
	if *calls != 0 {
		t.Errorf("load called %d times for a missing feed", *calls)
	}
}

func TestCacheServesFullProjection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(cacheFeed), 0644); err != nil {
		t.Fatal(err)
	}
	c, _ := countingCache(t, path)

	out := c.Lookup([]string{"10", "missing"})
	rec := out["10"]
	if rec == nil {
		t.Fatal("offer 10 not served")
	}
	if len(rec.PlanPhotos) != 1 || rec.PlanPhotos[0] != "http://example.com/plan10.jpg" {
		t.Errorf("plan photos = %v", rec.PlanPhotos)
	}
	if out["missing"] != nil {
		t.Error("unknown id must map to nil, not be an error")
	}
}

func TestCacheReparsesOnlyOnMtimeChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(cacheFeed), 0644); err != nil {
		t.Fatal(err)
	}
	c, calls := countingCache(t, path)

	c.Lookup([]string{"10"})
	c.Lookup([]string{"10"})
	if *calls != 1 {
		t.Fatalf("load called %d times for unchanged mtime, want 1", *calls)
	}

	// Same content, new mtime: the whole slot must be rebuilt.
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	c.Lookup([]string{"10"})
	if *calls != 2 {
		t.Errorf("load called %d times after mtime change, want 2", *calls)
	}
}

func TestCacheLoadFailureIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(cacheFeed), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewCache(path, newTestLogger())
	c.load = func(string) (map[string]*models.FeedRecord, error) {
		return nil, errors.New("boom")
	}

	out := c.Lookup([]string{"10"})
	if out["10"] != nil {
		t.Error("failed reparse must degrade to empty enrichment")
	}
}
