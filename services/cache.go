package services

import (
	"os"
	"sync"
	"time"

	"realty-sync/feed/setl"
	"realty-sync/models"
	"realty-sync/utils"
)

// Cache is a read-through cache of the feed's full projection, keyed by
// internal id. The store only persists a subset of feed fields; the cache
// re-parses the feed on demand to recover the rest (plan and floor images)
// for display enrichment.
//
// Validity is gated purely by the feed file's mtime: a changed mtime throws
// the whole map away and rebuilds it, nothing else ever invalidates it.
// Concurrent callers may rebuild redundantly; the last full map written
// wins, and a partially built map is never visible.
type Cache struct {
	path   string
	logger *utils.Logger

	// load re-parses the feed. Swapped out in tests to count rebuilds.
	load func(path string) (map[string]*models.FeedRecord, error)

	mu     sync.RWMutex
	loaded bool
	mtime  time.Time
	data   map[string]*models.FeedRecord
}

// NewCache creates a cache over the feed file at path.
func NewCache(path string, logger *utils.Logger) *Cache {
	return &Cache{path: path, logger: logger, load: setl.ReadAll}
}

// Lookup returns the full projection for each requested id. Ids absent from
// the feed map to nil; a missing or unreadable feed yields nil for every id.
// Absence is never an error, enrichment is strictly best-effort.
func (c *Cache) Lookup(ids []string) map[string]*models.FeedRecord {
	out := make(map[string]*models.FeedRecord, len(ids))

	info, err := os.Stat(c.path)
	if err != nil {
		for _, id := range ids {
			out[id] = nil
		}
		return out
	}
	mtime := info.ModTime()

	c.mu.RLock()
	data := c.data
	fresh := c.loaded && c.mtime.Equal(mtime)
	c.mu.RUnlock()

	if !fresh {
		rebuilt, err := c.load(c.path)
		if err != nil {
			c.logger.Warn("[cache] feed reparse failed: %v", err)
			for _, id := range ids {
				out[id] = nil
			}
			return out
		}
		c.mu.Lock()
		c.loaded = true
		c.mtime = mtime
		c.data = rebuilt
		c.mu.Unlock()
		data = rebuilt
	}

	for _, id := range ids {
		out[id] = data[id]
	}
	return out
}
