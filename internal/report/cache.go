package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutfines/internal/calendar"
	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const defaultCacheSize = 8 * 1024 * 1024

// Cache keeps generated weekly reports for a short while. Entries are keyed
// by week and store data version, so a report is only served again while the
// store still holds exactly the data it was built from.
type Cache struct {
	cache      *freecache.Cache
	ttlSeconds int
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		cache:      freecache.NewCache(defaultCacheSize),
		ttlSeconds: int(ttl.Seconds()),
	}
}

func (c *Cache) Get(weekStart time.Time, version string) (*WeeklyReport, bool) {
	if c == nil || c.ttlSeconds <= 0 {
		return nil, false
	}

	cached, err := c.cache.Get(cacheKey(weekStart, version))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("report cache: get %s: %s", calendar.FormatDate(weekStart), err)
		}
		return nil, false
	}

	report := &WeeklyReport{}
	if err := json.Unmarshal(cached, report); err != nil {
		log.Errorf("report cache: unmarshal %s: %s", calendar.FormatDate(weekStart), err)
		return nil, false
	}
	return report, true
}

func (c *Cache) Set(report *WeeklyReport, version string) error {
	if c == nil || c.ttlSeconds <= 0 {
		return nil
	}

	reportBytes, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := c.cache.Set(cacheKey(report.WeekStartDate, version), reportBytes, c.ttlSeconds); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.cache.Clear()
}

func cacheKey(weekStart time.Time, version string) []byte {
	return []byte("weekly::" + calendar.FormatDate(weekStart) + "::" + version)
}
