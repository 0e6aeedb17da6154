package cache

import (
	"github.com/bluele/gcache"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ output.ReportCache = (*ReportCache)(nil)

const DefaultSize = 100

type entryKey struct {
	query  string
	report entity.Report
}

// ReportCache remembers recent (query, report) pairs with LRU eviction.
// gcache serializes access internally, so concurrent pipeline runs share it.
type ReportCache struct {
	cache gcache.Cache
}

func NewReportCache(size int) *ReportCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &ReportCache{cache: gcache.New(size).LRU().Build()}
}

// Put records the pair and returns report unchanged.
func (c *ReportCache) Put(query string, report entity.Report) entity.Report {
	key := entryKey{query: query, report: report}
	if err := c.cache.Set(key, struct{}{}); err != nil {
		c.cache.Remove(key)
	}
	return report
}

func (c *ReportCache) Has(query string, report entity.Report) bool {
	return c.cache.Has(entryKey{query: query, report: report})
}

func (c *ReportCache) Len() int {
	return c.cache.Len(false)
}
