package analysis

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// DefaultReportTTL is how long finished reports stay retrievable
	DefaultReportTTL = 24 * time.Hour
	latestKey        = "latest"
)

// ReportStore keeps recent reports in memory. Nothing is persisted.
type ReportStore struct {
	cache *cache.Cache
}

// NewReportStore creates a new in-memory report store
func NewReportStore(ttl time.Duration) *ReportStore {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &ReportStore{cache: cache.New(ttl, 2*ttl)}
}

// Put stores a report by ID and marks it as the latest
func (s *ReportStore) Put(r *Report) {
	s.cache.SetDefault(r.ID, r)
	s.cache.SetDefault(latestKey, r)
}

// Get returns a report by ID
func (s *ReportStore) Get(id string) (*Report, bool) {
	if id == latestKey {
		return nil, false
	}
	return s.lookup(id)
}

// Latest returns the most recently stored report
func (s *ReportStore) Latest() (*Report, bool) {
	return s.lookup(latestKey)
}

// Count returns the number of stored reports
func (s *ReportStore) Count() int {
	n := s.cache.ItemCount()
	if _, ok := s.cache.Get(latestKey); ok {
		n--
	}
	return n
}

func (s *ReportStore) lookup(key string) (*Report, bool) {
	cached, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	r, ok := cached.(*Report)
	return r, ok
}
