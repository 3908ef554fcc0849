package popularity

import (
	"context"
	"time"

	"github.com/Pirikara/pipgate/internal/logger"
)

// Fetcher retrieves stats from the remote service.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (Stats, error)
}

// Store is the persistent cache consulted before the network.
type Store interface {
	Get(name string) (Entry, bool)
	Put(name string, stats Stats) error
}

// Service resolves package stats through the cache, going to the remote
// service when the record is missing or older than maxAge. A failed
// fetch yields zero counts instead of an error so arbitration can keep
// going without the network.
type Service struct {
	store   Store
	fetcher Fetcher
	maxAge  time.Duration
	now     func() time.Time
	log     *logger.Logger
}

// NewService wires a cache and a fetcher into a lookup service.
func NewService(store Store, fetcher Fetcher, maxAge time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		store:   store,
		fetcher: fetcher,
		maxAge:  maxAge,
		now:     time.Now,
		log:     log,
	}
}

// LookupInfo describes how a lookup was satisfied.
type LookupInfo struct {
	CacheHit bool
	Stale    bool
	Fetched  bool
	FetchErr error
}

// Lookup returns stats for a package, preferring a fresh cache record.
// Stale and missing records trigger a fetch whose result overwrites the
// cache; a fetch failure is recorded in the info and zero stats are
// returned.
func (s *Service) Lookup(ctx context.Context, name string) (Stats, LookupInfo) {
	var info LookupInfo
	if s.store != nil {
		if entry, ok := s.store.Get(name); ok {
			age := s.now().Sub(entry.StoredAt)
			if age <= s.maxAge {
				info.CacheHit = true
				s.log.Debug("popularity_lookup", "cache hit", map[string]interface{}{
					"package":     name,
					"age_minutes": int(age.Minutes()),
				})
				return entry.Stats, info
			}
			info.Stale = true
			s.log.Debug("popularity_lookup", "cache record stale", map[string]interface{}{
				"package":     name,
				"age_minutes": int(age.Minutes()),
			})
		} else {
			s.log.Debug("popularity_lookup", "cache miss", map[string]interface{}{
				"package": name,
			})
		}
	}

	stats, err := s.fetcher.Fetch(ctx, name)
	if err != nil {
		info.FetchErr = err
		s.log.Warn("popularity_lookup", "stats fetch failed, counting zero downloads", map[string]interface{}{
			"package": name,
			"error":   err.Error(),
		})
		return Stats{Package: name}, info
	}
	info.Fetched = true

	if s.store != nil {
		if err := s.store.Put(name, stats); err != nil {
			s.log.Warn("popularity_lookup", "cache write failed", map[string]interface{}{
				"package": name,
				"error":   err.Error(),
			})
		}
	}
	return stats, info
}

// Refresh fetches stats from the remote service unconditionally and
// overwrites the cached record on success.
func (s *Service) Refresh(ctx context.Context, name string) (Stats, error) {
	stats, err := s.fetcher.Fetch(ctx, name)
	if err != nil {
		return Stats{}, err
	}
	if s.store != nil {
		if err := s.store.Put(name, stats); err != nil {
			s.log.Warn("popularity_refresh", "cache write failed", map[string]interface{}{
				"package": name,
				"error":   err.Error(),
			})
		}
	}
	return stats, nil
}
