package rsvp

import (
	"fmt"
	"strings"

	"github.com/letsgo/activities/platform/cache"
)

const (
	cachePrefixCount = "rsvps.count"
)

type cacheService struct {
	countsCache cache.CountService
	next        Service
}

// CacheServiceMiddleware adds caching capabilities to the Service by using
// read-through and write-through methods to store results of heavy computation
// with sensible TTLs.
func CacheServiceMiddleware(countsCache cache.CountService) ServiceMiddleware {
	return func(next Service) Service {
		return &cacheService{
			countsCache: countsCache,
			next:        next,
		}
	}
}

func (s *cacheService) Count(ns string, opts QueryOptions) (int, error) {
	key := cacheCountKey(opts)

	count, err := s.countsCache.Get(ns, key)
	if err == nil {
		return count, nil
	}

	if !cache.IsKeyNotFound(err) {
		return -1, err
	}

	count, err = s.next.Count(ns, opts)
	if err != nil {
		return -1, err
	}

	err = s.countsCache.Set(ns, key, count)

	return count, err
}

func (s *cacheService) Put(ns string, input *Rsvp) (*Rsvp, error) {
	key := cacheCountKey(QueryOptions{
		ActivityIDs: []uint64{
			input.ActivityID,
		},
	})

	r, err := s.next.Put(ns, input)
	if err != nil {
		return nil, err
	}

	if input.Deleted {
		_, _ = s.countsCache.Decr(ns, key)
	} else {
		_, _ = s.countsCache.Incr(ns, key)
	}

	return r, nil
}

func (s *cacheService) Query(ns string, opts QueryOptions) (List, error) {
	return s.next.Query(ns, opts)
}

func (s *cacheService) Setup(ns string) error {
	return s.next.Setup(ns)
}

func (s *cacheService) Teardown(ns string) error {
	return s.next.Teardown(ns)
}

func cacheCountKey(opts QueryOptions) string {
	ps := []string{
		cachePrefixCount,
	}

	if len(opts.ActivityIDs) == 1 {
		ps = append(ps, fmt.Sprintf("%d", opts.ActivityIDs[0]))
	}

	return strings.Join(ps, cache.KeySeparator)
}
