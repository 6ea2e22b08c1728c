package follower

import (
	"fmt"
	"math"
	"time"
)

type memService struct {
	follows map[string]map[string]*Follow
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		follows: map[string]map[string]*Follow{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return -1, err
	}

	return len(filterMap(s.follows[ns], opts)), nil
}

func (s *memService) Put(ns string, f *Follow) (*Follow, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}

	f.CreatedAt = f.CreatedAt.UTC()

	stored, ok := s.follows[ns][stringKey(f)]
	if ok {
		f.CreatedAt = stored.CreatedAt
	}

	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = now
	}

	f.UpdatedAt = f.UpdatedAt.UTC()

	s.follows[ns][stringKey(f)] = f

	return f, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	return filterMap(s.follows[ns], opts), nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.follows[ns]; !ok {
		s.follows[ns] = map[string]*Follow{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	return fmt.Errorf("not implemented")
}

func filterMap(fm map[string]*Follow, opts QueryOptions) List {
	fs := List{}

	for _, f := range fm {
		if !opts.After.IsZero() && f.UpdatedAt.UTC().Before(opts.After.UTC()) {
			continue
		}

		if !opts.Before.IsZero() && f.UpdatedAt.UTC().After(opts.Before.UTC()) {
			continue
		}

		if opts.Enabled != nil && f.Enabled != *opts.Enabled {
			continue
		}

		if !inIDs(f.FollowerID, opts.FollowerIDs) {
			continue
		}

		if !inStatuses(f.Status, opts.Statuses) {
			continue
		}

		if !inIDs(f.UserID, opts.UserIDs) {
			continue
		}

		fs = append(fs, f)
	}

	if len(fs) == 0 {
		return fs
	}

	if opts.Limit > 0 {
		l := math.Min(float64(len(fs)), float64(opts.Limit))

		return fs[:int(l)]
	}

	return fs
}

func inIDs(id uint64, ids []uint64) bool {
	if len(ids) == 0 {
		return true
	}

	keep := false

	for _, i := range ids {
		if i == id {
			keep = true
			break
		}
	}

	return keep
}

func inStatuses(s Status, ss []Status) bool {
	if len(ss) == 0 {
		return true
	}

	keep := false

	for _, status := range ss {
		if s == status {
			keep = true
			break
		}
	}

	return keep
}

func stringKey(f *Follow) string {
	return fmt.Sprintf("%d-%d", f.UserID, f.FollowerID)
}
