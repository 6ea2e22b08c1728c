package rsvp

import (
	"sort"
	"time"

	"github.com/letsgo/activities/platform/flake"
)

type memService struct {
	rsvps map[string]map[uint64]*Rsvp
}

// MemService returns a memory based Service implementation.
func MemService() Service {
	return &memService{
		rsvps: map[string]map[uint64]*Rsvp{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return 0, err
	}

	return len(filterMap(s.rsvps[ns], opts)), nil
}

func (s *memService) Put(ns string, input *Rsvp) (*Rsvp, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		bucket = s.rsvps[ns]
		now    = time.Now().UTC()
	)

	if input.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if input.CreatedAt.IsZero() {
			input.CreatedAt = now
		}
		input.ID = id
	} else {
		stored, ok := bucket[input.ID]
		if !ok {
			return nil, ErrNotFound
		}

		input.CreatedAt = stored.CreatedAt
	}

	input.UpdatedAt = now
	bucket[input.ID] = copyRsvp(input)

	return copyRsvp(input), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	rs := filterMap(s.rsvps[ns], opts)

	sort.Sort(rs)

	if opts.Limit > 0 && len(rs) > opts.Limit {
		rs = rs[:opts.Limit]
	}

	return rs, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.rsvps[ns]; !ok {
		s.rsvps[ns] = map[uint64]*Rsvp{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.rsvps[ns]; ok {
		delete(s.rsvps, ns)
	}

	return nil
}

func copyRsvp(r *Rsvp) *Rsvp {
	old := *r
	return &old
}

func filterMap(rm map[uint64]*Rsvp, opts QueryOptions) List {
	rs := List{}

	for id, r := range rm {
		if !inIDs(r.ActivityID, opts.ActivityIDs) {
			continue
		}

		if opts.Deleted != nil && r.Deleted != *opts.Deleted {
			continue
		}

		if !inIDs(id, opts.IDs) {
			continue
		}

		if !inIDs(r.UserID, opts.UserIDs) {
			continue
		}

		rs = append(rs, r)
	}

	return rs
}

func inIDs(id uint64, ids []uint64) bool {
	if len(ids) == 0 {
		return true
	}

	keep := false

	for _, i := range ids {
		if id == i {
			keep = true
			break
		}
	}

	return keep
}
