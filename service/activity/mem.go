package activity

import (
	"sort"
	"time"

	"github.com/letsgo/activities/platform/flake"
)

type memService struct {
	activities map[string]Map
}

// MemService returns a memory based Service implementation.
func MemService() Service {
	return &memService{
		activities: map[string]Map{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return 0, err
	}

	return len(filterMap(s.activities[ns], opts)), nil
}

func (s *memService) Put(ns string, input *Activity) (*Activity, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		bucket = s.activities[ns]
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
	bucket[input.ID] = copyActivity(input)

	return copyActivity(input), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	as := filterMap(s.activities[ns], opts)

	sort.Sort(as)

	if opts.Offset > 0 {
		if opts.Offset > len(as) {
			return List{}, nil
		}

		as = as[opts.Offset:]
	}

	if opts.Limit > 0 && len(as) > opts.Limit {
		as = as[:opts.Limit]
	}

	return as, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.activities[ns]; !ok {
		s.activities[ns] = Map{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.activities[ns]; ok {
		delete(s.activities, ns)
	}

	return nil
}

func copyActivity(a *Activity) *Activity {
	old := *a
	return &old
}

func filterMap(am Map, opts QueryOptions) List {
	as := List{}

	for id, a := range am {
		if !opts.Before.IsZero() && !a.UpdatedAt.UTC().Before(opts.Before.UTC()) {
			continue
		}

		if opts.Deleted != nil && a.Deleted != *opts.Deleted {
			continue
		}

		if opts.EndsAfter > 0 && a.EndsAt() < opts.EndsAfter {
			continue
		}

		if !inIDs(id, opts.IDs) {
			continue
		}

		if !inIDs(a.OwnerID, opts.OwnerIDs) {
			continue
		}

		if !inIDs(a.ParentID, opts.ParentIDs) {
			continue
		}

		if !inPrivacies(a.Privacy, opts.Privacies) {
			continue
		}

		as = append(as, a)
	}

	return as
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

func inPrivacies(p Privacy, ps []Privacy) bool {
	if len(ps) == 0 {
		return true
	}

	keep := false

	for _, privacy := range ps {
		if p == privacy {
			keep = true
			break
		}
	}

	return keep
}
