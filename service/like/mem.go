package like

import (
	"sort"
	"time"

	"github.com/letsgo/activities/platform/flake"
)

type memService struct {
	likes map[string]map[uint64]*Like
}

// MemService returns a memory based Service implementation.
func MemService() Service {
	return &memService{
		likes: map[string]map[uint64]*Like{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return 0, err
	}

	return len(filterMap(s.likes[ns], opts)), nil
}

func (s *memService) Put(ns string, input *Like) (*Like, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		bucket = s.likes[ns]
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
	bucket[input.ID] = copyLike(input)

	return copyLike(input), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	ls := filterMap(s.likes[ns], opts)

	sort.Sort(ls)

	if opts.Limit > 0 && len(ls) > opts.Limit {
		ls = ls[:opts.Limit]
	}

	return ls, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.likes[ns]; !ok {
		s.likes[ns] = map[uint64]*Like{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.likes[ns]; ok {
		delete(s.likes, ns)
	}

	return nil
}

func copyLike(l *Like) *Like {
	old := *l
	return &old
}

func filterMap(lm map[uint64]*Like, opts QueryOptions) List {
	ls := List{}

	for id, l := range lm {
		if opts.Deleted != nil && l.Deleted != *opts.Deleted {
			continue
		}

		if !inIDs(id, opts.IDs) {
			continue
		}

		if !inIDs(l.ObjectID, opts.ObjectIDs) {
			continue
		}

		if !inTypes(l.ObjectType, opts.ObjectTypes) {
			continue
		}

		if !inIDs(l.UserID, opts.UserIDs) {
			continue
		}

		ls = append(ls, l)
	}

	return ls
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

func inTypes(ty string, ts []string) bool {
	if len(ts) == 0 {
		return true
	}

	keep := false

	for _, t := range ts {
		if ty == t {
			keep = true
			break
		}
	}

	return keep
}
