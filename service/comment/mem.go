package comment

import (
	"sort"
	"time"

	"github.com/letsgo/activities/platform/flake"
)

type memService struct {
	comments map[string]Map
}

// MemService returns a memory based Service implementation.
func MemService() Service {
	return &memService{
		comments: map[string]Map{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return 0, err
	}

	return len(filterMap(s.comments[ns], opts)), nil
}

func (s *memService) Put(ns string, input *Comment) (*Comment, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		bucket = s.comments[ns]
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
	bucket[input.ID] = copyComment(input)

	return copyComment(input), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	cs := filterMap(s.comments[ns], opts)

	sort.Sort(cs)

	if opts.Offset > 0 {
		if opts.Offset > len(cs) {
			return List{}, nil
		}

		cs = cs[opts.Offset:]
	}

	if opts.Limit > 0 && len(cs) > opts.Limit {
		cs = cs[:opts.Limit]
	}

	return cs, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.comments[ns]; !ok {
		s.comments[ns] = Map{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.comments[ns]; ok {
		delete(s.comments, ns)
	}

	return nil
}

func copyComment(c *Comment) *Comment {
	old := *c
	return &old
}

func filterMap(cm Map, opts QueryOptions) List {
	cs := List{}

	for id, c := range cm {
		if !inIDs(c.ActivityID, opts.ActivityIDs) {
			continue
		}

		if opts.Deleted != nil && c.Deleted != *opts.Deleted {
			continue
		}

		if !inIDs(id, opts.IDs) {
			continue
		}

		if !inIDs(c.OwnerID, opts.OwnerIDs) {
			continue
		}

		if !inIDs(c.ParentID, opts.ParentIDs) {
			continue
		}

		if opts.RootsOnly && c.ParentID != 0 {
			continue
		}

		if opts.WithPhotos != nil && (len(c.Photos) > 0) != *opts.WithPhotos {
			continue
		}

		cs = append(cs, c)
	}

	return cs
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
