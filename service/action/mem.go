package action

import (
	"sort"
	"time"

	"github.com/letsgo/activities/platform/flake"
)

type memService struct {
	actions map[string]map[uint64]*Action
}

// MemService returns a memory based Service implementation.
func MemService() Service {
	return &memService{
		actions: map[string]map[uint64]*Action{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return 0, err
	}

	return len(filterMap(s.actions[ns], opts)), nil
}

func (s *memService) Put(ns string, input *Action) (*Action, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	id, err := flake.NextID(flakeNamespace(ns))
	if err != nil {
		return nil, err
	}

	if input.CreatedAt.IsZero() {
		input.CreatedAt = now
	}

	input.CreatedAt = input.CreatedAt.UTC()
	input.ID = id

	if input.UpdatedAt.IsZero() {
		input.UpdatedAt = now
	}

	input.UpdatedAt = input.UpdatedAt.UTC()

	s.actions[ns][id] = copyAction(input)

	return copyAction(input), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	as := filterMap(s.actions[ns], opts)

	sort.Sort(as)

	if opts.Limit > 0 && len(as) > opts.Limit {
		as = as[:opts.Limit]
	}

	return as, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.actions[ns]; !ok {
		s.actions[ns] = map[uint64]*Action{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.actions[ns]; ok {
		delete(s.actions, ns)
	}

	return nil
}

func copyAction(a *Action) *Action {
	old := *a
	return &old
}

func filterMap(am map[uint64]*Action, opts QueryOptions) List {
	as := List{}

	for id, a := range am {
		if !inIDs(a.ActorID, opts.ActorIDs) {
			continue
		}

		if !opts.Before.IsZero() && !a.UpdatedAt.UTC().Before(opts.Before.UTC()) {
			continue
		}

		if !inIDs(id, opts.IDs) {
			continue
		}

		if !inIDs(a.ObjectID, opts.ObjectIDs) {
			continue
		}

		if !inTypes(a.ObjectType, opts.ObjectTypes) {
			continue
		}

		if !inTypes(a.Verb, opts.Verbs) {
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
