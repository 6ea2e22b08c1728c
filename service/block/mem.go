package block

import (
	"fmt"
	"math"
	"time"
)

type memService struct {
	blocks map[string]map[string]*Block
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		blocks: map[string]map[string]*Block{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return -1, err
	}

	return len(filterMap(s.blocks[ns], opts)), nil
}

func (s *memService) Put(ns string, b *Block) (*Block, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}

	b.CreatedAt = b.CreatedAt.UTC()

	stored, ok := s.blocks[ns][stringKey(b)]
	if ok {
		b.CreatedAt = stored.CreatedAt
	}

	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}

	b.UpdatedAt = b.UpdatedAt.UTC()

	s.blocks[ns][stringKey(b)] = b

	return b, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	return filterMap(s.blocks[ns], opts), nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.blocks[ns]; !ok {
		s.blocks[ns] = map[string]*Block{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	return fmt.Errorf("not implemented")
}

func filterMap(bm map[string]*Block, opts QueryOptions) List {
	bs := List{}

	for _, b := range bm {
		if !inIDs(b.BlockedID, opts.BlockedIDs) {
			continue
		}

		if opts.Enabled != nil && b.Enabled != *opts.Enabled {
			continue
		}

		if !inIDs(b.UserID, opts.UserIDs) {
			continue
		}

		bs = append(bs, b)
	}

	if len(bs) == 0 {
		return bs
	}

	if opts.Limit > 0 {
		l := math.Min(float64(len(bs)), float64(opts.Limit))

		return bs[:int(l)]
	}

	return bs
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

func stringKey(b *Block) string {
	return fmt.Sprintf("%d-%d", b.UserID, b.BlockedID)
}
