package block

import (
	"time"

	"github.com/letsgo/activities/platform/service"
)

// Block represents a directed block edge, where UserID no longer wants to
// interact with BlockedID.
type Block struct {
	BlockedID uint64    `json:"blocked_id"`
	Enabled   bool      `json:"enabled"`
	UserID    uint64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate performs checks on the Block values for completeness and
// correctness.
func (b Block) Validate() error {
	if b.UserID == 0 {
		return wrapError(ErrInvalidBlock, "user id not set")
	}

	if b.BlockedID == 0 {
		return wrapError(ErrInvalidBlock, "blocked id not set")
	}

	if b.UserID == b.BlockedID {
		return wrapError(ErrInvalidBlock, "self block")
	}

	return nil
}

// List is a collection of Blocks.
type List []*Block

// BlockedIDs returns the extracted BlockedID of all blocks as list.
func (l List) BlockedIDs() []uint64 {
	ids := []uint64{}

	for _, b := range l {
		ids = append(ids, b.BlockedID)
	}

	return ids
}

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].UpdatedAt.After(l[j].UpdatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// UserIDs returns the extracted UserID of all blocks as list.
func (l List) UserIDs() []uint64 {
	ids := []uint64{}

	for _, b := range l {
		ids = append(ids, b.UserID)
	}

	return ids
}

// QueryOptions are used to narrow down Block queries.
type QueryOptions struct {
	BlockedIDs []uint64
	Enabled    *bool
	Limit      int
	UserIDs    []uint64
}

// Service for block interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, block *Block) (*Block, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service
