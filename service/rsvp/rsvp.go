package rsvp

import (
	"fmt"
	"time"

	"github.com/letsgo/activities/platform/service"
)

// Rsvp marks the intent of a user to take part in an Activity. There is at
// most one live Rsvp per (ActivityID, UserID) pair.
type Rsvp struct {
	ActivityID uint64    `json:"activity_id"`
	Deleted    bool      `json:"deleted"`
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate performs checks on the Rsvp values for completeness and
// correctness.
func (r *Rsvp) Validate() error {
	if r.ActivityID == 0 {
		return wrapError(ErrInvalidRsvp, "activity id not set")
	}

	if r.UserID == 0 {
		return wrapError(ErrInvalidRsvp, "user id not set")
	}

	return nil
}

// List is a collection of Rsvps.
type List []*Rsvp

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].UpdatedAt.After(l[j].UpdatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// ActivityIDs returns the extracted ActivityID of all rsvps as list.
func (l List) ActivityIDs() []uint64 {
	ids := []uint64{}

	for _, r := range l {
		ids = append(ids, r.ActivityID)
	}

	return ids
}

// UserIDs returns the extracted UserID of all rsvps as list.
func (l List) UserIDs() []uint64 {
	ids := []uint64{}

	for _, r := range l {
		ids = append(ids, r.UserID)
	}

	return ids
}

// QueryOptions are used to narrow down Rsvp queries.
type QueryOptions struct {
	ActivityIDs []uint64
	Deleted     *bool
	IDs         []uint64
	Limit       int
	UserIDs     []uint64
}

// Service for rsvp interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, rsvp *Rsvp) (*Rsvp, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "rsvps")
}
