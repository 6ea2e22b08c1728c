package follower

import (
	"time"

	"github.com/letsgo/activities/platform/service"
	"github.com/letsgo/activities/platform/source"
)

// Supported statuses for follow requests.
const (
	StatusPending Status = iota
	StatusAccepted
	StatusRejected
)

// Follow represents a directed follow request between two users, where
// FollowerID wants to follow UserID.
type Follow struct {
	Enabled    bool      `json:"enabled"`
	FollowerID uint64    `json:"follower_id"`
	Status     Status    `json:"status"`
	UserID     uint64    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MatchOpts indicates if the Follow matches the given QueryOptions.
func (f *Follow) MatchOpts(opts *QueryOptions) bool {
	if opts == nil {
		return true
	}

	if opts.Enabled != nil && f.Enabled != *opts.Enabled {
		return false
	}

	if len(opts.Statuses) > 0 {
		discard := true

		for _, s := range opts.Statuses {
			if f.Status == s {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	return true
}

// Validate performs checks on the Follow values for completeness and
// correctness.
func (f Follow) Validate() error {
	if f.UserID == 0 {
		return wrapError(ErrInvalidFollow, "user id not set")
	}

	if f.FollowerID == 0 {
		return wrapError(ErrInvalidFollow, "follower id not set")
	}

	if f.UserID == f.FollowerID {
		return wrapError(ErrInvalidFollow, "self follow")
	}

	switch f.Status {
	case StatusPending, StatusAccepted, StatusRejected:
		// valid
	default:
		return wrapError(ErrInvalidFollow, "invalid status")
	}

	return nil
}

// Consumer observes state changes.
type Consumer interface {
	Consume() (*StateChange, error)
}

// List is a collection of Follows.
type List []*Follow

// FollowerIDs returns the extracted FollowerID of all follows as list.
func (l List) FollowerIDs() []uint64 {
	ids := []uint64{}

	for _, f := range l {
		ids = append(ids, f.FollowerID)
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

// UserIDs returns the extracted UserID of all follows as list.
func (l List) UserIDs() []uint64 {
	ids := []uint64{}

	for _, f := range l {
		ids = append(ids, f.UserID)
	}

	return ids
}

// Producer creates state change notifications.
type Producer interface {
	Propagate(namespace string, old, new *Follow) (string, error)
}

// QueryOptions are used to narrow down Follow queries.
type QueryOptions struct {
	After       time.Time `json:"-"`
	Before      time.Time `json:"-"`
	Enabled     *bool     `json:"enabled,omitempty"`
	FollowerIDs []uint64  `json:"follower_ids,omitempty"`
	Limit       int       `json:"-"`
	Statuses    []Status  `json:"statuses,omitempty"`
	UserIDs     []uint64  `json:"user_ids,omitempty"`
}

// Service for follow interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, follow *Follow) (*Follow, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Source encapsulates state change notification operations.
type Source interface {
	source.Acker
	Consumer
	Producer
}

// SourceMiddleware is a chainable behaviour modifier for Source.
type SourceMiddleware func(Source) Source

// StateChange transports all information necessary to observe state changes.
type StateChange struct {
	AckID     string
	ID        string
	Namespace string
	New       *Follow
	Old       *Follow
	SentAt    time.Time
}

// Status of a follow request.
type Status int
