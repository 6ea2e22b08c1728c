package action

import (
	"fmt"
	"time"

	"github.com/letsgo/activities/platform/service"
)

// Supported verbs describing what the actor did.
const (
	VerbDelete       = "delete"
	VerbJoin         = "join"
	VerbPhotoComment = "photo-comment"
	VerbPost         = "post"
	VerbRemoveRsvp   = "remove-rsvp"
	VerbShare        = "share"
)

// Supported object types an Action can point at.
const (
	TypeActivity = "activity"
	TypeComment  = "comment"
)

// Action is an append-only record of something an actor did to an object.
// Rows are never mutated after the fact, feeds are derived from them.
type Action struct {
	ActorID    uint64    `json:"actor_id"`
	ID         uint64    `json:"id"`
	ObjectID   uint64    `json:"object_id"`
	ObjectType string    `json:"object_type"`
	TargetID   uint64    `json:"target_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Verb       string    `json:"verb"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate performs checks on the Action values for completeness and
// correctness.
func (a *Action) Validate() error {
	if a.ActorID == 0 {
		return wrapError(ErrInvalidAction, "actor id not set")
	}

	if a.ObjectID == 0 {
		return wrapError(ErrInvalidAction, "object id not set")
	}

	switch a.ObjectType {
	case TypeActivity, TypeComment:
		// valid
	default:
		return wrapError(ErrInvalidAction, "invalid object type '%s'", a.ObjectType)
	}

	switch a.Verb {
	case VerbDelete, VerbJoin, VerbPhotoComment, VerbPost, VerbRemoveRsvp, VerbShare:
		// valid
	default:
		return wrapError(ErrInvalidAction, "invalid verb '%s'", a.Verb)
	}

	return nil
}

// List is a collection of Actions.
type List []*Action

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].UpdatedAt.After(l[j].UpdatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// ActorIDs returns the extracted ActorID of all actions as list.
func (l List) ActorIDs() []uint64 {
	ids := []uint64{}

	for _, a := range l {
		ids = append(ids, a.ActorID)
	}

	return ids
}

// ObjectIDs returns the extracted ObjectID of all actions as list.
func (l List) ObjectIDs() []uint64 {
	ids := []uint64{}

	for _, a := range l {
		ids = append(ids, a.ObjectID)
	}

	return ids
}

// QueryOptions are used to narrow down Action queries.
type QueryOptions struct {
	ActorIDs    []uint64
	Before      time.Time
	IDs         []uint64
	Limit       int
	ObjectIDs   []uint64
	ObjectTypes []string
	Verbs       []string
}

// Service for action interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, action *Action) (*Action, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "actions")
}
