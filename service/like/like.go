package like

import (
	"fmt"
	"time"

	"github.com/letsgo/activities/platform/service"
)

// Supported object types a Like can attach to.
const (
	TypeActivity = "activity"
	TypeComment  = "comment"
)

// Like expresses the appreciation of a user for an Activity or a Comment.
// There is at most one live Like per (ObjectID, ObjectType, UserID) triple.
type Like struct {
	Deleted    bool      `json:"deleted"`
	ID         uint64    `json:"id"`
	ObjectID   uint64    `json:"object_id"`
	ObjectType string    `json:"object_type"`
	UserID     uint64    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate performs checks on the Like values for completeness and
// correctness.
func (l *Like) Validate() error {
	if l.ObjectID == 0 {
		return wrapError(ErrInvalidLike, "object id not set")
	}

	switch l.ObjectType {
	case TypeActivity, TypeComment:
		// valid
	default:
		return wrapError(ErrInvalidLike, "invalid object type '%s'", l.ObjectType)
	}

	if l.UserID == 0 {
		return wrapError(ErrInvalidLike, "user id not set")
	}

	return nil
}

// List is a collection of Likes.
type List []*Like

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].UpdatedAt.After(l[j].UpdatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// UserIDs returns the extracted UserID of all likes as list.
func (l List) UserIDs() []uint64 {
	ids := []uint64{}

	for _, like := range l {
		ids = append(ids, like.UserID)
	}

	return ids
}

// QueryOptions are used to narrow down Like queries.
type QueryOptions struct {
	Deleted     *bool
	IDs         []uint64
	Limit       int
	ObjectIDs   []uint64
	ObjectTypes []string
	UserIDs     []uint64
}

// Service for like interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, like *Like) (*Like, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "likes")
}
