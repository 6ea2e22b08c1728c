package comment

import (
	"fmt"
	"time"

	"github.com/letsgo/activities/platform/service"
)

// Comment is user provided content attached to an Activity. A Comment
// carrying photos doubles as a photo post on the Activity.
type Comment struct {
	ActivityID uint64    `json:"activity_id"`
	Content    string    `json:"content"`
	Deleted    bool      `json:"deleted"`
	ID         uint64    `json:"id"`
	OwnerID    uint64    `json:"owner_id"`
	ParentID   uint64    `json:"parent_id"`
	Photos     []string  `json:"photos,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate performs checks on the Comment values for completeness and
// correctness.
func (c *Comment) Validate() error {
	if c.ActivityID == 0 {
		return wrapError(ErrInvalidComment, "activity id not set")
	}

	if c.OwnerID == 0 {
		return wrapError(ErrInvalidComment, "owner id not set")
	}

	if c.Content == "" && len(c.Photos) == 0 {
		return wrapError(ErrInvalidComment, "content or photos must be set")
	}

	return nil
}

// List is a collection of Comments.
type List []*Comment

// IDs returns the extracted ID of all comments as list.
func (l List) IDs() []uint64 {
	ids := []uint64{}

	for _, c := range l {
		ids = append(ids, c.ID)
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

// OwnerIDs returns the extracted OwnerID of all comments as list.
func (l List) OwnerIDs() []uint64 {
	ids := []uint64{}

	for _, c := range l {
		ids = append(ids, c.OwnerID)
	}

	return ids
}

// Map is a comment collection with their id as index.
type Map map[uint64]*Comment

// ToMap transforms the list to a Map.
func (l List) ToMap() Map {
	cm := Map{}

	for _, c := range l {
		cm[c.ID] = c
	}

	return cm
}

// QueryOptions are used to narrow down Comment queries.
type QueryOptions struct {
	ActivityIDs []uint64
	Deleted     *bool
	IDs         []uint64
	Limit       int
	Offset      int
	OwnerIDs    []uint64
	ParentIDs   []uint64
	RootsOnly   bool
	WithPhotos  *bool
}

// Service for comment interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, comment *Comment) (*Comment, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "comments")
}
