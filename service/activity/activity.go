package activity

import (
	"fmt"
	"time"

	"github.com/letsgo/activities/platform/service"
)

// Privacy levels controlling who can see an Activity.
const (
	PrivacyPrivate Privacy = 10
	PrivacyShared  Privacy = 20
	PrivacyPublic  Privacy = 30
)

// Activity is a planned happening users organise and join. StartsAt and
// Duration are in milliseconds since epoch.
type Activity struct {
	Deleted      bool      `json:"deleted"`
	Duration     int64     `json:"duration"`
	ID           uint64    `json:"id"`
	Location     string    `json:"location"`
	MeetingPoint string    `json:"meeting_point"`
	Notes        string    `json:"notes"`
	OwnerID      uint64    `json:"owner_id"`
	ParentID     uint64    `json:"parent_id,omitempty"`
	Photos       []string  `json:"photos,omitempty"`
	Privacy      Privacy   `json:"privacy"`
	StartsAt     int64     `json:"starts_at"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EndsAt returns the point in time the Activity is over in milliseconds
// since epoch.
func (a *Activity) EndsAt() int64 {
	return a.StartsAt + a.Duration
}

// Validate performs checks on the Activity values for completeness and
// correctness.
func (a *Activity) Validate() error {
	if a.OwnerID == 0 {
		return wrapError(ErrInvalidActivity, "owner id not set")
	}

	if a.Title == "" {
		return wrapError(ErrInvalidActivity, "title not set")
	}

	if a.Duration < 0 {
		return wrapError(ErrInvalidActivity, "negative duration")
	}

	switch a.Privacy {
	case PrivacyPrivate, PrivacyShared, PrivacyPublic:
		// valid
	default:
		return wrapError(ErrInvalidActivity, "invalid privacy")
	}

	return nil
}

// List is a collection of Activities.
type List []*Activity

// IDs returns the extracted ID of all activities as list.
func (l List) IDs() []uint64 {
	ids := []uint64{}

	for _, a := range l {
		ids = append(ids, a.ID)
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

// OwnerIDs returns the extracted OwnerID of all activities as list.
func (l List) OwnerIDs() []uint64 {
	ids := []uint64{}

	for _, a := range l {
		ids = append(ids, a.OwnerID)
	}

	return ids
}

// Map is an activity collection with their id as index.
type Map map[uint64]*Activity

// ToMap transforms the list to a Map.
func (l List) ToMap() Map {
	am := Map{}

	for _, a := range l {
		am[a.ID] = a
	}

	return am
}

// Privacy controls the audience of an Activity.
type Privacy uint8

// QueryOptions are used to narrow down Activity queries.
type QueryOptions struct {
	Before    time.Time
	Deleted   *bool
	EndsAfter int64
	IDs       []uint64
	Limit     int
	Offset    int
	OwnerIDs  []uint64
	ParentIDs []uint64
	Privacies []Privacy
}

// Service for activity interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, activity *Activity) (*Activity, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "activities")
}
