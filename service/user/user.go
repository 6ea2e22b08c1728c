package user

import (
	"fmt"
	"sort"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/letsgo/activities/platform/service"
)

var defaultEnabled = true

// Image represents a user image asset.
type Image struct {
	URL    string `json:"url"`
	Type   string `json:"type"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// List is a collection of users.
type List []*User

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].CreatedAt.After(l[j].CreatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// IDs returns the extracted ID of all users as list.
func (l List) IDs() []uint64 {
	ids := []uint64{}

	for _, u := range l {
		ids = append(ids, u.ID)
	}

	return ids
}

// ToMap transforms the list to a Map.
func (l List) ToMap() Map {
	um := Map{}

	for _, u := range l {
		um[u.ID] = u
	}

	return um
}

// Map is a user collection with their id as index.
type Map map[uint64]*User

// Merge combines two Maps.
func (m Map) Merge(x Map) Map {
	for id, user := range x {
		m[id] = user
	}

	return m
}

// ToList returns the Map as an ordered List.
func (m Map) ToList() List {
	us := List{}

	for _, u := range m {
		us = append(us, u)
	}

	sort.Sort(us)

	return us
}

// QueryOptions is used to narrow-down user queries.
type QueryOptions struct {
	Deleted   *bool
	Emails    []string
	Enabled   *bool
	IDs       []uint64
	Limit     int
	Usernames []string
}

// Service for user interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, user *User) (*User, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// User is the representation of a member of the platform.
type User struct {
	About     string           `json:"about"`
	Deleted   bool             `json:"deleted"`
	Enabled   bool             `json:"enabled"`
	Email     string           `json:"email,omitempty"`
	Firstname string           `json:"first_name"`
	ID        uint64           `json:"id"`
	Images    map[string]Image `json:"images,omitempty"`
	Lastname  string           `json:"last_name"`
	Password  string           `json:"password"`
	Username  string           `json:"user_name,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Validate performs semantic checks on the passed User values for correctness.
func (u *User) Validate() error {
	if u.Email == "" && u.Username == "" {
		return wrapError(ErrInvalidUser, "email or username must be set")
	}

	if ok := govalidator.IsEmail(u.Email); u.Email != "" && !ok {
		return wrapError(ErrInvalidUser, "invalid email address '%s'", u.Email)
	}

	if len(u.Firstname) > 40 {
		return wrapError(ErrInvalidUser, "firstname too long")
	}

	if len(u.Lastname) > 40 {
		return wrapError(ErrInvalidUser, "lastname too long")
	}

	if u.Password == "" {
		return wrapError(ErrInvalidUser, "password must be set")
	}

	if u.Username != "" {
		if len(u.Username) < 2 {
			return wrapError(ErrInvalidUser, "username too short")
		}
		if len(u.Username) > 40 {
			return wrapError(ErrInvalidUser, "username too long")
		}
	}

	return nil
}

// ListFromIDs gathers a user collection from the Service for the given ids.
func ListFromIDs(s Service, ns string, ids ...uint64) (List, error) {
	var (
		is   = []uint64{}
		seen = map[uint64]struct{}{}
	)

	if len(ids) == 0 {
		return List{}, nil
	}

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		is = append(is, id)
	}

	return s.Query(ns, QueryOptions{
		Enabled: &defaultEnabled,
		IDs:     is,
	})
}

// MapFromIDs return a populated user map for the given list of ids.
func MapFromIDs(s Service, ns string, ids ...uint64) (Map, error) {
	us, err := ListFromIDs(s, ns, ids...)
	if err != nil {
		return nil, err
	}

	um := Map{}

	for _, u := range us {
		um[u.ID] = u
	}

	return um, nil
}

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "users")
}
