package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/letsgo/activities/core"
	"github.com/letsgo/activities/service/activity"
	"github.com/letsgo/activities/service/comment"
	"github.com/letsgo/activities/service/user"
)

// ActivityRetrieve returns the fully resolved detail view of a single
// activity if the viewer is allowed to see it.
func ActivityRetrieve(
	fn core.ActivityRetrieveFunc,
	namespace string,
) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractActivityID(r)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		d, err := fn(namespace, currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadActivityDetail{detail: d})
	}
}

type payloadActivity struct {
	activity *activity.Activity
}

func (p *payloadActivity) MarshalJSON() ([]byte, error) {
	a := p.activity

	return json.Marshal(struct {
		Duration     int64     `json:"duration"`
		EndsAt       int64     `json:"ends_at"`
		ID           uint64    `json:"id"`
		Location     string    `json:"location"`
		MeetingPoint string    `json:"meeting_point"`
		Notes        string    `json:"notes"`
		OwnerID      uint64    `json:"owner_id"`
		ParentID     uint64    `json:"parent_id,omitempty"`
		Privacy      uint8     `json:"privacy"`
		StartsAt     int64     `json:"starts_at"`
		Title        string    `json:"title"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}{
		Duration:     a.Duration,
		EndsAt:       a.EndsAt(),
		ID:           a.ID,
		Location:     a.Location,
		MeetingPoint: a.MeetingPoint,
		Notes:        a.Notes,
		OwnerID:      a.OwnerID,
		ParentID:     a.ParentID,
		Privacy:      uint8(a.Privacy),
		StartsAt:     a.StartsAt,
		Title:        a.Title,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	})
}

type payloadActivityDetail struct {
	detail *core.ActivityDetail
}

func (p *payloadActivityDetail) MarshalJSON() ([]byte, error) {
	d := p.detail

	f := struct {
		Activity    *payloadActivity        `json:"activity"`
		Author      *payloadUser            `json:"author,omitempty"`
		Comments    *payloadComments        `json:"comments,omitempty"`
		Likes       *payloadUsersAggregate  `json:"likes,omitempty"`
		Parent      *payloadActivityDetail  `json:"parent,omitempty"`
		Photos      *payloadPhotosAggregate `json:"photos,omitempty"`
		Rsvps       *payloadUsersAggregate  `json:"rsvps,omitempty"`
		ViewerLiked bool                    `json:"viewer_liked"`
		ViewerRsvpd bool                    `json:"viewer_rsvpd"`
	}{
		Activity:    &payloadActivity{activity: d.Activity},
		ViewerLiked: d.ViewerLike != nil,
		ViewerRsvpd: d.ViewerRsvp != nil,
	}

	if d.Author != nil {
		f.Author = &payloadUser{user: d.Author}
	}

	if d.Comments != nil {
		f.Comments = &payloadComments{aggregate: d.Comments}
	}

	if d.Likes != nil {
		f.Likes = &payloadUsersAggregate{aggregate: d.Likes}
	}

	if d.Parent != nil {
		f.Parent = &payloadActivityDetail{detail: d.Parent}
	}

	if d.Photos != nil {
		f.Photos = &payloadPhotosAggregate{aggregate: d.Photos}
	}

	if d.Rsvps != nil {
		f.Rsvps = &payloadUsersAggregate{aggregate: d.Rsvps}
	}

	return json.Marshal(&f)
}

type payloadComment struct {
	comment *comment.Comment
}

func (p *payloadComment) MarshalJSON() ([]byte, error) {
	c := p.comment

	return json.Marshal(struct {
		ActivityID uint64    `json:"activity_id"`
		Content    string    `json:"content"`
		ID         uint64    `json:"id"`
		OwnerID    uint64    `json:"owner_id"`
		ParentID   uint64    `json:"parent_id,omitempty"`
		Photos     []string  `json:"photos,omitempty"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}{
		ActivityID: c.ActivityID,
		Content:    c.Content,
		ID:         c.ID,
		OwnerID:    c.OwnerID,
		ParentID:   c.ParentID,
		Photos:     c.Photos,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	})
}

type payloadCommentDetail struct {
	detail *core.CommentDetail
}

func (p *payloadCommentDetail) MarshalJSON() ([]byte, error) {
	d := p.detail

	f := struct {
		Author      *payloadUser           `json:"author,omitempty"`
		Comment     *payloadComment        `json:"comment"`
		Likes       *payloadUsersAggregate `json:"likes,omitempty"`
		Replies     *payloadComments       `json:"replies,omitempty"`
		ViewerLiked bool                   `json:"viewer_liked"`
	}{
		Comment:     &payloadComment{comment: d.Comment},
		ViewerLiked: d.ViewerLike != nil,
	}

	if d.Author != nil {
		f.Author = &payloadUser{user: d.Author}
	}

	if d.Likes != nil {
		f.Likes = &payloadUsersAggregate{aggregate: d.Likes}
	}

	if d.Replies != nil {
		f.Replies = &payloadComments{aggregate: d.Replies}
	}

	return json.Marshal(&f)
}

type payloadCommentItem struct {
	item *core.CommentItem
}

func (p *payloadCommentItem) MarshalJSON() ([]byte, error) {
	f := struct {
		Author      *payloadUser    `json:"author,omitempty"`
		Comment     *payloadComment `json:"comment"`
		ViewerLiked bool            `json:"viewer_liked"`
	}{
		Comment:     &payloadComment{comment: p.item.Comment},
		ViewerLiked: p.item.ViewerLike != nil,
	}

	if p.item.Author != nil {
		f.Author = &payloadUser{user: p.item.Author}
	}

	return json.Marshal(&f)
}

type payloadComments struct {
	aggregate *core.CommentsAggregate
}

func (p *payloadComments) MarshalJSON() ([]byte, error) {
	is := []*payloadCommentItem{}

	for _, i := range p.aggregate.Items {
		is = append(is, &payloadCommentItem{item: i})
	}

	return json.Marshal(struct {
		Items []*payloadCommentItem `json:"items"`
		Total int                   `json:"total"`
	}{
		Items: is,
		Total: p.aggregate.Total,
	})
}

type payloadPhotosAggregate struct {
	aggregate *core.PhotosAggregate
}

func (p *payloadPhotosAggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Items []string `json:"items"`
		Total int      `json:"total"`
	}{
		Items: p.aggregate.Items,
		Total: p.aggregate.Total,
	})
}

type payloadUser struct {
	user *user.User
}

func (p *payloadUser) MarshalJSON() ([]byte, error) {
	u := p.user

	return json.Marshal(struct {
		About     string                `json:"about"`
		Firstname string                `json:"first_name"`
		ID        uint64                `json:"id"`
		Images    map[string]user.Image `json:"images,omitempty"`
		Lastname  string                `json:"last_name"`
		Username  string                `json:"user_name,omitempty"`
		CreatedAt time.Time             `json:"created_at"`
		UpdatedAt time.Time             `json:"updated_at"`
	}{
		About:     u.About,
		Firstname: u.Firstname,
		ID:        u.ID,
		Images:    u.Images,
		Lastname:  u.Lastname,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
}

type payloadUsersAggregate struct {
	aggregate *core.UsersAggregate
}

func (p *payloadUsersAggregate) MarshalJSON() ([]byte, error) {
	is := []*payloadUser{}

	for _, u := range p.aggregate.Items {
		is = append(is, &payloadUser{user: u})
	}

	return json.Marshal(struct {
		Items []*payloadUser `json:"items"`
		Total int            `json:"total"`
	}{
		Items: is,
		Total: p.aggregate.Total,
	})
}
