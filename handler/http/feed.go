package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/letsgo/activities/core"
)

// FeedPublic returns the feed of public activities.
func FeedPublic(fn core.FeedPublicFunc, namespace string) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		page, err := extractPage(r)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		feed, err := fn(namespace, currentUser.ID, page)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadFeed{feed: feed})
	}
}

// FeedProfile returns the feed of activities owned by the requested user.
func FeedProfile(fn core.FeedProfileFunc, namespace string) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		target, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		page, err := extractPage(r)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		feed, err := fn(namespace, currentUser.ID, target, page)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadFeed{feed: feed})
	}
}

// FeedSelf returns the action-log driven feed of the current user.
func FeedSelf(fn core.FeedSelfFunc, namespace string) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		page, err := extractPage(r)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		feed, err := fn(namespace, currentUser.ID, page)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadFeed{feed: feed})
	}
}

// FeedUpcoming returns the feed of activities the requested user owns or
// takes part in.
func FeedUpcoming(fn core.FeedUpcomingFunc, namespace string) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		target, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		page, err := extractPage(r)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		feed, err := fn(namespace, currentUser.ID, target, page)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadFeed{feed: feed})
	}
}

type payloadFeed struct {
	feed *core.Feed
}

func (p *payloadFeed) MarshalJSON() ([]byte, error) {
	is := []*payloadFeedItem{}

	for _, i := range p.feed.Items {
		is = append(is, &payloadFeedItem{item: i})
	}

	return json.Marshal(struct {
		Data   []*payloadFeedItem `json:"data"`
		Paging core.Paging        `json:"paging"`
	}{
		Data:   is,
		Paging: p.feed.Paging,
	})
}

type payloadFeedItem struct {
	item *core.FeedItem
}

func (p *payloadFeedItem) MarshalJSON() ([]byte, error) {
	f := struct {
		Activity *payloadActivityDetail `json:"activity,omitempty"`
		Comment  *payloadCommentDetail  `json:"comment,omitempty"`
		Verb     string                 `json:"verb"`
	}{
		Verb: p.item.Verb,
	}

	if p.item.Activity != nil {
		f.Activity = &payloadActivityDetail{detail: p.item.Activity}
	}

	if p.item.Comment != nil {
		f.Comment = &payloadCommentDetail{detail: p.item.Comment}
	}

	return json.Marshal(&f)
}
