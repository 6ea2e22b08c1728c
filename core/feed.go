package core

import (
	"sort"
	"time"

	"github.com/letsgo/activities/service/action"
	"github.com/letsgo/activities/service/activity"
	"github.com/letsgo/activities/service/comment"
	"github.com/letsgo/activities/service/follower"
	"github.com/letsgo/activities/service/rsvp"
)

// FeedItem is a single feed slot, carrying either a resolved activity or a
// resolved comment, tagged with the verb which put it there.
type FeedItem struct {
	Activity *ActivityDetail
	Comment  *CommentDetail
	Verb     string
}

// Feed is a paginated collection of feed items.
type Feed struct {
	Items  []*FeedItem
	Paging Paging
}

// FeedPublicFunc returns the feed of public activities.
type FeedPublicFunc func(ns string, viewer uint64, page Page) (*Feed, error)

// FeedPublic returns the feed of public activities ordered by last update,
// each expanded to its full detail view.
func FeedPublic(
	activities activity.Service,
	resolve ResolveActivityFunc,
) FeedPublicFunc {
	return func(ns string, viewer uint64, page Page) (*Feed, error) {
		opts := activity.QueryOptions{
			Deleted: &defaultDeleted,
			Privacies: []activity.Privacy{
				activity.PrivacyPublic,
			},
		}

		total, err := activities.Count(ns, opts)
		if err != nil {
			return nil, err
		}

		opts.Limit = page.Limit
		opts.Offset = page.Offset

		as, err := activities.Query(ns, opts)
		if err != nil {
			return nil, err
		}

		is, err := resolveActivityItems(resolve, ns, viewer, action.VerbPost, as)
		if err != nil {
			return nil, err
		}

		return &Feed{
			Items:  is,
			Paging: paging(total, page),
		}, nil
	}
}

// FeedProfileFunc returns the feed of activities owned by the target user.
type FeedProfileFunc func(
	ns string,
	viewer, target uint64,
	page Page,
) (*Feed, error)

// FeedProfile returns the feed of activities owned by the target user. The
// owner sees all of them, other viewers only activities which have not
// ended yet and whose privacy admits them.
func FeedProfile(
	activities activity.Service,
	follows follower.Service,
	resolve ResolveActivityFunc,
) FeedProfileFunc {
	return func(
		ns string,
		viewer, target uint64,
		page Page,
	) (*Feed, error) {
		opts := activity.QueryOptions{
			Deleted: &defaultDeleted,
			OwnerIDs: []uint64{
				target,
			},
		}

		if viewer != target {
			opts.EndsAfter = nowMillis()
			opts.Privacies = []activity.Privacy{
				activity.PrivacyPublic,
			}

			ok, err := isAcceptedFollower(follows, ns, viewer, target)
			if err != nil {
				return nil, err
			}

			if ok {
				opts.Privacies = append(opts.Privacies, activity.PrivacyShared)
			}
		}

		total, err := activities.Count(ns, opts)
		if err != nil {
			return nil, err
		}

		opts.Limit = page.Limit
		opts.Offset = page.Offset

		as, err := activities.Query(ns, opts)
		if err != nil {
			return nil, err
		}

		is, err := resolveActivityItems(resolve, ns, viewer, action.VerbPost, as)
		if err != nil {
			return nil, err
		}

		return &Feed{
			Items:  is,
			Paging: paging(total, page),
		}, nil
	}
}

// FeedUpcomingFunc returns the feed of activities the target user owns or
// takes part in which end after the look-back cutoff.
type FeedUpcomingFunc func(
	ns string,
	viewer, target uint64,
	page Page,
) (*Feed, error)

// FeedUpcoming returns the union of activities owned and RSVP'd by the
// target user with an end time inside the look-back window, deduplicated by
// id.
func FeedUpcoming(
	activities activity.Service,
	rsvps rsvp.Service,
	resolve ResolveActivityFunc,
	lookback time.Duration,
) FeedUpcomingFunc {
	return func(
		ns string,
		viewer, target uint64,
		page Page,
	) (*Feed, error) {
		cutoff := nowMillis() - lookback.Milliseconds()

		as, err := activities.Query(ns, activity.QueryOptions{
			Deleted:   &defaultDeleted,
			EndsAfter: cutoff,
			OwnerIDs: []uint64{
				target,
			},
		})
		if err != nil {
			return nil, err
		}

		rs, err := rsvps.Query(ns, rsvp.QueryOptions{
			Deleted: &defaultDeleted,
			UserIDs: []uint64{
				target,
			},
		})
		if err != nil {
			return nil, err
		}

		if ids := rs.ActivityIDs(); len(ids) > 0 {
			js, err := activities.Query(ns, activity.QueryOptions{
				Deleted:   &defaultDeleted,
				EndsAfter: cutoff,
				IDs:       ids,
			})
			if err != nil {
				return nil, err
			}

			as = append(as, js...)
		}

		var (
			seen   = map[uint64]struct{}{}
			merged = activity.List{}
		)

		for _, a := range as {
			if _, ok := seen[a.ID]; ok {
				continue
			}

			seen[a.ID] = struct{}{}
			merged = append(merged, a)
		}

		sort.Sort(merged)

		total := len(merged)

		lo, hi := pageBounds(total, page)

		is, err := resolveActivityItems(
			resolve,
			ns,
			viewer,
			action.VerbJoin,
			merged[lo:hi],
		)
		if err != nil {
			return nil, err
		}

		return &Feed{
			Items:  is,
			Paging: paging(total, page),
		}, nil
	}
}

// FeedSelfFunc returns the action-log driven feed of the viewer.
type FeedSelfFunc func(ns string, viewer uint64, page Page) (*Feed, error)

// FeedSelf returns the feed of things the viewer did (post, share) and
// things which happened on their content (join, photo-comment). Actions are
// ordered by last update and deduplicated by (verb, object) before the page
// is cut, so the total and page size refer to deduplicated feed slots.
// Resolved slots are grouped by verb, post before share before join before
// photo-comment, never re-sorted chronologically.
func FeedSelf(
	actions action.Service,
	activities activity.Service,
	comments comment.Service,
	resolveActivity ResolveActivityFunc,
	resolveComment ResolveCommentFunc,
) FeedSelfFunc {
	return func(ns string, viewer uint64, page Page) (*Feed, error) {
		owned, err := activities.Query(ns, activity.QueryOptions{
			Deleted: &defaultDeleted,
			OwnerIDs: []uint64{
				viewer,
			},
		})
		if err != nil {
			return nil, err
		}

		objectIDs := owned.IDs()

		if len(objectIDs) > 0 {
			withPhotos := true

			pcs, err := comments.Query(ns, comment.QueryOptions{
				ActivityIDs: objectIDs,
				Deleted:     &defaultDeleted,
				WithPhotos:  &withPhotos,
			})
			if err != nil {
				return nil, err
			}

			objectIDs = append(objectIDs, pcs.IDs()...)
		}

		as := action.List{}

		if len(objectIDs) > 0 {
			ts, err := actions.Query(ns, action.QueryOptions{
				ObjectIDs: objectIDs,
				Verbs: []string{
					action.VerbJoin,
					action.VerbPhotoComment,
				},
			})
			if err != nil {
				return nil, err
			}

			as = append(as, ts...)
		}

		os, err := actions.Query(ns, action.QueryOptions{
			ActorIDs: []uint64{
				viewer,
			},
			Verbs: []string{
				action.VerbPost,
				action.VerbShare,
			},
		})
		if err != nil {
			return nil, err
		}

		as = append(as, os...)

		sort.Sort(as)

		slots := dedupActions(as)
		total := len(slots)

		lo, hi := pageBounds(total, page)
		slots = slots[lo:hi]

		var (
			joinIDs  = []uint64{}
			photoIDs = []uint64{}
			postIDs  = []uint64{}
			shareIDs = []uint64{}
		)

		for _, a := range slots {
			switch a.Verb {
			case action.VerbJoin:
				joinIDs = append(joinIDs, a.ObjectID)
			case action.VerbPhotoComment:
				photoIDs = append(photoIDs, a.ObjectID)
			case action.VerbPost:
				postIDs = append(postIDs, a.ObjectID)
			case action.VerbShare:
				shareIDs = append(shareIDs, a.ObjectID)
			}
		}

		activityIDs := append(append(postIDs, shareIDs...), joinIDs...)

		am := activity.Map{}

		if len(activityIDs) > 0 {
			rs, err := activities.Query(ns, activity.QueryOptions{
				Deleted: &defaultDeleted,
				IDs:     activityIDs,
			})
			if err != nil {
				return nil, err
			}

			am = rs.ToMap()
		}

		cm := comment.Map{}

		if len(photoIDs) > 0 {
			rs, err := comments.Query(ns, comment.QueryOptions{
				Deleted: &defaultDeleted,
				IDs:     photoIDs,
			})
			if err != nil {
				return nil, err
			}

			cm = rs.ToMap()
		}

		items := []*FeedItem{}

		for _, group := range []struct {
			ids  []uint64
			verb string
		}{
			{ids: postIDs, verb: action.VerbPost},
			{ids: shareIDs, verb: action.VerbShare},
			{ids: joinIDs, verb: action.VerbJoin},
		} {
			for _, id := range group.ids {
				a, ok := am[id]
				if !ok {
					// Vanished between selection and resolution, drop it.
					continue
				}

				d, err := resolveActivity(ns, viewer, a, 0)
				if err != nil {
					return nil, err
				}

				items = append(items, &FeedItem{
					Activity: d,
					Verb:     group.verb,
				})
			}
		}

		for _, id := range photoIDs {
			c, ok := cm[id]
			if !ok {
				continue
			}

			d, err := resolveComment(ns, viewer, c)
			if err != nil {
				return nil, err
			}

			items = append(items, &FeedItem{
				Comment: d,
				Verb:    action.VerbPhotoComment,
			})
		}

		return &Feed{
			Items:  items,
			Paging: paging(total, page),
		}, nil
	}
}

type slotKey struct {
	objectID uint64
	verb     string
}

// dedupActions keeps the first occurrence per (verb, object) of an ordered
// action list.
func dedupActions(as action.List) action.List {
	var (
		seen  = map[slotKey]struct{}{}
		slots = action.List{}
	)

	for _, a := range as {
		k := slotKey{objectID: a.ObjectID, verb: a.Verb}

		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		slots = append(slots, a)
	}

	return slots
}

func resolveActivityItems(
	resolve ResolveActivityFunc,
	ns string,
	viewer uint64,
	verb string,
	as activity.List,
) ([]*FeedItem, error) {
	is := []*FeedItem{}

	for _, a := range as {
		d, err := resolve(ns, viewer, a, 0)
		if err != nil {
			return nil, err
		}

		is = append(is, &FeedItem{
			Activity: d,
			Verb:     verb,
		})
	}

	return is, nil
}

func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
