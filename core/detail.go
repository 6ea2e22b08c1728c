package core

import (
	"golang.org/x/sync/errgroup"

	"github.com/letsgo/activities/service/activity"
	"github.com/letsgo/activities/service/comment"
	"github.com/letsgo/activities/service/like"
	"github.com/letsgo/activities/service/rsvp"
	"github.com/letsgo/activities/service/user"
)

// maxParentDepth caps ancestor expansion, share chains are never walked
// past one hop.
const maxParentDepth = 1

// UsersAggregate carries the most recently updated users of a collection
// together with its overall total.
type UsersAggregate struct {
	Items user.List
	Total int
}

// PhotosAggregate carries the most recent photos together with the overall
// total.
type PhotosAggregate struct {
	Items []string
	Total int
}

// CommentItem is a comment annotated with its author and the like of the
// viewer, if any.
type CommentItem struct {
	Author     *user.User
	Comment    *comment.Comment
	ViewerLike *like.Like
}

// CommentsAggregate carries the most recently updated root comments
// together with the overall root comment total.
type CommentsAggregate struct {
	Items []*CommentItem
	Total int
}

// ActivityDetail is the denormalized view of an Activity. Parent, when set,
// is a reduced one-hop ancestor carrying author and rsvp total only.
type ActivityDetail struct {
	Activity   *activity.Activity
	Author     *user.User
	Comments   *CommentsAggregate
	Likes      *UsersAggregate
	Parent     *ActivityDetail
	Photos     *PhotosAggregate
	Rsvps      *UsersAggregate
	ViewerLike *like.Like
	ViewerRsvp *rsvp.Rsvp
}

// ResolveActivityFunc builds the full nested view of an Activity for the
// given viewer. Resolution assumes the activity exists and has passed the
// privacy gate, depth greater than zero yields the reduced ancestor view.
type ResolveActivityFunc func(
	ns string,
	viewer uint64,
	a *activity.Activity,
	depth int,
) (*ActivityDetail, error)

// ResolveActivity builds the full nested view of an Activity. Independent
// sub-queries run concurrently, any failing branch fails the whole
// resolution.
func ResolveActivity(
	activities activity.Service,
	comments comment.Service,
	likes like.Service,
	rsvps rsvp.Service,
	users user.Service,
	aggregationLimit int,
) ResolveActivityFunc {
	var resolve ResolveActivityFunc

	resolve = func(
		ns string,
		viewer uint64,
		a *activity.Activity,
		depth int,
	) (*ActivityDetail, error) {
		d := &ActivityDetail{
			Activity: a,
		}

		g := &errgroup.Group{}

		g.Go(func() error {
			u, err := resolveUser(users, ns, a.OwnerID)
			if err != nil {
				return err
			}

			d.Author = u

			return nil
		})

		g.Go(func() error {
			total, err := rsvps.Count(ns, rsvp.QueryOptions{
				ActivityIDs: []uint64{
					a.ID,
				},
				Deleted: &defaultDeleted,
			})
			if err != nil {
				return err
			}

			if depth >= maxParentDepth {
				d.Rsvps = &UsersAggregate{
					Items: user.List{},
					Total: total,
				}

				return nil
			}

			rs, err := rsvps.Query(ns, rsvp.QueryOptions{
				ActivityIDs: []uint64{
					a.ID,
				},
				Deleted: &defaultDeleted,
				Limit:   aggregationLimit,
			})
			if err != nil {
				return err
			}

			is, err := orderedUsers(users, ns, rs.UserIDs())
			if err != nil {
				return err
			}

			d.Rsvps = &UsersAggregate{
				Items: is,
				Total: total,
			}

			return nil
		})

		if depth >= maxParentDepth {
			if err := g.Wait(); err != nil {
				return nil, err
			}

			return d, nil
		}

		g.Go(func() error {
			total, err := likes.Count(ns, like.QueryOptions{
				Deleted: &defaultDeleted,
				ObjectIDs: []uint64{
					a.ID,
				},
				ObjectTypes: []string{
					like.TypeActivity,
				},
			})
			if err != nil {
				return err
			}

			ls, err := likes.Query(ns, like.QueryOptions{
				Deleted: &defaultDeleted,
				Limit:   aggregationLimit,
				ObjectIDs: []uint64{
					a.ID,
				},
				ObjectTypes: []string{
					like.TypeActivity,
				},
			})
			if err != nil {
				return err
			}

			is, err := orderedUsers(users, ns, ls.UserIDs())
			if err != nil {
				return err
			}

			d.Likes = &UsersAggregate{
				Items: is,
				Total: total,
			}

			return nil
		})

		g.Go(func() error {
			cs, err := resolveComments(
				comments,
				likes,
				users,
				ns,
				viewer,
				a.ID,
				aggregationLimit,
			)
			if err != nil {
				return err
			}

			d.Comments = cs

			return nil
		})

		g.Go(func() error {
			r, err := viewerRsvp(rsvps, ns, viewer, a.ID)
			if err != nil {
				return err
			}

			d.ViewerRsvp = r

			return nil
		})

		g.Go(func() error {
			l, err := viewerLike(likes, ns, viewer, a.ID, like.TypeActivity)
			if err != nil {
				return err
			}

			d.ViewerLike = l

			return nil
		})

		if a.ParentID != 0 {
			g.Go(func() error {
				as, err := activities.Query(ns, activity.QueryOptions{
					Deleted: &defaultDeleted,
					IDs: []uint64{
						a.ParentID,
					},
				})
				if err != nil {
					return err
				}

				// Parent vanished between selection and resolution, drop it.
				if len(as) == 0 {
					return nil
				}

				p, err := resolve(ns, viewer, as[0], depth+1)
				if err != nil {
					return err
				}

				d.Parent = p

				return nil
			})
		}

		d.Photos = photosAggregate(a.Photos, aggregationLimit)

		if err := g.Wait(); err != nil {
			return nil, err
		}

		return d, nil
	}

	return resolve
}

// orderedUsers resolves ids to enabled users preserving the order of ids.
func orderedUsers(
	users user.Service,
	ns string,
	ids []uint64,
) (user.List, error) {
	um, err := user.MapFromIDs(users, ns, ids...)
	if err != nil {
		return nil, err
	}

	us := user.List{}

	for _, id := range ids {
		if u, ok := um[id]; ok {
			us = append(us, u)
		}
	}

	return us, nil
}

func photosAggregate(photos []string, limit int) *PhotosAggregate {
	is := photos

	if len(is) > limit {
		is = is[:limit]
	}

	if is == nil {
		is = []string{}
	}

	return &PhotosAggregate{
		Items: is,
		Total: len(photos),
	}
}

func resolveComments(
	comments comment.Service,
	likes like.Service,
	users user.Service,
	ns string,
	viewer uint64,
	activityID uint64,
	limit int,
) (*CommentsAggregate, error) {
	total, err := comments.Count(ns, comment.QueryOptions{
		ActivityIDs: []uint64{
			activityID,
		},
		Deleted:   &defaultDeleted,
		RootsOnly: true,
	})
	if err != nil {
		return nil, err
	}

	cs, err := comments.Query(ns, comment.QueryOptions{
		ActivityIDs: []uint64{
			activityID,
		},
		Deleted:   &defaultDeleted,
		Limit:     limit,
		RootsOnly: true,
	})
	if err != nil {
		return nil, err
	}

	um, err := user.MapFromIDs(users, ns, cs.OwnerIDs()...)
	if err != nil {
		return nil, err
	}

	lm, err := viewerLikesByObject(likes, ns, viewer, cs.IDs(), like.TypeComment)
	if err != nil {
		return nil, err
	}

	is := []*CommentItem{}

	for _, c := range cs {
		is = append(is, &CommentItem{
			Author:     um[c.OwnerID],
			Comment:    c,
			ViewerLike: lm[c.ID],
		})
	}

	return &CommentsAggregate{
		Items: is,
		Total: total,
	}, nil
}

func resolveUser(users user.Service, ns string, id uint64) (*user.User, error) {
	us, err := users.Query(ns, user.QueryOptions{
		Enabled: &defaultEnabled,
		IDs: []uint64{
			id,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(us) == 0 {
		return nil, nil
	}

	return us[0], nil
}

func viewerLike(
	likes like.Service,
	ns string,
	viewer uint64,
	objectID uint64,
	objectType string,
) (*like.Like, error) {
	if viewer == 0 {
		return nil, nil
	}

	ls, err := likes.Query(ns, like.QueryOptions{
		Deleted: &defaultDeleted,
		ObjectIDs: []uint64{
			objectID,
		},
		ObjectTypes: []string{
			objectType,
		},
		UserIDs: []uint64{
			viewer,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(ls) > 1 {
		return nil, wrapError(
			ErrDataCorruption,
			"%d likes for (%s %d, user %d)",
			len(ls),
			objectType,
			objectID,
			viewer,
		)
	}

	if len(ls) == 0 {
		return nil, nil
	}

	return ls[0], nil
}

func viewerLikesByObject(
	likes like.Service,
	ns string,
	viewer uint64,
	objectIDs []uint64,
	objectType string,
) (map[uint64]*like.Like, error) {
	lm := map[uint64]*like.Like{}

	if viewer == 0 || len(objectIDs) == 0 {
		return lm, nil
	}

	ls, err := likes.Query(ns, like.QueryOptions{
		Deleted:   &defaultDeleted,
		ObjectIDs: objectIDs,
		ObjectTypes: []string{
			objectType,
		},
		UserIDs: []uint64{
			viewer,
		},
	})
	if err != nil {
		return nil, err
	}

	for _, l := range ls {
		if _, ok := lm[l.ObjectID]; ok {
			return nil, wrapError(
				ErrDataCorruption,
				"duplicate like for (%s %d, user %d)",
				objectType,
				l.ObjectID,
				viewer,
			)
		}

		lm[l.ObjectID] = l
	}

	return lm, nil
}

func viewerRsvp(
	rsvps rsvp.Service,
	ns string,
	viewer uint64,
	activityID uint64,
) (*rsvp.Rsvp, error) {
	if viewer == 0 {
		return nil, nil
	}

	rs, err := rsvps.Query(ns, rsvp.QueryOptions{
		ActivityIDs: []uint64{
			activityID,
		},
		Deleted: &defaultDeleted,
		UserIDs: []uint64{
			viewer,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(rs) > 1 {
		return nil, wrapError(
			ErrDataCorruption,
			"%d rsvps for (activity %d, user %d)",
			len(rs),
			activityID,
			viewer,
		)
	}

	if len(rs) == 0 {
		return nil, nil
	}

	return rs[0], nil
}
