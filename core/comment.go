package core

import (
	"golang.org/x/sync/errgroup"

	"github.com/letsgo/activities/service/comment"
	"github.com/letsgo/activities/service/like"
	"github.com/letsgo/activities/service/user"
)

// CommentDetail is the denormalized view of a photo comment as it appears
// in feeds.
type CommentDetail struct {
	Author     *user.User
	Comment    *comment.Comment
	Likes      *UsersAggregate
	Replies    *CommentsAggregate
	ViewerLike *like.Like
}

// ResolveCommentFunc builds the full nested view of a Comment for the given
// viewer.
type ResolveCommentFunc func(
	ns string,
	viewer uint64,
	c *comment.Comment,
) (*CommentDetail, error)

// ResolveComment builds the full nested view of a Comment, its likes,
// replies and the like of the viewer. Independent sub-queries run
// concurrently, any failing branch fails the whole resolution.
func ResolveComment(
	comments comment.Service,
	likes like.Service,
	users user.Service,
	aggregationLimit int,
) ResolveCommentFunc {
	return func(
		ns string,
		viewer uint64,
		c *comment.Comment,
	) (*CommentDetail, error) {
		d := &CommentDetail{
			Comment: c,
		}

		g := &errgroup.Group{}

		g.Go(func() error {
			u, err := resolveUser(users, ns, c.OwnerID)
			if err != nil {
				return err
			}

			d.Author = u

			return nil
		})

		g.Go(func() error {
			total, err := likes.Count(ns, like.QueryOptions{
				Deleted: &defaultDeleted,
				ObjectIDs: []uint64{
					c.ID,
				},
				ObjectTypes: []string{
					like.TypeComment,
				},
			})
			if err != nil {
				return err
			}

			ls, err := likes.Query(ns, like.QueryOptions{
				Deleted: &defaultDeleted,
				Limit:   aggregationLimit,
				ObjectIDs: []uint64{
					c.ID,
				},
				ObjectTypes: []string{
					like.TypeComment,
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
			rs, err := resolveReplies(
				comments,
				likes,
				users,
				ns,
				viewer,
				c.ID,
				aggregationLimit,
			)
			if err != nil {
				return err
			}

			d.Replies = rs

			return nil
		})

		g.Go(func() error {
			l, err := viewerLike(likes, ns, viewer, c.ID, like.TypeComment)
			if err != nil {
				return err
			}

			d.ViewerLike = l

			return nil
		})

		if err := g.Wait(); err != nil {
			return nil, err
		}

		return d, nil
	}
}

func resolveReplies(
	comments comment.Service,
	likes like.Service,
	users user.Service,
	ns string,
	viewer uint64,
	parentID uint64,
	limit int,
) (*CommentsAggregate, error) {
	total, err := comments.Count(ns, comment.QueryOptions{
		Deleted: &defaultDeleted,
		ParentIDs: []uint64{
			parentID,
		},
	})
	if err != nil {
		return nil, err
	}

	cs, err := comments.Query(ns, comment.QueryOptions{
		Deleted: &defaultDeleted,
		Limit:   limit,
		ParentIDs: []uint64{
			parentID,
		},
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
