package core

import (
	"testing"

	"github.com/letsgo/activities/service/activity"
	"github.com/letsgo/activities/service/comment"
	"github.com/letsgo/activities/service/like"
	"github.com/letsgo/activities/service/rsvp"
)

func TestResolveActivityEmpty(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "detail_empty"
		owner  = deps.putUser(t, ns)
		viewer = deps.putUser(t, ns)

		a = deps.putActivity(t, ns, &activity.Activity{
			OwnerID: owner.ID,
		})
	)

	d, err := deps.resolveActivity()(ns, viewer.ID, a, 0)
	if err != nil {
		t.Fatal(err)
	}

	if d.Author == nil || d.Author.ID != owner.ID {
		t.Errorf("have %v, want author %v", d.Author, owner.ID)
	}

	if have, want := d.Rsvps.Total, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(d.Rsvps.Items), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := d.Likes.Total, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := d.Comments.Total, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := d.Photos.Total, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if d.ViewerLike != nil {
		t.Errorf("have %v, want nil", d.ViewerLike)
	}

	if d.ViewerRsvp != nil {
		t.Errorf("have %v, want nil", d.ViewerRsvp)
	}

	if d.Parent != nil {
		t.Errorf("have %v, want nil", d.Parent)
	}
}

func TestResolveActivityAggregates(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "detail_aggregates"
		owner  = deps.putUser(t, ns)
		viewer = deps.putUser(t, ns)

		a = deps.putActivity(t, ns, &activity.Activity{
			OwnerID: owner.ID,
			Photos:  []string{"p1.jpg", "p2.jpg"},
		})
	)

	for i := 0; i < 7; i++ {
		u := deps.putUser(t, ns)

		_, err := deps.rsvps.Put(ns, &rsvp.Rsvp{
			ActivityID: a.ID,
			UserID:     u.ID,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	_, err := deps.rsvps.Put(ns, &rsvp.Rsvp{
		ActivityID: a.ID,
		UserID:     viewer.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = deps.likes.Put(ns, &like.Like{
		ObjectID:   a.ID,
		ObjectType: like.TypeActivity,
		UserID:     viewer.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	d, err := deps.resolveActivity()(ns, viewer.ID, a, 0)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := d.Rsvps.Total, 8; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(d.Rsvps.Items), testAggregationLimit; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := d.Likes.Total, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := d.Photos.Total, 2; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if d.ViewerRsvp == nil {
		t.Error("want viewer rsvp to be set")
	}

	if d.ViewerLike == nil {
		t.Error("want viewer like to be set")
	}
}

func TestResolveActivityRootComments(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "detail_root_comments"
		owner  = deps.putUser(t, ns)
		viewer = deps.putUser(t, ns)

		a = deps.putActivity(t, ns, &activity.Activity{
			OwnerID: owner.ID,
		})
	)

	root, err := deps.comments.Put(ns, &comment.Comment{
		ActivityID: a.ID,
		OwnerID:    viewer.ID,
		Photos:     []string{"photo.jpg"},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = deps.comments.Put(ns, &comment.Comment{
		ActivityID: a.ID,
		Content:    "Count me in!",
		OwnerID:    owner.ID,
		ParentID:   root.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	d, err := deps.resolveActivity()(ns, viewer.ID, a, 0)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := d.Comments.Total, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(d.Comments.Items), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := d.Comments.Items[0].Comment.ID, root.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if d.Comments.Items[0].Author == nil {
		t.Error("want comment author to be set")
	}
}

func TestResolveActivityParentDepth(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "detail_parent_depth"
		owner  = deps.putUser(t, ns)
		viewer = deps.putUser(t, ns)
	)

	grandparent := deps.putActivity(t, ns, &activity.Activity{
		OwnerID: owner.ID,
	})

	parent := deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  owner.ID,
		ParentID: grandparent.ID,
	})

	a := deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  owner.ID,
		ParentID: parent.ID,
	})

	d, err := deps.resolveActivity()(ns, viewer.ID, a, 0)
	if err != nil {
		t.Fatal(err)
	}

	if d.Parent == nil {
		t.Fatal("want parent to be resolved")
	}

	if have, want := d.Parent.Activity.ID, parent.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if d.Parent.Author == nil || d.Parent.Author.ID != owner.ID {
		t.Errorf("have %v, want author %v", d.Parent.Author, owner.ID)
	}

	if have, want := d.Parent.Rsvps.Total, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Reduced ancestor view carries no further expansion.
	if d.Parent.Likes != nil {
		t.Errorf("have %v, want nil", d.Parent.Likes)
	}

	if d.Parent.Parent != nil {
		t.Error("want ancestor resolution to stop after one hop")
	}
}

func TestResolveActivityRsvpCorruption(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "detail_rsvp_corruption"
		owner  = deps.putUser(t, ns)
		viewer = deps.putUser(t, ns)

		a = deps.putActivity(t, ns, &activity.Activity{
			OwnerID: owner.ID,
		})
	)

	for i := 0; i < 2; i++ {
		_, err := deps.rsvps.Put(ns, &rsvp.Rsvp{
			ActivityID: a.ID,
			UserID:     viewer.ID,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	_, err := deps.resolveActivity()(ns, viewer.ID, a, 0)
	if !IsDataCorruption(err) {
		t.Errorf("expected error: %s", ErrDataCorruption)
	}
}

func TestResolveComment(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "detail_comment"
		owner  = deps.putUser(t, ns)
		viewer = deps.putUser(t, ns)

		a = deps.putActivity(t, ns, &activity.Activity{
			OwnerID: owner.ID,
		})
	)

	c, err := deps.comments.Put(ns, &comment.Comment{
		ActivityID: a.ID,
		OwnerID:    owner.ID,
		Photos:     []string{"photo.jpg"},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = deps.comments.Put(ns, &comment.Comment{
		ActivityID: a.ID,
		Content:    "Looks great.",
		OwnerID:    viewer.ID,
		ParentID:   c.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = deps.likes.Put(ns, &like.Like{
		ObjectID:   c.ID,
		ObjectType: like.TypeComment,
		UserID:     viewer.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	d, err := deps.resolveComment()(ns, viewer.ID, c)
	if err != nil {
		t.Fatal(err)
	}

	if d.Author == nil || d.Author.ID != owner.ID {
		t.Errorf("have %v, want author %v", d.Author, owner.ID)
	}

	if have, want := d.Likes.Total, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := d.Replies.Total, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if d.ViewerLike == nil {
		t.Error("want viewer like to be set")
	}
}
