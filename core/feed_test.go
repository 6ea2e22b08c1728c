package core

import (
	"testing"
	"time"

	"github.com/letsgo/activities/service/action"
	"github.com/letsgo/activities/service/activity"
	"github.com/letsgo/activities/service/comment"
	"github.com/letsgo/activities/service/follower"
	"github.com/letsgo/activities/service/rsvp"
)

func TestFeedPublic(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "feed_public"
		owner  = deps.putUser(t, ns)
		viewer = deps.putUser(t, ns)
	)

	for i := 0; i < 3; i++ {
		deps.putActivity(t, ns, &activity.Activity{
			OwnerID: owner.ID,
			Privacy: activity.PrivacyPublic,
		})
	}

	deps.putActivity(t, ns, &activity.Activity{
		OwnerID: owner.ID,
		Privacy: activity.PrivacyPrivate,
	})

	feed := FeedPublic(deps.activities, deps.resolveActivity())

	f, err := feed(ns, viewer.ID, NormalizePage(10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.Paging.Total, 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(f.Items), 3; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	for _, i := range f.Items {
		if have, want := i.Verb, action.VerbPost; have != want {
			t.Errorf("have %v, want %v", have, want)
		}

		if have, want := i.Activity.Activity.Privacy, activity.PrivacyPublic; have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}

	g, err := feed(ns, viewer.ID, NormalizePage(10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(g.Items), len(f.Items); have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	for idx := range f.Items {
		have := g.Items[idx].Activity.Activity.ID
		want := f.Items[idx].Activity.Activity.ID

		if have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func TestFeedProfile(t *testing.T) {
	var (
		deps     = testSetup()
		ns       = "feed_profile"
		fan      = deps.putUser(t, ns)
		stranger = deps.putUser(t, ns)
		target   = deps.putUser(t, ns)

		future = nowMillis() + time.Hour.Milliseconds()
		past   = nowMillis() - (48 * time.Hour).Milliseconds()
	)

	deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  target.ID,
		Privacy:  activity.PrivacyPublic,
		StartsAt: past,
	})

	deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  target.ID,
		Privacy:  activity.PrivacyPublic,
		StartsAt: future,
	})

	deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  target.ID,
		Privacy:  activity.PrivacyShared,
		StartsAt: future,
	})

	deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  target.ID,
		Privacy:  activity.PrivacyPrivate,
		StartsAt: future,
	})

	_, err := deps.follows.Put(ns, &follower.Follow{
		Enabled:    true,
		FollowerID: fan.ID,
		Status:     follower.StatusAccepted,
		UserID:     target.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	feed := FeedProfile(deps.activities, deps.follows, deps.resolveActivity())

	f, err := feed(ns, stranger.ID, target.ID, NormalizePage(10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.Paging.Total, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	f, err = feed(ns, fan.ID, target.ID, NormalizePage(10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.Paging.Total, 2; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	f, err = feed(ns, target.ID, target.ID, NormalizePage(10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.Paging.Total, 4; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFeedUpcoming(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "feed_upcoming"
		other  = deps.putUser(t, ns)
		target = deps.putUser(t, ns)

		future = nowMillis() + time.Hour.Milliseconds()
		past   = nowMillis() - (14 * 24 * time.Hour).Milliseconds()
	)

	owned := deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  target.ID,
		StartsAt: future,
	})

	joined := deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  other.ID,
		StartsAt: future,
	})

	both := deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  target.ID,
		StartsAt: future,
	})

	deps.putActivity(t, ns, &activity.Activity{
		OwnerID:  target.ID,
		StartsAt: past,
	})

	for _, id := range []uint64{joined.ID, both.ID} {
		_, err := deps.rsvps.Put(ns, &rsvp.Rsvp{
			ActivityID: id,
			UserID:     target.ID,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	feed := FeedUpcoming(
		deps.activities,
		deps.rsvps,
		deps.resolveActivity(),
		7*24*time.Hour,
	)

	f, err := feed(ns, target.ID, target.ID, NormalizePage(10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.Paging.Total, 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	seen := map[uint64]struct{}{}

	for _, i := range f.Items {
		seen[i.Activity.Activity.ID] = struct{}{}
	}

	for _, id := range []uint64{owned.ID, joined.ID, both.ID} {
		if _, ok := seen[id]; !ok {
			t.Errorf("missing activity %d", id)
		}
	}
}

func TestFeedSelf(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "feed_self"
		joiner = deps.putUser(t, ns)
		viewer = deps.putUser(t, ns)
		start  = time.Now()
	)

	a := deps.putActivity(t, ns, &activity.Activity{
		OwnerID: viewer.ID,
	})

	pc, err := deps.comments.Put(ns, &comment.Comment{
		ActivityID: a.ID,
		OwnerID:    joiner.ID,
		Photos:     []string{"photo.jpg"},
	})
	if err != nil {
		t.Fatal(err)
	}

	deps.putAction(t, ns, &action.Action{
		ActorID:   viewer.ID,
		ObjectID:  a.ID,
		Verb:      action.VerbPost,
		UpdatedAt: start.Add(-3 * time.Minute),
	})

	deps.putAction(t, ns, &action.Action{
		ActorID:   joiner.ID,
		ObjectID:  a.ID,
		Verb:      action.VerbJoin,
		UpdatedAt: start.Add(-2 * time.Minute),
	})

	deps.putAction(t, ns, &action.Action{
		ActorID:    joiner.ID,
		ObjectID:   pc.ID,
		ObjectType: action.TypeComment,
		Verb:       action.VerbPhotoComment,
		UpdatedAt:  start.Add(-time.Minute),
	})

	feed := FeedSelf(
		deps.actions,
		deps.activities,
		deps.comments,
		deps.resolveActivity(),
		deps.resolveComment(),
	)

	f, err := feed(ns, viewer.ID, NormalizePage(10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.Paging.Total, 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(f.Items), 3; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	// Slots are grouped by verb, post before join before photo-comment.
	if have, want := f.Items[0].Verb, action.VerbPost; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := f.Items[1].Verb, action.VerbJoin; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := f.Items[2].Verb, action.VerbPhotoComment; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if f.Items[2].Comment == nil {
		t.Fatal("want photo comment slot to carry a comment")
	}

	if have, want := f.Items[2].Comment.Comment.ID, pc.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// The joiner's feed stays empty, their join targets foreign content.
	g, err := feed(ns, joiner.ID, NormalizePage(10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := g.Paging.Total, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(g.Items), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFeedSelfDedup(t *testing.T) {
	var (
		deps   = testSetup()
		ns     = "feed_self_dedup"
		viewer = deps.putUser(t, ns)
		start  = time.Now()
	)

	a := deps.putActivity(t, ns, &activity.Activity{
		OwnerID: viewer.ID,
	})

	b := deps.putActivity(t, ns, &activity.Activity{
		OwnerID: viewer.ID,
	})

	deps.putAction(t, ns, &action.Action{
		ActorID:   viewer.ID,
		ObjectID:  a.ID,
		Verb:      action.VerbPost,
		UpdatedAt: start.Add(-5 * time.Minute),
	})

	deps.putAction(t, ns, &action.Action{
		ActorID:   viewer.ID,
		ObjectID:  b.ID,
		Verb:      action.VerbPost,
		UpdatedAt: start.Add(-4 * time.Minute),
	})

	for i := 0; i < 3; i++ {
		joiner := deps.putUser(t, ns)

		deps.putAction(t, ns, &action.Action{
			ActorID:   joiner.ID,
			ObjectID:  a.ID,
			Verb:      action.VerbJoin,
			UpdatedAt: start.Add(-time.Duration(i+1) * time.Minute),
		})
	}

	feed := FeedSelf(
		deps.actions,
		deps.activities,
		deps.comments,
		deps.resolveActivity(),
		deps.resolveComment(),
	)

	// Three joins on the same activity collapse into a single slot.
	f, err := feed(ns, viewer.ID, NormalizePage(10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.Paging.Total, 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(f.Items), 3; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	// Deduplication happens before the page cut, full pages stay full.
	f, err = feed(ns, viewer.ID, NormalizePage(2, 0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(f.Items), 2; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if f.Paging.Next == nil {
		t.Fatal("want next to be set")
	}

	if have, want := *f.Paging.Next, 2; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	f, err = feed(ns, viewer.ID, NormalizePage(2, 2))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(f.Items), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if f.Paging.Next != nil {
		t.Errorf("have %v, want nil", *f.Paging.Next)
	}
}
