package core

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/letsgo/activities/service/action"
	"github.com/letsgo/activities/service/activity"
	"github.com/letsgo/activities/service/block"
	"github.com/letsgo/activities/service/comment"
	"github.com/letsgo/activities/service/follower"
	"github.com/letsgo/activities/service/like"
	"github.com/letsgo/activities/service/rsvp"
	"github.com/letsgo/activities/service/user"
)

const testAggregationLimit = 5

type testDeps struct {
	actions    action.Service
	activities activity.Service
	blocks     block.Service
	comments   comment.Service
	follows    follower.Service
	likes      like.Service
	rsvps      rsvp.Service
	users      user.Service
}

func testSetup() *testDeps {
	return &testDeps{
		actions:    action.MemService(),
		activities: activity.MemService(),
		blocks:     block.MemService(),
		comments:   comment.MemService(),
		follows:    follower.MemService(),
		likes:      like.MemService(),
		rsvps:      rsvp.MemService(),
		users:      user.MemService(),
	}
}

func (d *testDeps) resolveActivity() ResolveActivityFunc {
	return ResolveActivity(
		d.activities,
		d.comments,
		d.likes,
		d.rsvps,
		d.users,
		testAggregationLimit,
	)
}

func (d *testDeps) resolveComment() ResolveCommentFunc {
	return ResolveComment(
		d.comments,
		d.likes,
		d.users,
		testAggregationLimit,
	)
}

func (d *testDeps) putUser(t *testing.T, ns string) *user.User {
	u, err := d.users.Put(ns, &user.User{
		Enabled:  true,
		Email:    fmt.Sprintf("user%d@letsgo.test", rand.Int63()),
		Password: "secret",
		Username: fmt.Sprintf("user%d", rand.Int63()),
	})
	if err != nil {
		t.Fatal(err)
	}

	return u
}

func (d *testDeps) putActivity(
	t *testing.T,
	ns string,
	a *activity.Activity,
) *activity.Activity {
	if a.Title == "" {
		a.Title = "Morning ride"
	}

	if a.Privacy == 0 {
		a.Privacy = activity.PrivacyPublic
	}

	created, err := d.activities.Put(ns, a)
	if err != nil {
		t.Fatal(err)
	}

	return created
}

func (d *testDeps) putAction(
	t *testing.T,
	ns string,
	a *action.Action,
) *action.Action {
	if a.ObjectType == "" {
		a.ObjectType = action.TypeActivity
	}

	created, err := d.actions.Put(ns, a)
	if err != nil {
		t.Fatal(err)
	}

	return created
}
