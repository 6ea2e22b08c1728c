package core

import (
	"github.com/letsgo/activities/service/activity"
	"github.com/letsgo/activities/service/follower"
	"github.com/letsgo/activities/service/rsvp"
)

// ActivityRetrieveFunc returns the resolved detail view of a single
// Activity after existence and privacy checks.
type ActivityRetrieveFunc func(
	ns string,
	viewer uint64,
	id uint64,
) (*ActivityDetail, error)

// ActivityRetrieve gates access to a single Activity. Private activities
// admit the owner and RSVP'd participants, shared ones the owner and
// accepted followers of the owner, public ones everybody.
func ActivityRetrieve(
	activities activity.Service,
	follows follower.Service,
	rsvps rsvp.Service,
	resolve ResolveActivityFunc,
) ActivityRetrieveFunc {
	return func(ns string, viewer uint64, id uint64) (*ActivityDetail, error) {
		as, err := activities.Query(ns, activity.QueryOptions{
			Deleted: &defaultDeleted,
			IDs: []uint64{
				id,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(as) == 0 {
			return nil, wrapError(ErrNotFound, "activity (%d)", id)
		}

		a := as[0]

		ok, err := activityVisible(follows, rsvps, ns, viewer, a)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, wrapError(ErrNotPermitted, "activity (%d)", id)
		}

		return resolve(ns, viewer, a, 0)
	}
}

func activityVisible(
	follows follower.Service,
	rsvps rsvp.Service,
	ns string,
	viewer uint64,
	a *activity.Activity,
) (bool, error) {
	if a.Privacy == activity.PrivacyPublic || a.OwnerID == viewer {
		return true, nil
	}

	switch a.Privacy {
	case activity.PrivacyPrivate:
		r, err := viewerRsvp(rsvps, ns, viewer, a.ID)
		if err != nil {
			return false, err
		}

		return r != nil, nil
	case activity.PrivacyShared:
		return isAcceptedFollower(follows, ns, viewer, a.OwnerID)
	}

	return false, nil
}

// isAcceptedFollower reports whether the viewer is an accepted follower of
// the given user.
func isAcceptedFollower(
	follows follower.Service,
	ns string,
	viewer, userID uint64,
) (bool, error) {
	if viewer == 0 {
		return false, nil
	}

	fs, err := follows.Query(ns, follower.QueryOptions{
		Enabled: &defaultEnabled,
		FollowerIDs: []uint64{
			viewer,
		},
		Statuses: []follower.Status{
			follower.StatusAccepted,
		},
		UserIDs: []uint64{
			userID,
		},
	})
	if err != nil {
		return false, err
	}

	return len(fs) > 0, nil
}
