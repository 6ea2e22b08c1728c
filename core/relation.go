package core

import (
	"github.com/letsgo/activities/service/block"
	"github.com/letsgo/activities/service/follower"
	"github.com/letsgo/activities/service/user"
)

// Follow state flag bits describing the relation of a viewer towards a
// target user.
const (
	StateAccepted  = 2
	StatePending   = 4
	StateRejected  = 8
	StateBlocking  = 16
	StateBlockedBy = 32
	StateSelf      = 64
)

// facts are the boolean relationship observations between a viewer and a
// single target, computed uniformly for both state operations. Call sites
// choose between combining all applicable bits and picking the first match
// in priority order.
type facts struct {
	isSelf              bool
	blockedByTarget     bool
	viewerBlockedTarget bool
	followRejected      bool
	followPending       bool
	followAccepted      bool
}

// combined ORs every applicable flag bit.
func (f facts) combined() int {
	state := 0

	if f.isSelf {
		state |= StateSelf
	}

	if f.blockedByTarget {
		state |= StateBlockedBy
	}

	if f.viewerBlockedTarget {
		state |= StateBlocking
	}

	if f.followRejected {
		state |= StateRejected
	}

	if f.followPending {
		state |= StatePending
	}

	if f.followAccepted {
		state |= StateAccepted
	}

	return state
}

// first returns the highest-priority applicable flag bit alone.
func (f facts) first() int {
	switch {
	case f.isSelf:
		return StateSelf
	case f.blockedByTarget:
		return StateBlockedBy
	case f.viewerBlockedTarget:
		return StateBlocking
	case f.followRejected:
		return StateRejected
	case f.followPending:
		return StatePending
	case f.followAccepted:
		return StateAccepted
	}

	return 0
}

// TargetState pairs a user with the follow state of the viewer towards them.
type TargetState struct {
	State int
	User  *user.User
}

// FollowStatesFunc annotates every target user with the combined follow
// state of the viewer towards them.
type FollowStatesFunc func(
	ns string,
	viewer uint64,
	targets user.List,
) ([]*TargetState, error)

// FollowStates annotates every target user with the combined follow state
// of the viewer towards them. All applicable flag bits are ORed.
func FollowStates(
	blocks block.Service,
	follows follower.Service,
) FollowStatesFunc {
	return func(
		ns string,
		viewer uint64,
		targets user.List,
	) ([]*TargetState, error) {
		fm, err := relationFacts(blocks, follows, ns, viewer, targets.IDs())
		if err != nil {
			return nil, err
		}

		ts := []*TargetState{}

		for _, u := range targets {
			ts = append(ts, &TargetState{
				State: fm[u.ID].combined(),
				User:  u,
			})
		}

		return ts, nil
	}
}

// FollowStateFunc returns the follow state of the viewer towards a single
// target user.
type FollowStateFunc func(ns string, viewer, target uint64) (int, error)

// FollowState returns the follow state of the viewer towards a single
// target user. Only the highest-priority flag bit is reported.
func FollowState(
	blocks block.Service,
	follows follower.Service,
) FollowStateFunc {
	return func(ns string, viewer, target uint64) (int, error) {
		fm, err := relationFacts(blocks, follows, ns, viewer, []uint64{target})
		if err != nil {
			return 0, err
		}

		return fm[target].first(), nil
	}
}

// relationFacts gathers the relationship observations of the viewer towards
// every target. Absent rows simply leave the corresponding fact unset.
func relationFacts(
	blocks block.Service,
	follows follower.Service,
	ns string,
	viewer uint64,
	targets []uint64,
) (map[uint64]facts, error) {
	fm := map[uint64]facts{}

	for _, id := range targets {
		fm[id] = facts{
			isSelf: id == viewer,
		}
	}

	if len(targets) == 0 {
		return fm, nil
	}

	bs, err := blocks.Query(ns, block.QueryOptions{
		BlockedIDs: []uint64{
			viewer,
		},
		Enabled: &defaultEnabled,
		UserIDs: targets,
	})
	if err != nil {
		return nil, err
	}

	for _, b := range bs {
		f := fm[b.UserID]
		f.blockedByTarget = true
		fm[b.UserID] = f
	}

	bs, err = blocks.Query(ns, block.QueryOptions{
		BlockedIDs: targets,
		Enabled:    &defaultEnabled,
		UserIDs: []uint64{
			viewer,
		},
	})
	if err != nil {
		return nil, err
	}

	for _, b := range bs {
		f := fm[b.BlockedID]
		f.viewerBlockedTarget = true
		fm[b.BlockedID] = f
	}

	fs, err := follows.Query(ns, follower.QueryOptions{
		Enabled: &defaultEnabled,
		FollowerIDs: []uint64{
			viewer,
		},
		UserIDs: targets,
	})
	if err != nil {
		return nil, err
	}

	for _, fl := range fs {
		f := fm[fl.UserID]

		switch fl.Status {
		case follower.StatusAccepted:
			f.followAccepted = true
		case follower.StatusPending:
			f.followPending = true
		case follower.StatusRejected:
			f.followRejected = true
		}

		fm[fl.UserID] = f
	}

	return fm, nil
}
