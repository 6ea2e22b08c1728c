package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/letsgo/activities/core"
	"github.com/letsgo/activities/service/user"
)

// FollowState returns the follow state of the current user towards the
// requested user.
func FollowState(fn core.FollowStateFunc, namespace string) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		target, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		state, err := fn(namespace, currentUser.ID, target)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, struct {
			FollowState int `json:"follow_state"`
		}{
			FollowState: state,
		})
	}
}

// FollowStates annotates the requested users with the combined follow state
// of the current user towards each of them.
func FollowStates(
	users user.Service,
	fn core.FollowStatesFunc,
	namespace string,
) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			p           = payloadFollowStatesRequest{}
		)

		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, "malformed body"))
			return
		}

		if len(p.UserIDs) == 0 {
			respondError(w, 0, wrapError(ErrBadRequest, "user ids missing"))
			return
		}

		targets, err := user.ListFromIDs(users, namespace, p.UserIDs...)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		ts, err := fn(namespace, currentUser.ID, targets)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadTargetStates{states: ts})
	}
}

type payloadFollowStatesRequest struct {
	UserIDs []uint64 `json:"user_ids"`
}

type payloadTargetState struct {
	state *core.TargetState
}

func (p *payloadTargetState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FollowState int          `json:"follow_state"`
		User        *payloadUser `json:"user"`
	}{
		FollowState: p.state.State,
		User:        &payloadUser{user: p.state.User},
	})
}

type payloadTargetStates struct {
	states []*core.TargetState
}

func (p *payloadTargetStates) MarshalJSON() ([]byte, error) {
	is := []*payloadTargetState{}

	for _, s := range p.states {
		is = append(is, &payloadTargetState{state: s})
	}

	return json.Marshal(struct {
		Data []*payloadTargetState `json:"data"`
	}{
		Data: is,
	})
}
