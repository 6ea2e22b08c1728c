package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/letsgo/activities/core"
)

const (
	keyActivityID = "activityID"
	keyUserID     = "userID"
)

func extractActivityID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[keyActivityID], 10, 64)
	if err != nil {
		return 0, wrapError(ErrBadRequest, "invalid activity id")
	}

	return id, nil
}

func extractLimit(r *http.Request) (int, error) {
	param := r.URL.Query().Get("limit")

	if param == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(param)
	if err != nil {
		return 0, wrapError(ErrBadRequest, "invalid limit")
	}

	return limit, nil
}

func extractOffset(r *http.Request) (int, error) {
	param := r.URL.Query().Get("offset")

	if param == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(param)
	if err != nil {
		return 0, wrapError(ErrBadRequest, "invalid offset")
	}

	return offset, nil
}

func extractPage(r *http.Request) (core.Page, error) {
	limit, err := extractLimit(r)
	if err != nil {
		return core.Page{}, err
	}

	offset, err := extractOffset(r)
	if err != nil {
		return core.Page{}, err
	}

	return core.NormalizePage(limit, offset), nil
}

func extractUserID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[keyUserID], 10, 64)
	if err != nil {
		return 0, wrapError(ErrBadRequest, "invalid user id")
	}

	return id, nil
}
