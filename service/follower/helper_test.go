package follower

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_count"
		service   = p(t, namespace)
		follower  = uint64(rand.Int63())
		user      = uint64(rand.Int63())
		disabled  = false
		start     = time.Now()
	)

	for _, f := range testList(follower, user, start) {
		_, err := service.Put(namespace, f)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 36,
		&QueryOptions{Before: start.Add(-(time.Hour + time.Minute))}: 10,
		&QueryOptions{Enabled: &disabled}:                            5,
		&QueryOptions{FollowerIDs: []uint64{follower}}:               12,
		&QueryOptions{Statuses: []Status{StatusAccepted}}:            18,
		&QueryOptions{UserIDs: []uint64{user}}:                       13,
	}

	for opts, want := range cases {
		have, err := service.Count(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func testList(follower, user uint64, start time.Time) List {
	fs := List{}

	for i := 0; i < 7; i++ {
		fs = append(fs, &Follow{
			Enabled:    true,
			FollowerID: follower,
			Status:     StatusAccepted,
			UserID:     uint64(rand.Int63()),
		})
	}

	for i := 0; i < 5; i++ {
		fs = append(fs, &Follow{
			Enabled:    false,
			FollowerID: follower,
			Status:     StatusPending,
			UserID:     uint64(rand.Int63()),
		})
	}

	for i := 0; i < 13; i++ {
		fs = append(fs, &Follow{
			Enabled:    true,
			FollowerID: uint64(rand.Int63()),
			Status:     StatusRejected,
			UserID:     user,
		})
	}

	for i := 1; i < 12; i++ {
		fs = append(fs, &Follow{
			Enabled:    true,
			FollowerID: uint64(rand.Int63()),
			Status:     StatusAccepted,
			UserID:     uint64(rand.Int63()),
			CreatedAt:  start.Add(-(time.Duration(i) * time.Hour)),
			UpdatedAt:  start.Add(-(time.Duration(i) * time.Hour)),
		})
	}

	return fs
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		follow    = &Follow{
			Enabled:    true,
			FollowerID: uint64(rand.Int63()),
			Status:     StatusPending,
			UserID:     uint64(rand.Int63()),
		}
	)

	created, err := service.Put(namespace, follow)
	if err != nil {
		t.Fatal(err)
	}

	fs, err := service.Query(namespace, QueryOptions{
		Enabled:     &follow.Enabled,
		FollowerIDs: []uint64{follow.FollowerID},
		UserIDs:     []uint64{follow.UserID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(fs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := fs[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Status = StatusAccepted

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	fs, err = service.Query(namespace, QueryOptions{
		Enabled:     &follow.Enabled,
		FollowerIDs: []uint64{follow.FollowerID},
		UserIDs:     []uint64{follow.UserID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(fs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := fs[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	// missing UserID
	_, err := service.Put(namespace, &Follow{})
	if !IsInvalidFollow(err) {
		t.Errorf("expected error: %s", ErrInvalidFollow)
	}

	// missing FollowerID
	_, err = service.Put(namespace, &Follow{
		UserID: uint64(rand.Int63()),
	})
	if !IsInvalidFollow(err) {
		t.Errorf("expected error: %s", ErrInvalidFollow)
	}

	// self follow
	id := uint64(rand.Int63())

	_, err = service.Put(namespace, &Follow{
		FollowerID: id,
		UserID:     id,
	})
	if !IsInvalidFollow(err) {
		t.Errorf("expected error: %s", ErrInvalidFollow)
	}

	// unsupported Status
	_, err = service.Put(namespace, &Follow{
		FollowerID: uint64(rand.Int63()),
		Status:     Status(99),
		UserID:     uint64(rand.Int63()),
	})
	if !IsInvalidFollow(err) {
		t.Errorf("expected error: %s", ErrInvalidFollow)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		follower  = uint64(rand.Int63())
		user      = uint64(rand.Int63())
		disabled  = false
		start     = time.Now()
	)

	for _, f := range testList(follower, user, start) {
		_, err := service.Put(namespace, f)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 36,
		&QueryOptions{Before: start.Add(-(time.Hour + time.Minute))}: 10,
		&QueryOptions{Enabled: &disabled}:                            5,
		&QueryOptions{FollowerIDs: []uint64{follower}}:               12,
		&QueryOptions{Limit: 10}:                                     10,
		&QueryOptions{Statuses: []Status{StatusAccepted}}:            18,
		&QueryOptions{UserIDs: []uint64{user}}:                       13,
	}

	for opts, want := range cases {
		fs, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(fs); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
