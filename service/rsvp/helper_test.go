package rsvp

import (
	"math/rand"
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		deleted    = true
		namespace  = "service_count"
		service    = p(t, namespace)
		activityID = uint64(rand.Int63())
		userID     = uint64(rand.Int63())
	)

	for _, r := range testList(activityID, userID) {
		_, err := service.Put(namespace, r)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 14,
		&QueryOptions{ActivityIDs: []uint64{activityID}}: 9,
		&QueryOptions{Deleted: &deleted}:                 2,
		&QueryOptions{UserIDs: []uint64{userID}}:         4,
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

func testList(activityID, userID uint64) List {
	rs := List{}

	for i := 0; i < 7; i++ {
		rs = append(rs, &Rsvp{
			ActivityID: activityID,
			UserID:     uint64(rand.Int63()),
		})
	}

	for i := 0; i < 3; i++ {
		rs = append(rs, &Rsvp{
			ActivityID: uint64(rand.Int63()),
			UserID:     userID,
		})
	}

	for i := 0; i < 2; i++ {
		rs = append(rs, &Rsvp{
			ActivityID: activityID,
			Deleted:    true,
			UserID:     uint64(rand.Int63()),
		})
	}

	rs = append(rs, &Rsvp{
		ActivityID: uint64(rand.Int63()),
		UserID:     uint64(rand.Int63()),
	})

	rs = append(rs, &Rsvp{
		ActivityID: uint64(rand.Int63()),
		UserID:     userID,
	})

	return rs
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		rsvp      = &Rsvp{
			ActivityID: uint64(rand.Int63()),
			UserID:     uint64(rand.Int63()),
		}
	)

	created, err := service.Put(namespace, rsvp)
	if err != nil {
		t.Fatal(err)
	}

	rs, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(rs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := rs[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Deleted = true

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	rs, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(rs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := rs[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	// missing ActivityID
	_, err := service.Put(namespace, &Rsvp{
		UserID: uint64(rand.Int63()),
	})
	if !IsInvalidRsvp(err) {
		t.Errorf("expected error: %s", ErrInvalidRsvp)
	}

	// missing UserID
	_, err = service.Put(namespace, &Rsvp{
		ActivityID: uint64(rand.Int63()),
	})
	if !IsInvalidRsvp(err) {
		t.Errorf("expected error: %s", ErrInvalidRsvp)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace  = "service_query"
		service    = p(t, namespace)
		activityID = uint64(rand.Int63())
		userID     = uint64(rand.Int63())
	)

	for _, r := range testList(activityID, userID) {
		_, err := service.Put(namespace, r)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 14,
		&QueryOptions{ActivityIDs: []uint64{activityID}}: 9,
		&QueryOptions{Limit: 5}:                          5,
		&QueryOptions{UserIDs: []uint64{userID}}:         4,
	}

	for opts, want := range cases {
		rs, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(rs); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
