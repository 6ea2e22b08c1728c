package activity

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		deleted   = true
		namespace = "service_count"
		service   = p(t, namespace)
		owner     = uint64(rand.Int63())
		now       = time.Now()
	)

	first, err := service.Put(namespace, testActivity(owner, now))
	if err != nil {
		t.Fatal(err)
	}

	for _, a := range testList(owner, now) {
		_, err := service.Put(namespace, a)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 17,
		&QueryOptions{Deleted: &deleted}:                   2,
		&QueryOptions{EndsAfter: now.UnixMilli()}:          14,
		&QueryOptions{IDs: []uint64{first.ID}}:             1,
		&QueryOptions{OwnerIDs: []uint64{owner}}:           8,
		&QueryOptions{Privacies: []Privacy{PrivacyShared}}: 4,
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

func testList(owner uint64, now time.Time) List {
	as := List{}

	for i := 0; i < 7; i++ {
		as = append(as, testActivity(owner, now))
	}

	for i := 0; i < 4; i++ {
		a := testActivity(uint64(rand.Int63()), now)
		a.Privacy = PrivacyShared

		as = append(as, a)
	}

	for i := 0; i < 3; i++ {
		a := testActivity(uint64(rand.Int63()), now)
		a.Privacy = PrivacyPrivate
		a.StartsAt = now.Add(-48 * time.Hour).UnixMilli()

		as = append(as, a)
	}

	for i := 0; i < 2; i++ {
		a := testActivity(uint64(rand.Int63()), now)
		a.Deleted = true

		as = append(as, a)
	}

	return as
}

func testActivity(owner uint64, now time.Time) *Activity {
	return &Activity{
		Duration:     (2 * time.Hour).Milliseconds(),
		Location:     "Berlin",
		MeetingPoint: "Main entrance",
		OwnerID:      owner,
		Privacy:      PrivacyPublic,
		StartsAt:     now.Add(24 * time.Hour).UnixMilli(),
		Title:        "Morning ride",
	}
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
	)

	created, err := service.Put(namespace, testActivity(uint64(rand.Int63()), time.Now()))
	if err != nil {
		t.Fatal(err)
	}

	as, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(as), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := as[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Title = "Evening ride"

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	as, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(as), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := as[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	a := testActivity(uint64(rand.Int63()), time.Now())
	a.ID = uint64(rand.Int63())

	_, err = service.Put(namespace, a)
	if !IsNotFound(err) {
		t.Errorf("expected error: %s", ErrNotFound)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	// missing OwnerID
	_, err := service.Put(namespace, &Activity{
		Privacy: PrivacyPublic,
		Title:   "Morning ride",
	})
	if !IsInvalidActivity(err) {
		t.Errorf("expected error: %s", ErrInvalidActivity)
	}

	// missing Title
	_, err = service.Put(namespace, &Activity{
		OwnerID: uint64(rand.Int63()),
		Privacy: PrivacyPublic,
	})
	if !IsInvalidActivity(err) {
		t.Errorf("expected error: %s", ErrInvalidActivity)
	}

	// unsupported Privacy
	_, err = service.Put(namespace, &Activity{
		OwnerID: uint64(rand.Int63()),
		Privacy: Privacy(99),
		Title:   "Morning ride",
	})
	if !IsInvalidActivity(err) {
		t.Errorf("expected error: %s", ErrInvalidActivity)
	}

	// negative Duration
	_, err = service.Put(namespace, &Activity{
		Duration: -1,
		OwnerID:  uint64(rand.Int63()),
		Privacy:  PrivacyPublic,
		Title:    "Morning ride",
	})
	if !IsInvalidActivity(err) {
		t.Errorf("expected error: %s", ErrInvalidActivity)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		owner     = uint64(rand.Int63())
		now       = time.Now()
	)

	first, err := service.Put(namespace, testActivity(owner, now))
	if err != nil {
		t.Fatal(err)
	}

	for _, a := range testList(owner, now) {
		_, err := service.Put(namespace, a)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 17,
		&QueryOptions{IDs: []uint64{first.ID}}:   1,
		&QueryOptions{Limit: 5}:                  5,
		&QueryOptions{Limit: 10, Offset: 12}:     5,
		&QueryOptions{OwnerIDs: []uint64{owner}}: 8,
	}

	for opts, want := range cases {
		as, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(as); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
