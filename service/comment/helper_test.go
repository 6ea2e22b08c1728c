package comment

import (
	"math/rand"
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		namespace  = "service_count"
		service    = p(t, namespace)
		activityID = uint64(rand.Int63())
		owner      = uint64(rand.Int63())
		parent     = uint64(rand.Int63())
		withPhotos = true
	)

	_, err := service.Put(namespace, testComment(activityID, owner))
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range testList(activityID, parent) {
		_, err := service.Put(namespace, c)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 15,
		&QueryOptions{ActivityIDs: []uint64{activityID}}: 13,
		&QueryOptions{OwnerIDs: []uint64{owner}}:         1,
		&QueryOptions{ParentIDs: []uint64{parent}}:       4,
		&QueryOptions{RootsOnly: true}:                   11,
		&QueryOptions{WithPhotos: &withPhotos}:           3,
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

func testList(activityID, parent uint64) List {
	cs := List{}

	for i := 0; i < 5; i++ {
		cs = append(cs, testComment(activityID, uint64(rand.Int63())))
	}

	for i := 0; i < 3; i++ {
		c := testComment(activityID, uint64(rand.Int63()))
		c.Content = ""
		c.Photos = []string{"https://cdn.letsgo.test/photo.jpg"}

		cs = append(cs, c)
	}

	for i := 0; i < 4; i++ {
		c := testComment(activityID, uint64(rand.Int63()))
		c.ParentID = parent

		cs = append(cs, c)
	}

	for i := 0; i < 2; i++ {
		cs = append(cs, testComment(uint64(rand.Int63()), uint64(rand.Int63())))
	}

	return cs
}

func testComment(activityID, owner uint64) *Comment {
	return &Comment{
		ActivityID: activityID,
		Content:    "Count me in!",
		OwnerID:    owner,
	}
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
	)

	created, err := service.Put(
		namespace,
		testComment(uint64(rand.Int63()), uint64(rand.Int63())),
	)
	if err != nil {
		t.Fatal(err)
	}

	cs, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(cs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := cs[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Content = "Changed my mind."

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	cs, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(cs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := cs[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	c := testComment(uint64(rand.Int63()), uint64(rand.Int63()))
	c.ID = uint64(rand.Int63())

	_, err = service.Put(namespace, c)
	if !IsNotFound(err) {
		t.Errorf("expected error: %s", ErrNotFound)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	// missing ActivityID
	_, err := service.Put(namespace, &Comment{
		Content: "Count me in!",
		OwnerID: uint64(rand.Int63()),
	})
	if !IsInvalidComment(err) {
		t.Errorf("expected error: %s", ErrInvalidComment)
	}

	// missing OwnerID
	_, err = service.Put(namespace, &Comment{
		ActivityID: uint64(rand.Int63()),
		Content:    "Count me in!",
	})
	if !IsInvalidComment(err) {
		t.Errorf("expected error: %s", ErrInvalidComment)
	}

	// missing Content and Photos
	_, err = service.Put(namespace, &Comment{
		ActivityID: uint64(rand.Int63()),
		OwnerID:    uint64(rand.Int63()),
	})
	if !IsInvalidComment(err) {
		t.Errorf("expected error: %s", ErrInvalidComment)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace  = "service_query"
		service    = p(t, namespace)
		activityID = uint64(rand.Int63())
		parent     = uint64(rand.Int63())
	)

	for _, c := range testList(activityID, parent) {
		_, err := service.Put(namespace, c)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 14,
		&QueryOptions{ActivityIDs: []uint64{activityID}}: 12,
		&QueryOptions{Limit: 5}:                          5,
		&QueryOptions{Limit: 10, Offset: 10}:             4,
		&QueryOptions{RootsOnly: true}:                   10,
	}

	for opts, want := range cases {
		cs, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(cs); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
