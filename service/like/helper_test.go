package like

import (
	"math/rand"
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		deleted   = true
		namespace = "service_count"
		service   = p(t, namespace)
		objectID  = uint64(rand.Int63())
		userID    = uint64(rand.Int63())
	)

	for _, l := range testList(objectID, userID) {
		_, err := service.Put(namespace, l)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 15,
		&QueryOptions{Deleted: &deleted}:                  2,
		&QueryOptions{ObjectIDs: []uint64{objectID}}:      8,
		&QueryOptions{ObjectTypes: []string{TypeComment}}: 4,
		&QueryOptions{UserIDs: []uint64{userID}}:          3,
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

func testList(objectID, userID uint64) List {
	ls := List{}

	for i := 0; i < 6; i++ {
		ls = append(ls, &Like{
			ObjectID:   objectID,
			ObjectType: TypeActivity,
			UserID:     uint64(rand.Int63()),
		})
	}

	for i := 0; i < 4; i++ {
		ls = append(ls, &Like{
			ObjectID:   uint64(rand.Int63()),
			ObjectType: TypeComment,
			UserID:     uint64(rand.Int63()),
		})
	}

	for i := 0; i < 3; i++ {
		ls = append(ls, &Like{
			ObjectID:   uint64(rand.Int63()),
			ObjectType: TypeActivity,
			UserID:     userID,
		})
	}

	for i := 0; i < 2; i++ {
		ls = append(ls, &Like{
			Deleted:    true,
			ObjectID:   objectID,
			ObjectType: TypeActivity,
			UserID:     uint64(rand.Int63()),
		})
	}

	return ls
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		like      = &Like{
			ObjectID:   uint64(rand.Int63()),
			ObjectType: TypeActivity,
			UserID:     uint64(rand.Int63()),
		}
	)

	created, err := service.Put(namespace, like)
	if err != nil {
		t.Fatal(err)
	}

	ls, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ls), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := ls[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Deleted = true

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	ls, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ls), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := ls[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	// missing ObjectID
	_, err := service.Put(namespace, &Like{
		ObjectType: TypeActivity,
		UserID:     uint64(rand.Int63()),
	})
	if !IsInvalidLike(err) {
		t.Errorf("expected error: %s", ErrInvalidLike)
	}

	// unsupported ObjectType
	_, err = service.Put(namespace, &Like{
		ObjectID:   uint64(rand.Int63()),
		ObjectType: "post",
		UserID:     uint64(rand.Int63()),
	})
	if !IsInvalidLike(err) {
		t.Errorf("expected error: %s", ErrInvalidLike)
	}

	// missing UserID
	_, err = service.Put(namespace, &Like{
		ObjectID:   uint64(rand.Int63()),
		ObjectType: TypeComment,
	})
	if !IsInvalidLike(err) {
		t.Errorf("expected error: %s", ErrInvalidLike)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		objectID  = uint64(rand.Int63())
		userID    = uint64(rand.Int63())
	)

	for _, l := range testList(objectID, userID) {
		_, err := service.Put(namespace, l)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 15,
		&QueryOptions{Limit: 5}:                            5,
		&QueryOptions{ObjectIDs: []uint64{objectID}}:       8,
		&QueryOptions{ObjectTypes: []string{TypeActivity}}: 11,
		&QueryOptions{UserIDs: []uint64{userID}}:           3,
	}

	for opts, want := range cases {
		ls, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(ls); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
