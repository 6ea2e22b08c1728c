package action

import (
	"math/rand"
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_count"
		service   = p(t, namespace)
		actorID   = uint64(rand.Int63())
		objectID  = uint64(rand.Int63())
	)

	for _, a := range testList(actorID, objectID) {
		_, err := service.Put(namespace, a)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 16,
		&QueryOptions{ActorIDs: []uint64{actorID}}:          7,
		&QueryOptions{ObjectIDs: []uint64{objectID}}:        5,
		&QueryOptions{ObjectTypes: []string{TypeComment}}:   3,
		&QueryOptions{Verbs: []string{VerbPost}}:            4,
		&QueryOptions{Verbs: []string{VerbJoin, VerbShare}}: 8,
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

func testList(actorID, objectID uint64) List {
	as := List{}

	for i := 0; i < 4; i++ {
		as = append(as, &Action{
			ActorID:    actorID,
			ObjectID:   uint64(rand.Int63()),
			ObjectType: TypeActivity,
			Verb:       VerbPost,
		})
	}

	for i := 0; i < 3; i++ {
		as = append(as, &Action{
			ActorID:    actorID,
			ObjectID:   uint64(rand.Int63()),
			ObjectType: TypeActivity,
			Verb:       VerbShare,
		})
	}

	for i := 0; i < 5; i++ {
		as = append(as, &Action{
			ActorID:    uint64(rand.Int63()),
			ObjectID:   objectID,
			ObjectType: TypeActivity,
			Verb:       VerbJoin,
		})
	}

	for i := 0; i < 3; i++ {
		as = append(as, &Action{
			ActorID:    uint64(rand.Int63()),
			ObjectID:   uint64(rand.Int63()),
			ObjectType: TypeComment,
			Verb:       VerbPhotoComment,
		})
	}

	as = append(as, &Action{
		ActorID:    uint64(rand.Int63()),
		ObjectID:   uint64(rand.Int63()),
		ObjectType: TypeActivity,
		Verb:       VerbDelete,
	})

	return as
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		action    = &Action{
			ActorID:    uint64(rand.Int63()),
			ObjectID:   uint64(rand.Int63()),
			ObjectType: TypeActivity,
			Title:      "Morning ride",
			Verb:       VerbPost,
		}
	)

	created, err := service.Put(namespace, action)
	if err != nil {
		t.Fatal(err)
	}

	if created.ID == 0 {
		t.Errorf("id not assigned")
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
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	// missing ActorID
	_, err := service.Put(namespace, &Action{
		ObjectID:   uint64(rand.Int63()),
		ObjectType: TypeActivity,
		Verb:       VerbPost,
	})
	if !IsInvalidAction(err) {
		t.Errorf("expected error: %s", ErrInvalidAction)
	}

	// missing ObjectID
	_, err = service.Put(namespace, &Action{
		ActorID:    uint64(rand.Int63()),
		ObjectType: TypeActivity,
		Verb:       VerbPost,
	})
	if !IsInvalidAction(err) {
		t.Errorf("expected error: %s", ErrInvalidAction)
	}

	// unsupported ObjectType
	_, err = service.Put(namespace, &Action{
		ActorID:    uint64(rand.Int63()),
		ObjectID:   uint64(rand.Int63()),
		ObjectType: "event",
		Verb:       VerbPost,
	})
	if !IsInvalidAction(err) {
		t.Errorf("expected error: %s", ErrInvalidAction)
	}

	// unsupported Verb
	_, err = service.Put(namespace, &Action{
		ActorID:    uint64(rand.Int63()),
		ObjectID:   uint64(rand.Int63()),
		ObjectType: TypeActivity,
		Verb:       "wave",
	})
	if !IsInvalidAction(err) {
		t.Errorf("expected error: %s", ErrInvalidAction)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		actorID   = uint64(rand.Int63())
		objectID  = uint64(rand.Int63())
	)

	for _, a := range testList(actorID, objectID) {
		_, err := service.Put(namespace, a)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 16,
		&QueryOptions{ActorIDs: []uint64{actorID}}:   7,
		&QueryOptions{Limit: 10}:                     10,
		&QueryOptions{ObjectIDs: []uint64{objectID}}: 5,
		&QueryOptions{Verbs: []string{VerbJoin}}:     5,
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
