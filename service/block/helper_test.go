package block

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
		blocked   = uint64(rand.Int63())
		user      = uint64(rand.Int63())
		disabled  = false
	)

	for _, b := range testList(blocked, user) {
		_, err := service.Put(namespace, b)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 13,
		&QueryOptions{BlockedIDs: []uint64{blocked}}: 4,
		&QueryOptions{Enabled: &disabled}:            3,
		&QueryOptions{UserIDs: []uint64{user}}:       9,
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

func testList(blocked, user uint64) List {
	bs := List{}

	for i := 0; i < 6; i++ {
		bs = append(bs, &Block{
			BlockedID: uint64(rand.Int63()),
			Enabled:   true,
			UserID:    user,
		})
	}

	for i := 0; i < 4; i++ {
		bs = append(bs, &Block{
			BlockedID: blocked,
			Enabled:   true,
			UserID:    uint64(rand.Int63()),
		})
	}

	for i := 0; i < 3; i++ {
		bs = append(bs, &Block{
			BlockedID: uint64(rand.Int63()),
			Enabled:   false,
			UserID:    user,
		})
	}

	return bs
}

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
		block     = &Block{
			BlockedID: uint64(rand.Int63()),
			Enabled:   true,
			UserID:    uint64(rand.Int63()),
		}
	)

	created, err := service.Put(namespace, block)
	if err != nil {
		t.Fatal(err)
	}

	bs, err := service.Query(namespace, QueryOptions{
		BlockedIDs: []uint64{block.BlockedID},
		UserIDs:    []uint64{block.UserID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(bs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := bs[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Enabled = false

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	bs, err = service.Query(namespace, QueryOptions{
		BlockedIDs: []uint64{block.BlockedID},
		UserIDs:    []uint64{block.UserID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(bs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := bs[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	// missing UserID
	_, err := service.Put(namespace, &Block{
		BlockedID: uint64(rand.Int63()),
	})
	if !IsInvalidBlock(err) {
		t.Errorf("expected error: %s", ErrInvalidBlock)
	}

	// missing BlockedID
	_, err = service.Put(namespace, &Block{
		UserID: uint64(rand.Int63()),
	})
	if !IsInvalidBlock(err) {
		t.Errorf("expected error: %s", ErrInvalidBlock)
	}

	// self block
	id := uint64(rand.Int63())

	_, err = service.Put(namespace, &Block{
		BlockedID: id,
		UserID:    id,
	})
	if !IsInvalidBlock(err) {
		t.Errorf("expected error: %s", ErrInvalidBlock)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)
		blocked   = uint64(rand.Int63())
		user      = uint64(rand.Int63())
		disabled  = false
	)

	for _, b := range testList(blocked, user) {
		_, err := service.Put(namespace, b)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 13,
		&QueryOptions{BlockedIDs: []uint64{blocked}}: 4,
		&QueryOptions{Enabled: &disabled}:            3,
		&QueryOptions{Limit: 5}:                      5,
		&QueryOptions{UserIDs: []uint64{user}}:       9,
	}

	for opts, want := range cases {
		bs, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(bs); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
