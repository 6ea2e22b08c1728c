package user

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testServiceCount(t *testing.T, p prepareFunc) {
	var (
		deleted   = true
		disabled  = false
		namespace = "service_count"
		service   = p(t, namespace)
	)

	first, err := service.Put(namespace, testUser())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		_, err := service.Put(namespace, testUser())
		if err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 5; i++ {
		u := testUser()
		u.Enabled = false

		_, err := service.Put(namespace, u)
		if err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 3; i++ {
		u := testUser()
		u.Deleted = true

		_, err := service.Put(namespace, u)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 17,
		&QueryOptions{Deleted: &deleted}:                   3,
		&QueryOptions{Emails: []string{first.Email}}:       1,
		&QueryOptions{Enabled: &disabled}:                  5,
		&QueryOptions{IDs: []uint64{first.ID}}:             1,
		&QueryOptions{Usernames: []string{first.Username}}: 1,
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

func testServicePut(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
	)

	created, err := service.Put(namespace, testUser())
	if err != nil {
		t.Fatal(err)
	}

	us, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(us), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := us[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Firstname = "Changed"

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	us, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{created.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(us), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := us[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	u := testUser()
	u.ID = uint64(rand.Int63())

	_, err = service.Put(namespace, u)
	if !IsNotFound(err) {
		t.Errorf("expected error: %s", ErrNotFound)
	}
}

func testServicePutInvalid(t *testing.T, p prepareFunc) {
	var (
		namespace = "service_put_invalid"
		service   = p(t, namespace)
	)

	// missing Email and Username
	_, err := service.Put(namespace, &User{
		Password: "secret",
	})
	if !IsInvalidUser(err) {
		t.Errorf("expected error: %s", ErrInvalidUser)
	}

	// malformed Email
	_, err = service.Put(namespace, &User{
		Email:    "not-an-email",
		Password: "secret",
	})
	if !IsInvalidUser(err) {
		t.Errorf("expected error: %s", ErrInvalidUser)
	}

	// missing Password
	u := testUser()
	u.Password = ""

	_, err = service.Put(namespace, u)
	if !IsInvalidUser(err) {
		t.Errorf("expected error: %s", ErrInvalidUser)
	}

	// Username too short
	u = testUser()
	u.Username = "x"

	_, err = service.Put(namespace, u)
	if !IsInvalidUser(err) {
		t.Errorf("expected error: %s", ErrInvalidUser)
	}
}

func testServiceQuery(t *testing.T, p prepareFunc) {
	var (
		disabled  = false
		namespace = "service_query"
		service   = p(t, namespace)
	)

	first, err := service.Put(namespace, testUser())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		_, err := service.Put(namespace, testUser())
		if err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 5; i++ {
		u := testUser()
		u.Enabled = false

		_, err := service.Put(namespace, u)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		&QueryOptions{}: 14,
		&QueryOptions{Enabled: &disabled}:      5,
		&QueryOptions{IDs: []uint64{first.ID}}: 1,
		&QueryOptions{Limit: 6}:                6,
	}

	for opts, want := range cases {
		us, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(us); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func testUser() *User {
	return &User{
		About:    "Up for anything.",
		Enabled:  true,
		Email:    fmt.Sprintf("user%d@letsgo.test", rand.Int63()),
		Password: "secret",
		Username: fmt.Sprintf("user%d", rand.Int63()),
	}
}
