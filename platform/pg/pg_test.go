package pg

import (
	"errors"
	"testing"

	"github.com/lib/pq"
)

func TestWrapError(t *testing.T) {
	cases := map[*pq.Error]error{
		{Code: "23505"}: ErrNotUnique,
		{Code: "42P01"}: ErrRelationNotFound,
	}

	for input, want := range cases {
		if have := WrapError(input); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}

	plain := errors.New("broken pipe")

	if have, want := WrapError(plain), plain; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestIsNotUnique(t *testing.T) {
	if !IsNotUnique(WrapError(&pq.Error{Code: "23505"})) {
		t.Error("want unique violation to map to not unique")
	}

	if IsNotUnique(WrapError(&pq.Error{Code: "42P01"})) {
		t.Error("want relation not found to stay distinct")
	}
}
