package anykv_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/anykv"
)

func TestGetMissingKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing key")
		}
	}()
	s := anykv.New()
	anykv.Get[int](s, "nope")
}

func TestGetWrongTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for wrong type")
		}
	}()
	s := anykv.New()
	anykv.Set(s, "k", "a string")
	anykv.Get[int](s, "k")
}

func TestHasDoesNotPanic(t *testing.T) {
	s := anykv.New()
	if s.Has("missing") {
		t.Fatal("expected Has to report false for missing key")
	}
	anykv.Set(s, "present", 1)
	if !s.Has("present") {
		t.Fatal("expected Has to report true for present key")
	}
}
