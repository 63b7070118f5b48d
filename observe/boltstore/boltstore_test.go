package boltstore

import (
	"os"
	"testing"

	"github.com/dave-mccloskey/beansbinding/observe"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ observe.Observable = &Store{}
}

func TestBasics(t *testing.T) {
	filename := "store.db"

	s, err := NewStore(filename, "simpsons")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return
		}
		if err := os.Remove(filename); err != nil {
			t.Fatal(err)
		}
	}()

	if err := s.Open(); err != nil {
		t.Fatal(err)
	}

	heard := 0
	s.Subscribe("likes", observe.Hear(func(src observe.Observable, name string, old, new interface{}) {
		heard++
	}))

	if err := s.Set("likes", "tacos"); err != nil {
		t.Fatal(err)
	}
	if got := s.Get("likes"); got != "tacos" {
		t.Fatal(got)
	}
	if heard != 1 {
		t.Fatal(heard)
	}

	// Same value again: no write, no notification.
	if err := s.Set("likes", "tacos"); err != nil {
		t.Fatal(err)
	}
	if heard != 1 {
		t.Fatal(heard)
	}

	if err := s.Set("likes", "queso"); err != nil {
		t.Fatal(err)
	}
	if heard != 2 {
		t.Fatal(heard)
	}

	if got := s.Get("nope"); !observe.IsUnreadable(got) {
		t.Fatal(got)
	}

	if err := s.Delete("likes"); err != nil {
		t.Fatal(err)
	}
	if got := s.Get("likes"); !observe.IsUnreadable(got) {
		t.Fatal(got)
	}
	if heard != 3 {
		t.Fatal(heard)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNotOpen(t *testing.T) {
	s, err := NewStore("never.db", "nope")
	if err != nil {
		t.Fatal(err)
	}

	// Open was never called, so writes should complain instead of
	// blowing up.
	if err := s.Set("likes", "tacos"); err != NotOpen {
		t.Fatal(err)
	}
	if err := s.Delete("likes"); err != NotOpen {
		t.Fatal(err)
	}
	if err := s.Close(); err != NotOpen {
		t.Fatal(err)
	}

	// Reads still work; they just have nothing to say.
	if got := s.Get("likes"); !observe.IsUnreadable(got) {
		t.Fatal(got)
	}
}

func TestReopen(t *testing.T) {
	filename := "reopen.db"

	defer func() {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return
		}
		if err := os.Remove(filename); err != nil {
			t.Fatal(err)
		}
	}()

	{
		s, err := NewStore(filename, "home")
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Open(); err != nil {
			t.Fatal(err)
		}
		if err := s.Set("temp", 72); err != nil {
			t.Fatal(err)
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}

	s, err := NewStore(filename, "home")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// JSON gives the number back as a float64.
	if got := s.Get("temp"); got != float64(72) {
		t.Fatalf("%#v", got)
	}

	if got := s.Properties(); len(got) != 1 || got[0] != "temp" {
		t.Fatalf("%#v", got)
	}
}

func TestBucketsAreSeparate(t *testing.T) {
	filename := "buckets.db"

	defer func() {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return
		}
		if err := os.Remove(filename); err != nil {
			t.Fatal(err)
		}
	}()

	a, err := NewStore(filename, "a")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Open(); err != nil {
		t.Fatal(err)
	}
	if err := a.Set("x", "ay"); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := NewStore(filename, "b")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Open(); err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if got := b.Get("x"); !observe.IsUnreadable(got) {
		t.Fatalf("%#v", got)
	}
}
