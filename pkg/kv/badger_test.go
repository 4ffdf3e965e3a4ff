package kv_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/cordata/datakit/pkg/kv"
)

func newBadgerStore(t *testing.T) kv.Store {
	t.Helper()
	s, err := kv.NewBadger(kv.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	key := kv.Key{"app", "core", "Hash", "Doc", "Name", "device"}

	_, err := s.Get(ctx, key)
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, key, []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("Get = %q, want %q", got, "v1")
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = s.Get(ctx, key)
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestBadgerOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}

	key := kv.Key{"persist", "check"}
	if err := s.Set(ctx, key, []byte("still here")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen the same directory and verify the value survived.
	s, err = kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewBadger reopen: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "still here" {
		t.Fatalf("Get = %q, want %q", got, "still here")
	}
}

func TestBadgerList(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	entries := []kv.Entry{
		{Key: kv.Key{"app", "core", "Hash", "Doc", "Name", "user", "id"}, Value: []byte("1")},
		{Key: kv.Key{"app", "core", "Hash", "Doc", "Name", "user", "name"}, Value: []byte("Bob")},
		{Key: kv.Key{"app", "core", "Hash", "Doc", "Name", "userx", "id"}, Value: []byte("9")},
	}
	if err := s.BatchSet(ctx, entries); err != nil {
		t.Fatalf("BatchSet: %v", err)
	}

	var got []string
	for entry, err := range s.List(ctx, kv.Key{"app", "core", "Hash", "Doc", "Name", "user"}) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got = append(got, entry.Key.String()+"="+string(entry.Value))
	}
	want := []string{
		"app:core:Hash:Doc:Name:user:id=1",
		"app:core:Hash:Doc:Name:user:name=Bob",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
}

func TestBadgerListEntryAtPrefix(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	entries := []kv.Entry{
		{Key: kv.Key{"app", "core", "String", "Grid", "Name", "users"}, Value: []byte("blob")},
		{Key: kv.Key{"app", "core", "String", "Grid", "Name", "users", "x"}, Value: []byte("sub")},
	}
	if err := s.BatchSet(ctx, entries); err != nil {
		t.Fatalf("BatchSet: %v", err)
	}

	var got []string
	for entry, err := range s.List(ctx, kv.Key{"app", "core", "String", "Grid", "Name", "users"}) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got = append(got, entry.Key.String())
	}
	want := []string{
		"app:core:String:Grid:Name:users",
		"app:core:String:Grid:Name:users:x",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
}

func TestBadgerBatchDelete(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	entries := []kv.Entry{
		{Key: kv.Key{"b", "1"}, Value: []byte("v1")},
		{Key: kv.Key{"b", "2"}, Value: []byte("v2")},
	}
	if err := s.BatchSet(ctx, entries); err != nil {
		t.Fatalf("BatchSet: %v", err)
	}
	if err := s.BatchDelete(ctx, []kv.Key{{"b", "1"}, {"b", "2"}}); err != nil {
		t.Fatalf("BatchDelete: %v", err)
	}
	for _, k := range []kv.Key{{"b", "1"}, {"b", "2"}} {
		if _, err := s.Get(ctx, k); !errors.Is(err, kv.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %v, got %v", k, err)
		}
	}
}
