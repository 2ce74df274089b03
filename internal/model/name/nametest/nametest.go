// Package nametest holds behaviors every name.Store implementation must satisfy.
package nametest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zhouzirui/names-api/backend/internal/model/name"
)

// Clock is a manual time source that advances one second per reading.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a Clock at a fixed local time.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, time.March, 1, 9, 30, 0, 0, time.Local)}
}

// Now returns the current reading and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.now
	c.now = c.now.Add(time.Second)
	return current
}

// Factory builds an empty store driven by the given clock.
type Factory func(t *testing.T, now func() time.Time) name.Store

// RunStoreTests exercises the Store contract against stores built by newStore.
func RunStoreTests(t *testing.T, newStore Factory) {
	t.Run("CreateThenGet", func(t *testing.T) {
		clock := NewClock()
		store := newStore(t, clock.Now)
		ctx := context.Background()

		created, err := store.Create(ctx, "Farrell", "Doug")
		if err != nil {
			t.Fatalf("Create err: %v", err)
		}

		got, err := store.Get(ctx, "Farrell")
		if err != nil {
			t.Fatalf("Get err: %v", err)
		}
		if got.LastName != "Farrell" || got.FirstName != "Doug" {
			t.Fatalf("unexpected record: %+v", got)
		}
		if !got.Timestamp.Equal(created.Timestamp) {
			t.Fatalf("timestamp changed: created %v got %v", created.Timestamp, got.Timestamp)
		}
	})

	t.Run("CreateOverwritesExisting", func(t *testing.T) {
		store := newStore(t, NewClock().Now)
		ctx := context.Background()

		mustCreate(t, store, "Nye", "Bill")
		mustCreate(t, store, "Murphy", "Kevin")
		mustCreate(t, store, "Nye", "William")

		records, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List err: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].LastName != "Nye" || records[0].FirstName != "William" {
			t.Fatalf("expected overwritten Nye first, got %+v", records[0])
		}
	})

	t.Run("UpdateRefreshesTimestamp", func(t *testing.T) {
		store := newStore(t, NewClock().Now)
		ctx := context.Background()

		created := mustCreate(t, store, "Farrell", "Doug")

		updated, err := store.Update(ctx, "Farrell", "Douglas")
		if err != nil {
			t.Fatalf("Update err: %v", err)
		}
		if updated.LastName != "Farrell" || updated.FirstName != "Douglas" {
			t.Fatalf("unexpected record: %+v", updated)
		}
		if !updated.Timestamp.After(created.Timestamp) {
			t.Fatalf("timestamp not refreshed: %v -> %v", created.Timestamp, updated.Timestamp)
		}

		got, err := store.Get(ctx, "Farrell")
		if err != nil {
			t.Fatalf("Get err: %v", err)
		}
		if got.FirstName != "Douglas" {
			t.Fatalf("update not persisted: %+v", got)
		}
	})

	t.Run("UpdateWithoutFirstNameKeepsIt", func(t *testing.T) {
		store := newStore(t, NewClock().Now)
		ctx := context.Background()

		created := mustCreate(t, store, "Easter", "Bunny")

		updated, err := store.Update(ctx, "Easter", "")
		if err != nil {
			t.Fatalf("Update err: %v", err)
		}
		if updated.FirstName != "Bunny" {
			t.Fatalf("first name changed: %+v", updated)
		}
		if !updated.Timestamp.After(created.Timestamp) {
			t.Fatal("timestamp not refreshed")
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		store := newStore(t, NewClock().Now)
		ctx := context.Background()

		if _, err := store.Get(ctx, "Nobody"); !errors.Is(err, name.ErrNotFound) {
			t.Fatalf("Get: expected ErrNotFound, got %v", err)
		}
		if _, err := store.Update(ctx, "Nobody", "X"); !errors.Is(err, name.ErrNotFound) {
			t.Fatalf("Update: expected ErrNotFound, got %v", err)
		}
		if err := store.Delete(ctx, "Nobody"); !errors.Is(err, name.ErrNotFound) {
			t.Fatalf("Delete: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteThenGet", func(t *testing.T) {
		store := newStore(t, NewClock().Now)
		ctx := context.Background()

		mustCreate(t, store, "Burglar", "Ham")
		if err := store.Delete(ctx, "Burglar"); err != nil {
			t.Fatalf("Delete err: %v", err)
		}
		if _, err := store.Get(ctx, "Burglar"); !errors.Is(err, name.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("ListCountsCreatesMinusDeletes", func(t *testing.T) {
		store := newStore(t, NewClock().Now)
		ctx := context.Background()

		for _, last := range []string{"A", "B", "C", "D", "B"} {
			mustCreate(t, store, last, "x")
		}
		for _, last := range []string{"A", "C"} {
			if err := store.Delete(ctx, last); err != nil {
				t.Fatalf("Delete %s err: %v", last, err)
			}
		}

		records, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List err: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
		}
		if records[0].LastName != "B" || records[1].LastName != "D" {
			t.Fatalf("unexpected order: %+v", records)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		store := newStore(t, NewClock().Now)
		if err := store.Ping(context.Background()); err != nil {
			t.Fatalf("Ping err: %v", err)
		}
	})
}

func mustCreate(t *testing.T, store name.Store, lastName, firstName string) name.Record {
	t.Helper()
	record, err := store.Create(context.Background(), lastName, firstName)
	if err != nil {
		t.Fatalf("Create %s err: %v", lastName, err)
	}
	return record
}
