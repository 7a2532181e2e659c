package store

import (
	"context"
	"testing"
)

func TestPreferenceGetSetClear(t *testing.T) {
	ts := setupTestDB(t)
	ps := NewPreferenceStore(ts.db)
	ctx := context.Background()
	uid := ts.createUser(t, "ana@example.com")

	_, ok, err := ps.Get(ctx, uid, "color")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected missing preference")
	}

	if err := ps.Set(ctx, uid, "color", "verde"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := ps.Set(ctx, uid, "color", "azul"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, _ := ps.Get(ctx, uid, "color")
	if !ok || v != "azul" {
		t.Errorf("get = %q, %v; want azul, true", v, ok)
	}

	all, err := ps.GetAll(ctx, uid)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(all) = %d, want 1", len(all))
	}

	if err := ps.Clear(ctx, uid, "color"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := ps.Get(ctx, uid, "color"); ok {
		t.Error("expected preference to be cleared")
	}
}

func TestPreferencesArePerUser(t *testing.T) {
	ts := setupTestDB(t)
	ps := NewPreferenceStore(ts.db)
	ctx := context.Background()
	ana := ts.createUser(t, "ana@example.com")
	luis := ts.createUser(t, "luis@example.com")

	if err := ps.SetDarkMode(ctx, ana, true); err != nil {
		t.Fatalf("set dark mode: %v", err)
	}

	on, err := ps.DarkMode(ctx, ana)
	if err != nil {
		t.Fatalf("dark mode: %v", err)
	}
	if !on {
		t.Error("expected dark mode on for ana")
	}
	on, _ = ps.DarkMode(ctx, luis)
	if on {
		t.Error("another user's dark mode must stay off")
	}

	if err := ps.Clear(ctx, luis, prefDarkMode); err != nil {
		t.Fatalf("clear: %v", err)
	}
	on, _ = ps.DarkMode(ctx, ana)
	if !on {
		t.Error("clearing one user's preference must not touch another's")
	}
}

func TestPreferencesRemovedWithUser(t *testing.T) {
	ts := setupTestDB(t)
	ps := NewPreferenceStore(ts.db)
	ctx := context.Background()
	uid := ts.createUser(t, "ana@example.com")

	if err := ps.SetDarkMode(ctx, uid, true); err != nil {
		t.Fatalf("set dark mode: %v", err)
	}
	if _, err := ts.db.ExecContext(ctx, `DELETE FROM usuarios WHERE id = ?`, uid); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var count int
	if err := ts.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM preferences`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("preferences left = %d, want 0", count)
	}
}
