package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/store"
)

func formRecord(id, title, updated string) store.Record {
	return store.Record{
		"id":          id,
		"title":       title,
		"description": nil,
		"published":   false,
		"public_url":  nil,
		"created_at":  "2024-01-01T00:00:00.000000000Z",
		"updated_at":  updated,
	}
}

func ids(t *testing.T, recs []store.Record) []string {
	t.Helper()
	out := make([]string, len(recs))
	for i, rec := range recs {
		id, ok := rec["id"].(string)
		if !ok {
			t.Fatalf("record %d has non-string id %#v", i, rec["id"])
		}
		out[i] = id
	}
	return out
}

func openSQL(t *testing.T) store.Gateway {
	t.Helper()
	db, err := database.Open(config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return store.NewSQL(db)
}

func TestGateways(t *testing.T) {
	gateways := map[string]func(t *testing.T) store.Gateway{
		"memory": func(t *testing.T) store.Gateway { return store.NewMemory() },
		"sql":    openSQL,
	}
	for name, open := range gateways {
		t.Run(name, func(t *testing.T) {
			testGateway(t, open)
		})
	}
}

func testGateway(t *testing.T, open func(t *testing.T) store.Gateway) {
	ctx := context.Background()

	seed := func(t *testing.T, gw store.Gateway) {
		t.Helper()
		for _, rec := range []store.Record{
			formRecord("a", "Alpha", "2024-01-02T00:00:00.000000000Z"),
			formRecord("b", "Beta", "2024-01-03T00:00:00.000000000Z"),
			formRecord("c", "Gamma", "2024-01-01T00:00:00.000000000Z"),
		} {
			if err := gw.Insert(ctx, store.Forms, rec); err != nil {
				t.Fatalf("failed to insert %v: %v", rec["id"], err)
			}
		}
	}

	t.Run("select with filter and order", func(t *testing.T) {
		gw := open(t)
		seed(t, gw)

		recs, err := gw.Select(ctx, store.Forms, nil, store.Desc("updated_at"))
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if diff := cmp.Diff([]string{"b", "a", "c"}, ids(t, recs)); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}

		recs, err = gw.Select(ctx, store.Forms, store.Where(store.NotIn("id", "a", "c")))
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if diff := cmp.Diff([]string{"b"}, ids(t, recs)); diff != "" {
			t.Errorf("not-in mismatch (-want +got):\n%s", diff)
		}

		recs, err = gw.Select(ctx, store.Forms, store.Where(store.In[string]("id")))
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("expected empty IN to match nothing, got %d rows", len(recs))
		}

		recs, err = gw.Select(ctx, store.Forms, store.Where(store.Eq("title", "Gamma"), store.In("id", "a", "c")))
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if diff := cmp.Diff([]string{"c"}, ids(t, recs)); diff != "" {
			t.Errorf("conjunction mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("upsert inserts then overwrites", func(t *testing.T) {
		gw := open(t)

		stored, err := gw.Upsert(ctx, store.Forms, formRecord("x", "First", "2024-01-01T00:00:00.000000000Z"))
		if err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if stored["title"] != "First" {
			t.Errorf("unexpected title %v", stored["title"])
		}

		stored, err = gw.Upsert(ctx, store.Forms, formRecord("x", "Second", "2024-02-01T00:00:00.000000000Z"))
		if err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if stored["title"] != "Second" || stored["updated_at"] != "2024-02-01T00:00:00.000000000Z" {
			t.Errorf("upsert did not overwrite: %v", stored)
		}

		recs, err := gw.Select(ctx, store.Forms, nil)
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if len(recs) != 1 {
			t.Errorf("expected 1 row, got %d", len(recs))
		}
	})

	t.Run("update by filter", func(t *testing.T) {
		gw := open(t)
		seed(t, gw)

		n, err := gw.Update(ctx, store.Forms, store.Where(store.Eq("id", "a")), store.Record{"published": true, "public_url": "tok"})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 row updated, got %d", n)
		}

		recs, err := gw.Select(ctx, store.Forms, store.Where(store.Eq("public_url", "tok"), store.Eq("published", true)))
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if diff := cmp.Diff([]string{"a"}, ids(t, recs)); diff != "" {
			t.Errorf("updated rows mismatch (-want +got):\n%s", diff)
		}

		n, err = gw.Update(ctx, store.Forms, store.Where(store.Eq("id", "missing")), store.Record{"title": "x"})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 rows updated, got %d", n)
		}
	})

	t.Run("delete by filter", func(t *testing.T) {
		gw := open(t)
		seed(t, gw)

		if err := gw.Delete(ctx, store.Forms, store.Where(store.In("id", "a", "b"))); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		recs, err := gw.Select(ctx, store.Forms, nil)
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if diff := cmp.Diff([]string{"c"}, ids(t, recs)); diff != "" {
			t.Errorf("remaining rows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("refuses unfiltered writes", func(t *testing.T) {
		gw := open(t)
		seed(t, gw)

		err := gw.Delete(ctx, store.Forms, nil)
		if !errors.Is(err, store.ErrNoFilter) {
			t.Errorf("expected ErrNoFilter, got %v", err)
		}
		_, err = gw.Update(ctx, store.Forms, nil, store.Record{"title": "x"})
		if !errors.Is(err, store.ErrNoFilter) {
			t.Errorf("expected ErrNoFilter, got %v", err)
		}
	})

	t.Run("rejects unknown collections and fields", func(t *testing.T) {
		gw := open(t)

		_, err := gw.Select(ctx, "users; DROP TABLE forms", nil)
		if !errors.Is(err, store.ErrUnknownCollection) {
			t.Errorf("expected ErrUnknownCollection, got %v", err)
		}
		var storeErr *store.Error
		if !errors.As(err, &storeErr) {
			t.Errorf("expected *store.Error, got %T", err)
		}

		_, err = gw.Select(ctx, store.Forms, store.Where(store.Eq("id = id OR 1", 1)))
		if err == nil {
			t.Error("expected invalid field name to be rejected")
		}
	})
}

func TestMemoryFailOn(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	boom := errors.New("boom")

	mem.FailOn("insert", store.Responses, boom)
	err := mem.Insert(ctx, store.Responses, store.Record{"id": "r1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Op != "insert" || storeErr.Collection != store.Responses {
		t.Errorf("unexpected error shape: %#v", err)
	}

	mem.FailOn("insert", store.Responses, nil)
	if err := mem.Insert(ctx, store.Responses, store.Record{"id": "r1"}); err != nil {
		t.Fatalf("failed to insert after clearing failure: %v", err)
	}
	if err := mem.Insert(ctx, store.Responses, store.Record{"id": "r1"}); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if mem.Len(store.Responses) != 1 {
		t.Errorf("expected 1 response, got %d", mem.Len(store.Responses))
	}
}
