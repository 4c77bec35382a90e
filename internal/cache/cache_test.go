package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/notexe/ledger-reminders/internal/config"
	"github.com/notexe/ledger-reminders/internal/reminder"
)

var sample = []reminder.Reminder{
	{ID: 9, Category: reminder.CategoryBudget, Title: "food over budget"},
	{ID: 3, Category: reminder.CategoryManual, Title: "pay rent", IsRead: true, DateStart: "2025-06-01", Time: "09:00:00"},
	{ID: 7, Category: reminder.CategorySavings, Title: "trip fund"},
}

func checkList(t *testing.T, got, want []reminder.Reminder) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d reminders, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSQLite_SaveLoadKeepsOrder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	c, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer c.Close()

	empty, err := c.Load(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty cache, got %v, %v", empty, err)
	}

	if err := c.Save(ctx, sample); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	checkList(t, got, sample)
}

func TestSQLite_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	c, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.Save(ctx, sample)
	if err := c.Save(ctx, sample[1:2]); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := c.Load(ctx)
	checkList(t, got, sample[1:2])
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	c.Save(ctx, sample)
	c.Close()

	c, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	got, _ := c.Load(ctx)
	checkList(t, got, sample)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, config.CacheConfig{Driver: config.CacheNone})
	if err != nil || c != nil {
		t.Errorf("expected no cache for none driver, got %v, %v", c, err)
	}

	c, err = Open(ctx, config.CacheConfig{Driver: config.CacheSQLite, Path: filepath.Join(t.TempDir(), "c.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	c.Close()

	if _, err := Open(ctx, config.CacheConfig{Driver: "memcached"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := OpenRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedis_LoadMissingKeyIsEmpty(t *testing.T) {
	c, _ := newTestRedis(t)

	got, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %+v", got)
	}
}

func TestRedis_SaveLoad(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if err := c.Save(ctx, sample); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists(defaultRedisKey) {
		t.Errorf("expected the list under %q", defaultRedisKey)
	}

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	checkList(t, got, sample)

	if err := c.Save(ctx, sample[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = c.Load(ctx)
	checkList(t, got, sample[:1])
}

func TestRedis_CorruptBlob(t *testing.T) {
	c, mr := newTestRedis(t)
	mr.Set(defaultRedisKey, "not json")

	if _, err := c.Load(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}

func TestOpen_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c, err := Open(ctx, config.CacheConfig{Driver: config.CacheRedis, Redis: config.RedisConfig{Addr: mr.Addr(), Key: "custom"}})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer c.Close()

	if err := c.Save(ctx, sample); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists("custom") {
		t.Error("expected the configured key to be used")
	}

	addr := mr.Addr()
	mr.Close()
	if _, err := OpenRedis(ctx, config.RedisConfig{Addr: addr}); err == nil {
		t.Error("expected error when the server is down")
	}
}
