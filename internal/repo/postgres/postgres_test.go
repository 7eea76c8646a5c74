package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPostgresStore_PutGet(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	// Unique key per run so reruns against the same volume don't collide.
	key := fmt.Sprintf("test-%d", time.Now().UTC().UnixNano())

	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, map[string]string{key: "first"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, map[string]string{key: "second"}); err != nil {
		t.Fatalf("Put upsert: %v", err)
	}
	v, ok, err := store.Get(ctx, key)
	if err != nil || !ok || v != "second" {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}
}
