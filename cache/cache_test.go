package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestKeysAreNamespaced(t *testing.T) {
	tk := TranscriptKey("abc123")
	sk := SummaryKey("abc123")

	if tk == sk {
		t.Fatalf("transcript and summary keys must differ, both were %q", tk)
	}
	if tk != "transcript:abc123" {
		t.Errorf("expected transcript:abc123, got %q", tk)
	}
	if sk != "summary:abc123" {
		t.Errorf("expected summary:abc123, got %q", sk)
	}
}

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss for absent key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(val) != "v1" {
		t.Errorf("expected v1, got %q", val)
	}

	// Overwrite is silent
	if err := store.Set(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	val, _, _ = store.Get(ctx, "k")
	if string(val) != "v2" {
		t.Errorf("expected v2 after overwrite, got %q", val)
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("zero-TTL entry should not expire")
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss for absent key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(val) != "v1" {
		t.Errorf("expected v1, got %q", val)
	}

	if err := store.Set(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	val, _, _ = store.Get(ctx, "k")
	if string(val) != "v2" {
		t.Errorf("expected v2 after overwrite, got %q", val)
	}
}

func TestSQLiteStoreExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	// Expired rows must be invisible even before the purge loop runs.
	if err := store.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := store.db.Exec(
		`UPDATE entries SET expires_at = ? WHERE key = ?`,
		time.Now().Add(-time.Minute).Unix(), "k",
	); err != nil {
		t.Fatalf("failed to backdate entry: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected miss for expired entry")
	}
}
