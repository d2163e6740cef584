package blobstore

import (
	"context"
	"strings"
	"testing"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Put(ctx, "audio/rec-1.wav", "audio/wav", strings.NewReader("payload"), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, ok := store.Get("audio/rec-1.wav")
	if !ok || string(data) != "payload" {
		t.Errorf("unexpected blob content: %q ok=%v", data, ok)
	}

	url, err := store.PresignGet(ctx, "audio/rec-1.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "memory://audio/rec-1.wav" {
		t.Errorf("unexpected url: %q", url)
	}
}

func TestMemoryStore_MissingKey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.PresignGet(ctx, "nope"); err != ErrBlobNotFound {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "nope"); err != ErrBlobNotFound {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Put(ctx, "k", "text/plain", strings.NewReader("x"), 1)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Get("k"); ok {
		t.Error("expected blob to be deleted")
	}
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
