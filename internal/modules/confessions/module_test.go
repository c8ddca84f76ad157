package confessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"guildhall/internal/modules/audit"
	"guildhall/internal/storage"

	"go.uber.org/zap"
)

func newTestModule(t *testing.T, maxPerWindow int) (*Module, *storage.Store) {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	module := New(store, audit.NewLogger(store, zap.NewNop()), maxPerWindow, 10*time.Minute)
	return module, store
}

func TestSubmitRequiresChannel(t *testing.T) {
	module, _ := newTestModule(t, 3)

	_, err := module.Submit(context.Background(), "g1", "u1", "something on my mind")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSubmitRejectsEmpty(t *testing.T) {
	module, _ := newTestModule(t, 3)

	_, err := module.Submit(context.Background(), "g1", "u1", "   \n ")
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestSubmitRejectsLinks(t *testing.T) {
	module, _ := newTestModule(t, 3)
	ctx := context.Background()

	if err := module.SetChannel(ctx, "g1", "c1"); err != nil {
		t.Fatalf("set channel: %v", err)
	}

	for _, content := range []string{
		"visit https://spam.example now",
		"join discord.gg/abc",
	} {
		if _, err := module.Submit(ctx, "g1", "u1", content); !errors.Is(err, ErrContainsLink) {
			t.Fatalf("expected ErrContainsLink for %q, got %v", content, err)
		}
	}
}

func TestSubmitRateLimited(t *testing.T) {
	module, _ := newTestModule(t, 2)
	ctx := context.Background()

	if err := module.SetChannel(ctx, "g1", "c1"); err != nil {
		t.Fatalf("set channel: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := module.Submit(ctx, "g1", "u1", "a confession"); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if _, err := module.Submit(ctx, "g1", "u1", "one too many"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// Other users have their own window.
	if _, err := module.Submit(ctx, "g1", "u2", "first for me"); err != nil {
		t.Fatalf("other user: %v", err)
	}
}

func TestSubmitReturnsChannel(t *testing.T) {
	module, _ := newTestModule(t, 3)
	ctx := context.Background()

	if err := module.SetChannel(ctx, "g1", "c1"); err != nil {
		t.Fatalf("set channel: %v", err)
	}
	channelID, err := module.Submit(ctx, "g1", "u1", "clean confession")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if channelID != "c1" {
		t.Fatalf("expected c1, got %q", channelID)
	}
}
