package welcome

import (
	"context"
	"testing"

	"guildhall/internal/storage"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(store)
}

func TestGreetingUnconfigured(t *testing.T) {
	module := newTestModule(t)

	_, _, ok, err := module.Greeting(context.Background(), "g1", "alice")
	if err != nil {
		t.Fatalf("greeting: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false without configuration")
	}
}

func TestGreetingRendersTemplate(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	if err := module.SetWelcome(ctx, "g1", "c1", "Hey {user}, read the rules!"); err != nil {
		t.Fatalf("set: %v", err)
	}
	channelID, text, ok, err := module.Greeting(ctx, "g1", "alice")
	if err != nil || !ok {
		t.Fatalf("greeting: ok=%v err=%v", ok, err)
	}
	if channelID != "c1" {
		t.Fatalf("expected c1, got %q", channelID)
	}
	if text != "Hey alice, read the rules!" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestGreetingDefaultText(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	if err := module.SetWelcome(ctx, "g1", "c1", ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	_, text, ok, err := module.Greeting(ctx, "g1", "bob")
	if err != nil || !ok {
		t.Fatalf("greeting: ok=%v err=%v", ok, err)
	}
	if text != "Welcome to the server, bob!" {
		t.Fatalf("unexpected default: %q", text)
	}
}

func TestFarewellIndependentOfWelcome(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	if err := module.SetWelcome(ctx, "g1", "c1", "hi {user}"); err != nil {
		t.Fatalf("set welcome: %v", err)
	}
	// Goodbye is not configured, so leaves stay silent.
	_, _, ok, err := module.Farewell(ctx, "g1", "alice")
	if err != nil {
		t.Fatalf("farewell: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false without goodbye channel")
	}

	if err := module.SetGoodbye(ctx, "g1", "c2", ""); err != nil {
		t.Fatalf("set goodbye: %v", err)
	}
	channelID, text, ok, err := module.Farewell(ctx, "g1", "alice")
	if err != nil || !ok {
		t.Fatalf("farewell: ok=%v err=%v", ok, err)
	}
	if channelID != "c2" {
		t.Fatalf("expected c2, got %q", channelID)
	}
	if text != "alice has left the server." {
		t.Fatalf("unexpected text: %q", text)
	}

	// Setting goodbye must not clobber the welcome side.
	channelID, _, ok, _ = module.Greeting(ctx, "g1", "alice")
	if !ok || channelID != "c1" {
		t.Fatalf("welcome settings lost: ok=%v channel=%q", ok, channelID)
	}
}
