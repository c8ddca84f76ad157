package storage

import (
	"context"
	"testing"
	"time"
)

func TestTicketRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, found, err := store.TicketByChannel(ctx, "c1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found {
		t.Fatalf("expected no ticket before insert")
	}

	ticket := Ticket{ChannelID: "c1", GuildID: "g1", UserID: "u1", CreatedAt: time.Now()}
	if err := store.InsertTicket(ctx, ticket); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, found, err := store.TicketByChannel(ctx, "c1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !found {
		t.Fatalf("expected ticket after insert")
	}
	if got.GuildID != "g1" || got.UserID != "u1" {
		t.Fatalf("unexpected ticket: %+v", got)
	}

	if err := store.DeleteTicket(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, found, err = store.TicketByChannel(ctx, "c1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found {
		t.Fatalf("expected ticket gone after delete")
	}
}

func TestInsertTicketMessageIgnoresDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	msg := TicketMessage{MessageID: "m1", ChannelID: "c1", AuthorID: "u1", AuthorUsername: "alice", Content: "hello", CreatedAt: time.Now()}
	if err := store.InsertTicketMessage(ctx, msg); err != nil {
		t.Fatalf("insert: %v", err)
	}
	msg.Content = "changed"
	if err := store.InsertTicketMessage(ctx, msg); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	messages, err := store.ListTicketMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != "hello" {
		t.Fatalf("expected first write to win, got %q", messages[0].Content)
	}
}

func TestUpdateTicketMessageSetsEditedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Now().Add(-time.Minute)
	msg := TicketMessage{MessageID: "m1", ChannelID: "c1", AuthorID: "u1", AuthorUsername: "alice", Content: "hello", CreatedAt: created}
	if err := store.InsertTicketMessage(ctx, msg); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.UpdateTicketMessage(ctx, "m1", "edited", time.Now()); err != nil {
		t.Fatalf("update: %v", err)
	}
	// Updating a message that was never mirrored is a silent no-op.
	if err := store.UpdateTicketMessage(ctx, "never-seen", "x", time.Now()); err != nil {
		t.Fatalf("update absent: %v", err)
	}

	messages, err := store.ListTicketMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if messages[0].Content != "edited" {
		t.Fatalf("expected edited content, got %q", messages[0].Content)
	}
	if messages[0].EditedAt == nil {
		t.Fatalf("expected edited_at to be set")
	}
}

func TestListTicketMessagesOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"m3", "m1", "m2"} {
		offset := map[string]int{"m1": 0, "m2": 1, "m3": 2}[id]
		msg := TicketMessage{MessageID: id, ChannelID: "c1", AuthorID: "u1", AuthorUsername: "alice", Content: id, CreatedAt: base.Add(time.Duration(offset) * time.Minute)}
		if err := store.InsertTicketMessage(ctx, msg); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	messages, err := store.ListTicketMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].MessageID != "m1" || messages[1].MessageID != "m2" || messages[2].MessageID != "m3" {
		t.Fatalf("unexpected order: %s, %s, %s", messages[0].MessageID, messages[1].MessageID, messages[2].MessageID)
	}
}

func TestTicketSettingsNullPingRole(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.EnsureTicketSettings(ctx, "g1"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	settings, found, err := store.TicketSettingsFor(ctx, "g1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !found {
		t.Fatalf("expected settings row")
	}
	if settings.PingRoleID != "" {
		t.Fatalf("expected empty ping role, got %q", settings.PingRoleID)
	}

	if err := store.UpsertTicketSettings(ctx, TicketSettings{GuildID: "g1", PingRoleID: "r1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Ensure must not clobber an existing row.
	if err := store.EnsureTicketSettings(ctx, "g1"); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	settings, _, err = store.TicketSettingsFor(ctx, "g1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if settings.PingRoleID != "r1" {
		t.Fatalf("expected r1, got %q", settings.PingRoleID)
	}
}

func TestTicketAccessRoles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddTicketAccessRole(ctx, "g1", "r2"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddTicketAccessRole(ctx, "g1", "r1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddTicketAccessRole(ctx, "g1", "r1"); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}

	roles, err := store.ListTicketAccessRoles(ctx, "g1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roles) != 2 || roles[0] != "r1" || roles[1] != "r2" {
		t.Fatalf("unexpected roles: %v", roles)
	}

	if err := store.RemoveTicketAccessRole(ctx, "g1", "r1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	roles, err = store.ListTicketAccessRoles(ctx, "g1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roles) != 1 || roles[0] != "r2" {
		t.Fatalf("unexpected roles after remove: %v", roles)
	}
}
