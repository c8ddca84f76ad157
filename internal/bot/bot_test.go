package bot

import (
	"context"
	"testing"
	"time"

	"guildhall/internal/analytics"
	"guildhall/internal/config"
	"guildhall/internal/modules/audit"
	"guildhall/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func newTestBot(t *testing.T) (*Bot, *storage.Store) {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.DiscordToken = "test-token"
	cfg.Notifications.DMLevelUp = false

	b, err := New(cfg, zap.NewNop(), store, audit.NewLogger(store, zap.NewNop()), analytics.New(store))
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	b.session.State.MaxMessageCount = 50
	return b, store
}

// seedStateMessage puts a guild, channel and message into the session state
// so reaction handling resolves the author without a live connection.
func seedStateMessage(t *testing.T, b *Bot, guildID, channelID string, msg *discordgo.Message) {
	t.Helper()
	if err := b.session.State.GuildAdd(&discordgo.Guild{ID: guildID}); err != nil {
		t.Fatalf("guild add: %v", err)
	}
	if err := b.session.State.ChannelAdd(&discordgo.Channel{ID: channelID, GuildID: guildID, Type: discordgo.ChannelTypeGuildText}); err != nil {
		t.Fatalf("channel add: %v", err)
	}
	if err := b.session.State.MessageAdd(msg); err != nil {
		t.Fatalf("message add: %v", err)
	}
}

func TestMessageCreateMirrorsBotAuthors(t *testing.T) {
	b, store := newTestBot(t)
	ctx := context.Background()

	if err := store.InsertTicket(ctx, storage.Ticket{ChannelID: "c1", GuildID: "g1", UserID: "u1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	if err := store.SetXPEnabled(ctx, "g1", true); err != nil {
		t.Fatalf("enable xp: %v", err)
	}

	b.onMessageCreate(b.session, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "transcript attached",
		Author:    &discordgo.User{ID: "b1", Username: "helper", Bot: true},
		Timestamp: time.Now(),
	}})

	messages, err := store.ListTicketMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected bot message mirrored, got %d rows", len(messages))
	}
	if messages[0].AuthorID != "b1" || messages[0].Content != "transcript attached" {
		t.Fatalf("unexpected mirrored row: %+v", messages[0])
	}

	// Mirrored, but never paid: bots earn no points.
	xp, err := store.GetXP(ctx, "g1", "b1")
	if err != nil {
		t.Fatalf("get xp: %v", err)
	}
	if xp != 0 {
		t.Fatalf("expected no xp for bot author, got %d", xp)
	}
}

func TestMessageCreateGrantsMessagePoints(t *testing.T) {
	b, store := newTestBot(t)
	ctx := context.Background()

	if err := store.SetXPEnabled(ctx, "g1", true); err != nil {
		t.Fatalf("enable xp: %v", err)
	}

	b.onMessageCreate(b.session, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "general",
		Content:   "hello there",
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
		Timestamp: time.Now(),
	}})

	xp, err := store.GetXP(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("get xp: %v", err)
	}
	if xp != 3 {
		t.Fatalf("expected 3 xp, got %d", xp)
	}
}

func TestReactionAddGrantsToAuthor(t *testing.T) {
	b, store := newTestBot(t)
	ctx := context.Background()

	if err := store.SetXPEnabled(ctx, "g1", true); err != nil {
		t.Fatalf("enable xp: %v", err)
	}
	seedStateMessage(t, b, "g1", "c1", &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
	})
	if err := b.session.State.MemberAdd(&discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: "u1"}}); err != nil {
		t.Fatalf("member add: %v", err)
	}

	b.onMessageReactionAdd(b.session, &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{UserID: "u2", MessageID: "m1", ChannelID: "c1", GuildID: "g1"},
		Member:          &discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: "u2"}},
	})

	xp, err := store.GetXP(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("get xp: %v", err)
	}
	if xp != 1 {
		t.Fatalf("expected author to earn 1 xp, got %d", xp)
	}
	reactorXP, err := store.GetXP(ctx, "g1", "u2")
	if err != nil {
		t.Fatalf("get xp: %v", err)
	}
	if reactorXP != 0 {
		t.Fatalf("expected reactor to earn nothing, got %d", reactorXP)
	}
}

func TestReactionAddSkipsSelfAndBotReactors(t *testing.T) {
	b, store := newTestBot(t)
	ctx := context.Background()

	if err := store.SetXPEnabled(ctx, "g1", true); err != nil {
		t.Fatalf("enable xp: %v", err)
	}
	seedStateMessage(t, b, "g1", "c1", &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
	})
	if err := b.session.State.MemberAdd(&discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: "u1"}}); err != nil {
		t.Fatalf("member add: %v", err)
	}

	// Author reacting to their own message.
	b.onMessageReactionAdd(b.session, &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{UserID: "u1", MessageID: "m1", ChannelID: "c1", GuildID: "g1"},
		Member:          &discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: "u1"}},
	})
	// A bot reacting.
	b.onMessageReactionAdd(b.session, &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{UserID: "b1", MessageID: "m1", ChannelID: "c1", GuildID: "g1"},
		Member:          &discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: "b1", Bot: true}},
	})

	xp, err := store.GetXP(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("get xp: %v", err)
	}
	if xp != 0 {
		t.Fatalf("expected no xp from self or bot reactions, got %d", xp)
	}
}

func TestMessageUpdateSkipsEmbedOnlyEdit(t *testing.T) {
	b, store := newTestBot(t)
	ctx := context.Background()

	if err := store.InsertTicket(ctx, storage.Ticket{ChannelID: "c1", GuildID: "g1", UserID: "u1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	b.onMessageCreate(b.session, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "hello https://example.com",
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
		Timestamp: time.Now(),
	}})

	// Link preview resolving: no author, no content.
	b.onMessageUpdate(b.session, &discordgo.MessageUpdate{Message: &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
	}})

	messages, err := store.ListTicketMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "hello https://example.com" {
		t.Fatalf("expected original content kept, got %+v", messages)
	}

	// A real edit still lands.
	b.onMessageUpdate(b.session, &discordgo.MessageUpdate{Message: &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "hello again",
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
	}})

	messages, err = store.ListTicketMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "hello again" {
		t.Fatalf("expected edited content, got %+v", messages)
	}
	if messages[0].EditedAt == nil {
		t.Fatalf("expected edited_at set")
	}
}
