package bot

import (
	"context"
	"fmt"
	"time"

	"guildhall/internal/analytics"
	"guildhall/internal/config"
	"guildhall/internal/leveling"
	"guildhall/internal/modules/audit"
	"guildhall/internal/modules/confessions"
	"guildhall/internal/modules/roleselect"
	"guildhall/internal/modules/welcome"
	"guildhall/internal/pending"
	"guildhall/internal/storage"
	"guildhall/internal/tickets"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	audit     *audit.Logger
	analytics *analytics.Service
	ledger    *leveling.Ledger
	tickets   *tickets.Service
	welcome   *welcome.Module
	confess   *confessions.Module
	roles     *roleselect.Module
	confirms  *pending.Store
	session   *discordgo.Session
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, auditLogger *audit.Logger, analyticsEngine *analytics.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		audit:     auditLogger,
		analytics: analyticsEngine,
		session:   session,
	}

	b.ledger = leveling.New(store, auditLogger)
	b.tickets = tickets.New(store, sessionPlatform{session: session}, auditLogger, cfg.Tickets.ChannelPrefix)
	b.welcome = welcome.New(store)
	b.confess = confessions.New(store, auditLogger, cfg.Confessions.MaxPerWindow, time.Duration(cfg.Confessions.WindowMinutes)*time.Minute)
	b.roles = roleselect.New(store)
	b.confirms = pending.New(2*time.Minute, 256)

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageUpdate)
	b.session.AddHandler(b.onMessageDelete)
	b.session.AddHandler(b.onMessageReactionAdd)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onInteractionCreate)

	if b.cfg.Notifications.AuditToChannel {
		b.audit.SetNotifier(b.notifyAudit)
	}

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	b.startAuditCleanup()

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.GuildID == "" {
		return
	}

	ctx := context.Background()

	// Mirroring runs before any XP filtering: every message in a ticket
	// channel lands in the durable log, bot posts included.
	mirrored := tickets.Message{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		Content:   msg.Content,
		CreatedAt: msg.Timestamp,
	}
	if msg.Author != nil {
		mirrored.AuthorID = msg.Author.ID
		mirrored.AuthorUsername = msg.Author.Username
	}
	if err := b.tickets.Mirror(ctx, mirrored); err != nil {
		b.logger.Warn("ticket mirror failed", zap.String("message_id", msg.ID), zap.Error(err))
	}

	// Only human activity accrues points.
	if msg.Author == nil || msg.Author.Bot {
		return
	}

	var memberRoles []string
	if msg.Member != nil {
		memberRoles = msg.Member.Roles
	}
	result, err := b.ledger.Grant(ctx, msg.GuildID, msg.Author.ID, memberRoles, b.cfg.XP.MessagePoints)
	if err != nil {
		b.logger.Warn("xp grant failed", zap.String("guild_id", msg.GuildID), zap.String("user_id", msg.Author.ID), zap.Error(err))
		return
	}
	b.applyLevelUp(ctx, msg.GuildID, msg.Author.ID, result)
}

func (b *Bot) onMessageUpdate(session *discordgo.Session, msg *discordgo.MessageUpdate) {
	if msg.GuildID == "" || msg.ID == "" {
		return
	}
	// Embed-only updates (link previews resolving) arrive with no author
	// and empty content; writing that through would erase the mirrored text.
	if msg.Content == "" && msg.Author == nil {
		return
	}

	edited := time.Now()
	if msg.EditedTimestamp != nil {
		edited = *msg.EditedTimestamp
	}
	ctx := context.Background()
	if err := b.tickets.MirrorEdit(ctx, msg.ID, msg.Content, edited); err != nil {
		b.logger.Warn("ticket mirror edit failed", zap.String("message_id", msg.ID), zap.Error(err))
	}
}

func (b *Bot) onMessageDelete(session *discordgo.Session, msg *discordgo.MessageDelete) {
	if msg.ID == "" {
		return
	}
	ctx := context.Background()
	if err := b.tickets.MirrorDelete(ctx, msg.ID); err != nil {
		b.logger.Warn("ticket mirror delete failed", zap.String("message_id", msg.ID), zap.Error(err))
	}
}

func (b *Bot) onMessageReactionAdd(session *discordgo.Session, event *discordgo.MessageReactionAdd) {
	if event.GuildID == "" {
		return
	}
	if event.Member != nil && event.Member.User != nil && event.Member.User.Bot {
		return
	}

	author := b.messageAuthor(event.ChannelID, event.MessageID)
	if author == nil || author.Bot {
		return
	}
	// Reacting to your own message earns nothing.
	if author.ID == event.UserID {
		return
	}

	ctx := context.Background()
	var authorRoles []string
	if member := b.memberForUser(event.GuildID, author.ID); member != nil {
		authorRoles = member.Roles
	}
	result, err := b.ledger.Grant(ctx, event.GuildID, author.ID, authorRoles, b.cfg.XP.ReactionPoints)
	if err != nil {
		b.logger.Warn("reaction xp grant failed", zap.String("guild_id", event.GuildID), zap.String("user_id", author.ID), zap.Error(err))
		return
	}
	b.applyLevelUp(ctx, event.GuildID, author.ID, result)
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.Member == nil || event.Member.User == nil || event.Member.User.Bot {
		return
	}
	ctx := context.Background()
	channelID, text, ok, err := b.welcome.Greeting(ctx, event.GuildID, event.Member.User.Username)
	if err != nil {
		b.logger.Warn("welcome lookup failed", zap.String("guild_id", event.GuildID), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	_, _ = b.session.ChannelMessageSend(channelID, text)
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.Member == nil || event.Member.User == nil || event.Member.User.Bot {
		return
	}
	ctx := context.Background()
	channelID, text, ok, err := b.welcome.Farewell(ctx, event.GuildID, event.Member.User.Username)
	if err != nil {
		b.logger.Warn("goodbye lookup failed", zap.String("guild_id", event.GuildID), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	_, _ = b.session.ChannelMessageSend(channelID, text)
}

// applyLevelUp performs the side effects the ledger leaves to its caller.
// Both the role grant and the DM are best-effort: a platform rejection is
// logged and the persisted level-up stands.
func (b *Bot) applyLevelUp(ctx context.Context, guildID, userID string, result leveling.GrantResult) {
	if !result.LeveledUp() {
		return
	}

	if result.RoleID != "" {
		if err := b.session.GuildMemberRoleAdd(guildID, userID, result.RoleID); err != nil {
			b.audit.Log(ctx, audit.LevelWarn, guildID, userID, audit.EventActionFailed, "level role grant failed role="+result.RoleID)
		}
	}
	b.audit.Log(ctx, audit.LevelInfo, guildID, userID, audit.EventLevelUp, fmt.Sprintf("level=%d xp=%d", result.NewLevel, result.NewXP))

	if b.cfg.Notifications.DMLevelUp {
		b.dmLevelUp(userID, result.NewLevel)
	}
}

func (b *Bot) dmLevelUp(userID string, level int) {
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return
	}
	_, _ = b.session.ChannelMessageSendEmbed(channel.ID, b.levelUpEmbed(level))
}

func (b *Bot) messageAuthor(channelID, messageID string) *discordgo.User {
	if msg, err := b.session.State.Message(channelID, messageID); err == nil && msg != nil && msg.Author != nil {
		return msg.Author
	}
	msg, err := b.session.ChannelMessage(channelID, messageID)
	if err != nil || msg == nil {
		return nil
	}
	return msg.Author
}

func (b *Bot) memberForUser(guildID, userID string) *discordgo.Member {
	member, err := b.session.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member
	}
	member, _ = b.session.GuildMember(guildID, userID)
	return member
}

// notifyAudit posts WARN and CRIT audit entries to the guild's bound audit
// channel. INFO entries stay in the database and the process log only.
func (b *Bot) notifyAudit(ctx context.Context, entry storage.AuditLog) {
	if entry.Level == audit.LevelInfo || entry.GuildID == "" {
		return
	}
	channelID, err := b.store.AuditChannel(ctx, entry.GuildID)
	if err != nil || channelID == "" {
		return
	}
	_, _ = b.session.ChannelMessageSendEmbed(channelID, b.auditEmbed(entry))
}

func (b *Bot) startAuditCleanup() {
	if b.cfg.RetentionDays <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := b.store.CleanupAuditLogs(context.Background(), b.cfg.RetentionDays); err != nil {
				b.logger.Warn("audit cleanup failed", zap.Error(err))
			}
		}
	}()
}

// sessionPlatform implements tickets.Platform over the live session.
type sessionPlatform struct {
	session *discordgo.Session
}

func (p sessionPlatform) CreateChannel(guildID, name string, overwrites []*discordgo.PermissionOverwrite) (string, error) {
	channel, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func (p sessionPlatform) EditChannelPermissions(channelID string, overwrites []*discordgo.PermissionOverwrite) error {
	_, err := p.session.ChannelEditComplex(channelID, &discordgo.ChannelEdit{PermissionOverwrites: overwrites})
	return err
}

func (p sessionPlatform) DeleteChannel(channelID string) error {
	_, err := p.session.ChannelDelete(channelID)
	return err
}
