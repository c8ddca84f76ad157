package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guildhall/internal/modules/audit"
	"guildhall/internal/storage"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNoSettings: a ticket cannot open without at least an empty
	// settings row for the guild.
	ErrNoSettings = errors.New("tickets: guild has no ticket settings")
	// ErrNoTicket: the channel has no open ticket. Close is deliberately
	// not idempotent, so a second close surfaces this.
	ErrNoTicket = errors.New("tickets: no ticket found for channel")
)

const ticketPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// Platform is the slice of the chat client the lifecycle needs. The bot
// implements it over the live session; tests use a fake.
type Platform interface {
	CreateChannel(guildID, name string, overwrites []*discordgo.PermissionOverwrite) (channelID string, err error)
	EditChannelPermissions(channelID string, overwrites []*discordgo.PermissionOverwrite) error
	DeleteChannel(channelID string) error
}

type Message struct {
	MessageID      string
	ChannelID      string
	AuthorID       string
	AuthorUsername string
	Content        string
	CreatedAt      time.Time
}

type OpenResult struct {
	ChannelID  string
	PingRoleID string
}

type Service struct {
	store         *storage.Store
	platform      Platform
	audit         *audit.Logger
	channelPrefix string
}

func New(store *storage.Store, platform Platform, auditLogger *audit.Logger, channelPrefix string) *Service {
	if channelPrefix == "" {
		channelPrefix = "ticket"
	}
	return &Service{store: store, platform: platform, audit: auditLogger, channelPrefix: channelPrefix}
}

// Open allocates the private channel and only then persists the tracking
// row, so a failed channel create leaves no state behind. If the row write
// fails after the channel exists, the channel is deleted best-effort rather
// than left orphaned.
func (s *Service) Open(ctx context.Context, guildID, userID string) (OpenResult, error) {
	settings, found, err := s.store.TicketSettingsFor(ctx, guildID)
	if err != nil {
		return OpenResult{}, err
	}
	if !found {
		return OpenResult{}, ErrNoSettings
	}

	accessRoles, err := s.store.ListTicketAccessRoles(ctx, guildID)
	if err != nil {
		return OpenResult{}, err
	}

	overwrites := openOverwrites(guildID, userID, accessRoles)
	name := fmt.Sprintf("%s-%s", s.channelPrefix, userID)
	channelID, err := s.platform.CreateChannel(guildID, name, overwrites)
	if err != nil {
		return OpenResult{}, fmt.Errorf("create ticket channel: %w", err)
	}

	ticket := storage.Ticket{
		ChannelID: channelID,
		GuildID:   guildID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertTicket(ctx, ticket); err != nil {
		_ = s.platform.DeleteChannel(channelID)
		return OpenResult{}, fmt.Errorf("persist ticket: %w", err)
	}

	s.audit.Log(ctx, audit.LevelInfo, guildID, userID, audit.EventTicketOpen, "channel="+channelID)
	return OpenResult{ChannelID: channelID, PingRoleID: settings.PingRoleID}, nil
}

// Mirror copies a channel message into the durable log. Messages in
// channels without an open ticket are silently skipped, as are duplicates
// of an already mirrored message id.
func (s *Service) Mirror(ctx context.Context, msg Message) error {
	_, found, err := s.store.TicketByChannel(ctx, msg.ChannelID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return s.store.InsertTicketMessage(ctx, storage.TicketMessage{
		MessageID:      msg.MessageID,
		ChannelID:      msg.ChannelID,
		AuthorID:       msg.AuthorID,
		AuthorUsername: msg.AuthorUsername,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	})
}

// MirrorEdit updates content in place; a message that was never mirrored
// is a no-op.
func (s *Service) MirrorEdit(ctx context.Context, messageID, content string, editedAt time.Time) error {
	return s.store.UpdateTicketMessage(ctx, messageID, content, editedAt)
}

func (s *Service) MirrorDelete(ctx context.Context, messageID string) error {
	return s.store.DeleteTicketMessage(ctx, messageID)
}

// Close restricts the channel to the configured access roles (the opener
// loses view) and removes the tracking row. The mirrored messages are the
// historical record and survive closure.
func (s *Service) Close(ctx context.Context, channelID string) error {
	ticket, found, err := s.store.TicketByChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNoTicket
	}

	accessRoles, err := s.store.ListTicketAccessRoles(ctx, ticket.GuildID)
	if err != nil {
		return err
	}
	if err := s.platform.EditChannelPermissions(channelID, closedOverwrites(ticket.GuildID, accessRoles)); err != nil {
		return fmt.Errorf("restrict ticket channel: %w", err)
	}
	if err := s.store.DeleteTicket(ctx, channelID); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.LevelInfo, ticket.GuildID, ticket.UserID, audit.EventTicketClose, "channel="+channelID)
	return nil
}

func (s *Service) EnsureSettings(ctx context.Context, guildID string) error {
	return s.store.EnsureTicketSettings(ctx, guildID)
}

func (s *Service) SetPingRole(ctx context.Context, guildID, roleID string) error {
	return s.store.UpsertTicketSettings(ctx, storage.TicketSettings{GuildID: guildID, PingRoleID: roleID})
}

func (s *Service) AddAccessRole(ctx context.Context, guildID, roleID string) error {
	if err := s.store.EnsureTicketSettings(ctx, guildID); err != nil {
		return err
	}
	return s.store.AddTicketAccessRole(ctx, guildID, roleID)
}

func (s *Service) RemoveAccessRole(ctx context.Context, guildID, roleID string) error {
	return s.store.RemoveTicketAccessRole(ctx, guildID, roleID)
}

func (s *Service) Transcript(ctx context.Context, channelID string) ([]storage.TicketMessage, error) {
	return s.store.ListTicketMessages(ctx, channelID)
}

// openOverwrites hides the channel from @everyone (the guild id doubles as
// the default role id) and grants the opener plus every access role.
func openOverwrites(guildID, userID string, accessRoles []string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: ticketPermissions},
		{ID: userID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketPermissions},
	}
	for _, roleID := range accessRoles {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: ticketPermissions,
		})
	}
	return overwrites
}

func closedOverwrites(guildID string, accessRoles []string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: ticketPermissions},
	}
	for _, roleID := range accessRoles {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: ticketPermissions,
		})
	}
	return overwrites
}
