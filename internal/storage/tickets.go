package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Ticket struct {
	ChannelID string
	GuildID   string
	UserID    string
	CreatedAt time.Time
}

type TicketMessage struct {
	MessageID      string
	ChannelID      string
	AuthorID       string
	AuthorUsername string
	Content        string
	CreatedAt      time.Time
	EditedAt       *time.Time
}

type TicketSettings struct {
	GuildID    string
	PingRoleID string
}

func (s *Store) InsertTicket(ctx context.Context, ticket Ticket) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tickets (channel_id, guild_id, user_id, created_at)
		VALUES (?, ?, ?, ?)
	`, ticket.ChannelID, ticket.GuildID, ticket.UserID, ticket.CreatedAt.Unix())
	return err
}

// TicketByChannel reports found=false for channels with no open ticket;
// a closed ticket is just an absent row.
func (s *Store) TicketByChannel(ctx context.Context, channelID string) (Ticket, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT channel_id, guild_id, user_id, created_at
		FROM tickets WHERE channel_id = ?
	`, channelID)

	var ticket Ticket
	var created int64
	if err := row.Scan(&ticket.ChannelID, &ticket.GuildID, &ticket.UserID, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ticket{}, false, nil
		}
		return Ticket{}, false, err
	}
	ticket.CreatedAt = time.Unix(created, 0)
	return ticket, true, nil
}

func (s *Store) DeleteTicket(ctx context.Context, channelID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tickets WHERE channel_id = ?`, channelID)
	return err
}

func (s *Store) InsertTicketMessage(ctx context.Context, msg TicketMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO ticket_messages (message_id, channel_id, author_id, author_username, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.MessageID, msg.ChannelID, msg.AuthorID, msg.AuthorUsername, msg.Content, msg.CreatedAt.Unix())
	return err
}

func (s *Store) UpdateTicketMessage(ctx context.Context, messageID, content string, editedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE ticket_messages SET content = ?, edited_at = ? WHERE message_id = ?
	`, content, editedAt.Unix(), messageID)
	return err
}

func (s *Store) DeleteTicketMessage(ctx context.Context, messageID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ticket_messages WHERE message_id = ?`, messageID)
	return err
}

func (s *Store) ListTicketMessages(ctx context.Context, channelID string) ([]TicketMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, channel_id, author_id, author_username, content, created_at, edited_at
		FROM ticket_messages
		WHERE channel_id = ?
		ORDER BY created_at ASC, message_id ASC
	`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []TicketMessage
	for rows.Next() {
		var msg TicketMessage
		var created int64
		var edited sql.NullInt64
		if err := rows.Scan(&msg.MessageID, &msg.ChannelID, &msg.AuthorID, &msg.AuthorUsername, &msg.Content, &created, &edited); err != nil {
			return nil, err
		}
		msg.CreatedAt = time.Unix(created, 0)
		if edited.Valid {
			value := time.Unix(edited.Int64, 0)
			msg.EditedAt = &value
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *Store) UpsertTicketSettings(ctx context.Context, settings TicketSettings) error {
	var pingRole any
	if settings.PingRoleID != "" {
		pingRole = settings.PingRoleID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ticket_settings (guild_id, ping_role_id)
		VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET ping_role_id = excluded.ping_role_id
	`, settings.GuildID, pingRole)
	return err
}

// EnsureTicketSettings creates an empty settings row if the guild has none,
// leaving an existing row alone.
func (s *Store) EnsureTicketSettings(ctx context.Context, guildID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO ticket_settings (guild_id, ping_role_id) VALUES (?, NULL)`, guildID)
	return err
}

func (s *Store) TicketSettingsFor(ctx context.Context, guildID string) (TicketSettings, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT guild_id, ping_role_id FROM ticket_settings WHERE guild_id = ?`, guildID)

	var settings TicketSettings
	var pingRole sql.NullString
	if err := row.Scan(&settings.GuildID, &pingRole); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TicketSettings{}, false, nil
		}
		return TicketSettings{}, false, err
	}
	if pingRole.Valid {
		settings.PingRoleID = pingRole.String
	}
	return settings, true, nil
}

func (s *Store) AddTicketAccessRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO ticket_access_roles (guild_id, role_id) VALUES (?, ?)`, guildID, roleID)
	return err
}

func (s *Store) RemoveTicketAccessRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ticket_access_roles WHERE guild_id = ? AND role_id = ?`, guildID, roleID)
	return err
}

func (s *Store) ListTicketAccessRoles(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT role_id FROM ticket_access_roles WHERE guild_id = ? ORDER BY role_id`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var roleID string
		if err := rows.Scan(&roleID); err != nil {
			return nil, err
		}
		roles = append(roles, roleID)
	}
	return roles, rows.Err()
}
