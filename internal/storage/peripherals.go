package storage

import (
	"context"
	"database/sql"
	"errors"
)

type WelcomeSettings struct {
	GuildID        string
	WelcomeChannel string
	WelcomeText    string
	GoodbyeChannel string
	GoodbyeText    string
}

type SelfRole struct {
	GuildID string
	RoleID  string
	Label   string
}

func (s *Store) UpsertWelcomeSettings(ctx context.Context, settings WelcomeSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO welcome_settings (guild_id, welcome_channel, welcome_text, goodbye_channel, goodbye_text)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			welcome_channel = excluded.welcome_channel,
			welcome_text = excluded.welcome_text,
			goodbye_channel = excluded.goodbye_channel,
			goodbye_text = excluded.goodbye_text
	`, settings.GuildID, settings.WelcomeChannel, settings.WelcomeText, settings.GoodbyeChannel, settings.GoodbyeText)
	return err
}

func (s *Store) WelcomeSettingsFor(ctx context.Context, guildID string) (WelcomeSettings, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, welcome_channel, welcome_text, goodbye_channel, goodbye_text
		FROM welcome_settings WHERE guild_id = ?
	`, guildID)

	var settings WelcomeSettings
	err := row.Scan(&settings.GuildID, &settings.WelcomeChannel, &settings.WelcomeText, &settings.GoodbyeChannel, &settings.GoodbyeText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WelcomeSettings{}, false, nil
		}
		return WelcomeSettings{}, false, err
	}
	return settings, true, nil
}

func (s *Store) SetConfessionChannel(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO confession_settings (guild_id, channel_id)
		VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET channel_id = excluded.channel_id
	`, guildID, channelID)
	return err
}

// ConfessionChannel returns "" when confessions are not configured.
func (s *Store) ConfessionChannel(ctx context.Context, guildID string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT channel_id FROM confession_settings WHERE guild_id = ?`, guildID)

	var channelID string
	if err := row.Scan(&channelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return channelID, nil
}

func (s *Store) SetAuditChannel(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_channels (guild_id, channel_id)
		VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET channel_id = excluded.channel_id
	`, guildID, channelID)
	return err
}

// AuditChannel returns "" when the guild has no audit channel bound.
func (s *Store) AuditChannel(ctx context.Context, guildID string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT channel_id FROM audit_channels WHERE guild_id = ?`, guildID)

	var channelID string
	if err := row.Scan(&channelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return channelID, nil
}

func (s *Store) AddSelfRole(ctx context.Context, role SelfRole) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO self_roles (guild_id, role_id, label)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, role_id) DO UPDATE SET label = excluded.label
	`, role.GuildID, role.RoleID, role.Label)
	return err
}

func (s *Store) RemoveSelfRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM self_roles WHERE guild_id = ? AND role_id = ?`, guildID, roleID)
	return err
}

func (s *Store) ListSelfRoles(ctx context.Context, guildID string) ([]SelfRole, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT guild_id, role_id, label FROM self_roles WHERE guild_id = ? ORDER BY label`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []SelfRole
	for rows.Next() {
		var role SelfRole
		if err := rows.Scan(&role.GuildID, &role.RoleID, &role.Label); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *Store) IsSelfRole(ctx context.Context, guildID, roleID string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM self_roles WHERE guild_id = ? AND role_id = ?`, guildID, roleID)

	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
