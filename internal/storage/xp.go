package storage

import (
	"context"
	"database/sql"
	"errors"
)

type XPAccount struct {
	GuildID string
	UserID  string
	XP      int64
}

// IncrementXP is the single write path for automatic grants. The upsert is
// one statement so two near-simultaneous messages for the same user cannot
// lose an update. Returns the new total.
func (s *Store) IncrementXP(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO xp_accounts (guild_id, user_id, xp)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET xp = xp_accounts.xp + excluded.xp
		RETURNING xp
	`, guildID, userID, amount)

	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// DecrementXP floors at zero. An account that was never created stays
// absent: accounts only come into existence through IncrementXP, so a
// removal against an unknown user leaves no zero row on the leaderboard.
func (s *Store) DecrementXP(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE xp_accounts SET xp = MAX(0, xp - ?)
		WHERE guild_id = ? AND user_id = ?
		RETURNING xp
	`, amount, guildID, userID)

	var total int64
	if err := row.Scan(&total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}

// GetXP returns zero for an absent account.
func (s *Store) GetXP(ctx context.Context, guildID, userID string) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT xp FROM xp_accounts WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	var total int64
	if err := row.Scan(&total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}

func (s *Store) DeleteXPAccount(ctx context.Context, guildID, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM xp_accounts WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	return err
}

// TopXPAccounts orders by xp descending; rowid breaks ties by insertion
// order so repeated leaderboard queries are stable.
func (s *Store) TopXPAccounts(ctx context.Context, guildID string, limit int) ([]XPAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guild_id, user_id, xp
		FROM xp_accounts
		WHERE guild_id = ?
		ORDER BY xp DESC, rowid ASC
		LIMIT ?
	`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []XPAccount
	for rows.Next() {
		var account XPAccount
		if err := rows.Scan(&account.GuildID, &account.UserID, &account.XP); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *Store) SetXPEnabled(ctx context.Context, guildID string, enabled bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO xp_guild_settings (guild_id, enabled)
		VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET enabled = excluded.enabled
	`, guildID, boolToInt(enabled))
	return err
}

// XPEnabled defaults to false when the guild has no settings row.
func (s *Store) XPEnabled(ctx context.Context, guildID string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT enabled FROM xp_guild_settings WHERE guild_id = ?`, guildID)

	var enabled int
	if err := row.Scan(&enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return enabled == 1, nil
}

func (s *Store) SetLevelRole(ctx context.Context, guildID string, level int, roleID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO level_roles (guild_id, level, role_id)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, level) DO UPDATE SET role_id = excluded.role_id
	`, guildID, level, roleID)
	return err
}

// LevelRole returns "" when no role is bound at this level.
func (s *Store) LevelRole(ctx context.Context, guildID string, level int) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT role_id FROM level_roles WHERE guild_id = ? AND level = ?`, guildID, level)

	var roleID string
	if err := row.Scan(&roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return roleID, nil
}

func (s *Store) AddBlockedRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO xp_blocked_roles (guild_id, role_id) VALUES (?, ?)`, guildID, roleID)
	return err
}

func (s *Store) RemoveBlockedRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM xp_blocked_roles WHERE guild_id = ? AND role_id = ?`, guildID, roleID)
	return err
}

func (s *Store) ListBlockedRoles(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT role_id FROM xp_blocked_roles WHERE guild_id = ? ORDER BY role_id`, guildID)
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

// NukeGuildXP removes the guild's entire XP entity family in one
// transaction. Ticket state is untouched; nukes never cascade cross-family.
func (s *Store) NukeGuildXP(ctx context.Context, guildID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		`DELETE FROM xp_accounts WHERE guild_id = ?`,
		`DELETE FROM level_roles WHERE guild_id = ?`,
		`DELETE FROM xp_guild_settings WHERE guild_id = ?`,
		`DELETE FROM xp_blocked_roles WHERE guild_id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, stmt, guildID); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}
