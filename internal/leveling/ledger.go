package leveling

import (
	"context"
	"fmt"

	"guildhall/internal/modules/audit"
	"guildhall/internal/storage"
)

// PointsPerLevel fixes the leveling curve. Levels are always derived from
// the stored total, never persisted.
const PointsPerLevel = 100

func Level(xp int64) int {
	if xp < 0 {
		return 0
	}
	return int(xp / PointsPerLevel)
}

func NextLevelXP(level int) int64 {
	return int64(level+1) * PointsPerLevel
}

// GrantResult reports what a grant did. Side effects of a level-up (role
// grant, notification) belong to the caller; the ledger only resolves the
// bound role id.
type GrantResult struct {
	Applied  bool
	OldXP    int64
	NewXP    int64
	OldLevel int
	NewLevel int
	RoleID   string
}

func (r GrantResult) LeveledUp() bool {
	return r.Applied && r.NewLevel > r.OldLevel
}

type Progress struct {
	XP          int64
	Level       int
	NextLevelXP int64
}

type Direction string

const (
	DirectionAdd    Direction = "add"
	DirectionRemove Direction = "remove"
)

type Ledger struct {
	store *storage.Store
	audit *audit.Logger
}

func New(store *storage.Store, auditLogger *audit.Logger) *Ledger {
	return &Ledger{store: store, audit: auditLogger}
}

// Grant accrues points for qualifying activity. A disabled guild or a held
// blocked role is a filtered event, not an error: the result comes back
// with Applied=false and no account is touched.
func (l *Ledger) Grant(ctx context.Context, guildID, userID string, memberRoles []string, amount int64) (GrantResult, error) {
	if amount <= 0 {
		return GrantResult{}, nil
	}

	enabled, err := l.store.XPEnabled(ctx, guildID)
	if err != nil {
		return GrantResult{}, err
	}
	if !enabled {
		return GrantResult{}, nil
	}

	blocked, err := l.store.ListBlockedRoles(ctx, guildID)
	if err != nil {
		return GrantResult{}, err
	}
	if holdsAny(memberRoles, blocked) {
		return GrantResult{}, nil
	}

	newXP, err := l.store.IncrementXP(ctx, guildID, userID, amount)
	if err != nil {
		return GrantResult{}, err
	}

	result := GrantResult{
		Applied:  true,
		OldXP:    newXP - amount,
		NewXP:    newXP,
		OldLevel: Level(newXP - amount),
		NewLevel: Level(newXP),
	}
	if result.NewLevel > result.OldLevel {
		roleID, err := l.store.LevelRole(ctx, guildID, result.NewLevel)
		if err != nil {
			return GrantResult{}, err
		}
		// No binding for this level is fine: the level-up still happened.
		result.RoleID = roleID
	}
	return result, nil
}

// Progress treats an absent account as xp=0.
func (l *Ledger) Progress(ctx context.Context, guildID, userID string) (Progress, error) {
	xp, err := l.store.GetXP(ctx, guildID, userID)
	if err != nil {
		return Progress{}, err
	}
	level := Level(xp)
	return Progress{XP: xp, Level: level, NextLevelXP: NextLevelXP(level)}, nil
}

func (l *Ledger) Leaderboard(ctx context.Context, guildID string, limit int) ([]storage.XPAccount, error) {
	if limit <= 0 {
		limit = 10
	}
	return l.store.TopXPAccounts(ctx, guildID, limit)
}

// Modify is the administrative correction path. It shares the atomic
// upsert statements with automatic grants, so a concurrent message grant
// cannot be lost against it.
func (l *Ledger) Modify(ctx context.Context, guildID, userID string, delta int64, direction Direction) (int64, error) {
	if delta < 0 {
		return 0, fmt.Errorf("negative delta %d", delta)
	}

	var total int64
	var err error
	switch direction {
	case DirectionAdd:
		total, err = l.store.IncrementXP(ctx, guildID, userID, delta)
	case DirectionRemove:
		total, err = l.store.DecrementXP(ctx, guildID, userID, delta)
	default:
		return 0, fmt.Errorf("unknown direction %q", direction)
	}
	if err != nil {
		return 0, err
	}
	l.audit.Log(ctx, audit.LevelInfo, guildID, userID, audit.EventXPModify, fmt.Sprintf("direction=%s delta=%d total=%d", direction, delta, total))
	return total, nil
}

// ClearUser deletes the account row entirely rather than zeroing it.
func (l *Ledger) ClearUser(ctx context.Context, guildID, userID string) error {
	if err := l.store.DeleteXPAccount(ctx, guildID, userID); err != nil {
		return err
	}
	l.audit.Log(ctx, audit.LevelWarn, guildID, userID, audit.EventXPClear, "account deleted")
	return nil
}

// Nuke wipes the guild's whole XP entity family. The two-step confirmation
// lives at the interaction layer; the ledger trusts its caller and performs
// no re-authorization.
func (l *Ledger) Nuke(ctx context.Context, guildID string) error {
	if err := l.store.NukeGuildXP(ctx, guildID); err != nil {
		return err
	}
	l.audit.Log(ctx, audit.LevelCrit, guildID, "", audit.EventXPNuke, "all xp state removed")
	return nil
}

func (l *Ledger) SetEnabled(ctx context.Context, guildID string, enabled bool) error {
	if err := l.store.SetXPEnabled(ctx, guildID, enabled); err != nil {
		return err
	}
	event := audit.EventXPEnable
	if !enabled {
		event = audit.EventXPDisable
	}
	l.audit.Log(ctx, audit.LevelInfo, guildID, "", event, "")
	return nil
}

func (l *Ledger) SetLevelRole(ctx context.Context, guildID string, level int, roleID string) error {
	if level <= 0 {
		return fmt.Errorf("level must be positive, got %d", level)
	}
	if err := l.store.SetLevelRole(ctx, guildID, level, roleID); err != nil {
		return err
	}
	l.audit.Log(ctx, audit.LevelInfo, guildID, "", audit.EventLevelRoleSet, fmt.Sprintf("level=%d role=%s", level, roleID))
	return nil
}

func (l *Ledger) BlockRole(ctx context.Context, guildID, roleID string) error {
	return l.store.AddBlockedRole(ctx, guildID, roleID)
}

func (l *Ledger) UnblockRole(ctx context.Context, guildID, roleID string) error {
	return l.store.RemoveBlockedRole(ctx, guildID, roleID)
}

func holdsAny(memberRoles, blocked []string) bool {
	if len(blocked) == 0 || len(memberRoles) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(blocked))
	for _, id := range blocked {
		set[id] = struct{}{}
	}
	for _, id := range memberRoles {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
