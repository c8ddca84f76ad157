package roleselect

import (
	"context"

	"guildhall/internal/storage"
)

type Module struct {
	store *storage.Store
}

func New(store *storage.Store) *Module {
	return &Module{store: store}
}

func (m *Module) Register(ctx context.Context, guildID, roleID, label string) error {
	return m.store.AddSelfRole(ctx, storage.SelfRole{GuildID: guildID, RoleID: roleID, Label: label})
}

func (m *Module) Unregister(ctx context.Context, guildID, roleID string) error {
	return m.store.RemoveSelfRole(ctx, guildID, roleID)
}

func (m *Module) List(ctx context.Context, guildID string) ([]storage.SelfRole, error) {
	return m.store.ListSelfRoles(ctx, guildID)
}

// Toggleable guards the button handler: only registered self-roles may be
// granted or removed through the panel.
func (m *Module) Toggleable(ctx context.Context, guildID, roleID string) (bool, error) {
	return m.store.IsSelfRole(ctx, guildID, roleID)
}
