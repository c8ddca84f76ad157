package welcome

import (
	"context"
	"strings"

	"guildhall/internal/storage"
)

const (
	defaultWelcome = "Welcome to the server, {user}!"
	defaultGoodbye = "{user} has left the server."
)

type Module struct {
	store *storage.Store
}

func New(store *storage.Store) *Module {
	return &Module{store: store}
}

// Greeting resolves the welcome channel and rendered text for a joining
// member. ok=false when the guild has not configured a welcome channel.
func (m *Module) Greeting(ctx context.Context, guildID, username string) (string, string, bool, error) {
	settings, found, err := m.store.WelcomeSettingsFor(ctx, guildID)
	if err != nil || !found || settings.WelcomeChannel == "" {
		return "", "", false, err
	}
	text := settings.WelcomeText
	if text == "" {
		text = defaultWelcome
	}
	return settings.WelcomeChannel, render(text, username), true, nil
}

func (m *Module) Farewell(ctx context.Context, guildID, username string) (string, string, bool, error) {
	settings, found, err := m.store.WelcomeSettingsFor(ctx, guildID)
	if err != nil || !found || settings.GoodbyeChannel == "" {
		return "", "", false, err
	}
	text := settings.GoodbyeText
	if text == "" {
		text = defaultGoodbye
	}
	return settings.GoodbyeChannel, render(text, username), true, nil
}

func (m *Module) SetWelcome(ctx context.Context, guildID, channelID, text string) error {
	settings, _, err := m.store.WelcomeSettingsFor(ctx, guildID)
	if err != nil {
		return err
	}
	settings.GuildID = guildID
	settings.WelcomeChannel = channelID
	settings.WelcomeText = text
	return m.store.UpsertWelcomeSettings(ctx, settings)
}

func (m *Module) SetGoodbye(ctx context.Context, guildID, channelID, text string) error {
	settings, _, err := m.store.WelcomeSettingsFor(ctx, guildID)
	if err != nil {
		return err
	}
	settings.GuildID = guildID
	settings.GoodbyeChannel = channelID
	settings.GoodbyeText = text
	return m.store.UpsertWelcomeSettings(ctx, settings)
}

func render(template, username string) string {
	return strings.ReplaceAll(template, "{user}", username)
}
