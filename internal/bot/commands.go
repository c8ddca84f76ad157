package bot

import "github.com/bwmarrin/discordgo"

var (
	manageGuild    = int64(discordgo.PermissionManageServer)
	manageChannels = int64(discordgo.PermissionManageChannels)
	manageRoles    = int64(discordgo.PermissionManageRoles)
)

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "xp",
			Description:              "Manage the XP system",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "what to do",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "enable", Value: "enable"},
						{Name: "disable", Value: "disable"},
						{Name: "add", Value: "add"},
						{Name: "remove", Value: "remove"},
						{Name: "clear", Value: "clear"},
						{Name: "levelrole", Value: "levelrole"},
						{Name: "blockrole", Value: "blockrole"},
						{Name: "unblockrole", Value: "unblockrole"},
						{Name: "nuke", Value: "nuke"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "target user for add, remove, clear",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "points for add or remove",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "level",
					Description: "level for levelrole",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "role for levelrole, blockrole, unblockrole",
					Required:    false,
				},
			},
		},
		{
			Name:        "rank",
			Description: "Show XP and level",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "defaults to you",
					Required:    false,
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Top members by XP",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "how many entries (default 10)",
					Required:    false,
				},
			},
		},
		{
			Name:                     "ticket",
			Description:              "Manage support tickets",
			DefaultMemberPermissions: &manageChannels,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "what to do",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "panel", Value: "panel"},
						{Name: "close", Value: "close"},
						{Name: "pingrole", Value: "pingrole"},
						{Name: "access-add", Value: "access-add"},
						{Name: "access-remove", Value: "access-remove"},
						{Name: "transcript", Value: "transcript"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "role for pingrole and access actions",
					Required:    false,
				},
			},
		},
		{
			Name:                     "welcome",
			Description:              "Configure join and leave messages",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "welcome or goodbye",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "welcome", Value: "welcome"},
						{Name: "goodbye", Value: "goodbye"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "channel to post in",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "template, {user} is replaced with the member name",
					Required:    false,
				},
			},
		},
		{
			Name:        "confess",
			Description: "Post an anonymous confession",
		},
		{
			Name:                     "confessions",
			Description:              "Set the confession channel",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "where confessions are posted",
					Required:    true,
				},
			},
		},
		{
			Name:                     "roles",
			Description:              "Manage self-assignable roles",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "what to do",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "add", Value: "add"},
						{Name: "remove", Value: "remove"},
						{Name: "panel", Value: "panel"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "role for add or remove",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "label",
					Description: "button label, defaults to the role name",
					Required:    false,
				},
			},
		},
		{
			Name:                     "auditlog",
			Description:              "Set the audit notification channel",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "admin-only channel",
					Required:    true,
				},
			},
		},
		{
			Name:                     "report",
			Description:              "Activity report",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "period",
					Description: "day or week",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "day", Value: "day"},
						{Name: "week", Value: "week"},
					},
				},
			},
		},
	}

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}

	for _, guild := range b.session.State.Guilds {
		if guild == nil {
			continue
		}
		guildID := guild.ID
		guildCmds, err := b.session.ApplicationCommands(appID, guildID)
		if err != nil {
			continue
		}
		for _, cmd := range guildCmds {
			if _, ok := desired[cmd.Name]; ok {
				continue
			}
			_ = b.session.ApplicationCommandDelete(appID, guildID, cmd.ID)
		}
	}
	return nil
}
