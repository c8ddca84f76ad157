package bot

import (
	"fmt"
	"strings"
	"time"

	"guildhall/internal/interactions"
	"guildhall/internal/leveling"
	"guildhall/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	progressBarWidth    = 10
	transcriptMaxLines  = 15
	leaderboardMaxLines = 25
)

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) respondError(session *discordgo.Session, interaction *discordgo.InteractionCreate, title string) {
	b.respondEmbed(session, interaction, b.commandEmbed(title, "Something went wrong, try again.", b.cfg.Notifications.EmbedColors.Error, nil), true)
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func (b *Bot) rankEmbed(userID string, progress leveling.Progress) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Level", Value: fmt.Sprintf("%d", progress.Level), Inline: true},
		{Name: "XP", Value: fmt.Sprintf("%d / %d", progress.XP, progress.NextLevelXP), Inline: true},
		{Name: "Progress", Value: progressBar(progress.XP, progress.Level), Inline: false},
	}
	return b.commandEmbed("Rank", "<@"+userID+">", b.cfg.Notifications.EmbedColors.Action, fields)
}

func (b *Bot) leaderboardEmbed(entries []storage.XPAccount) *discordgo.MessageEmbed {
	if len(entries) == 0 {
		return b.commandEmbed("Leaderboard", "Nobody has earned XP yet.", b.cfg.Notifications.EmbedColors.Warning, nil)
	}
	if len(entries) > leaderboardMaxLines {
		entries = entries[:leaderboardMaxLines]
	}

	var sb strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&sb, "**%d.** <@%s> — level %d (%d XP)\n", i+1, entry.UserID, leveling.Level(entry.XP), entry.XP)
	}
	return b.commandEmbed("Leaderboard", sb.String(), b.cfg.Notifications.EmbedColors.Action, nil)
}

func (b *Bot) transcriptEmbed(messages []storage.TicketMessage) *discordgo.MessageEmbed {
	if len(messages) == 0 {
		return b.commandEmbed("Transcript", "No mirrored messages for this channel.", b.cfg.Notifications.EmbedColors.Warning, nil)
	}

	start := 0
	if len(messages) > transcriptMaxLines {
		start = len(messages) - transcriptMaxLines
	}
	var sb strings.Builder
	for _, msg := range messages[start:] {
		line := msg.Content
		if len(line) > 80 {
			line = line[:80] + "…"
		}
		fmt.Fprintf(&sb, "`%s` **%s**: %s\n", msg.CreatedAt.Format("15:04"), msg.AuthorUsername, line)
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Messages", Value: fmt.Sprintf("%d", len(messages)), Inline: true},
	}
	return b.commandEmbed("Transcript", sb.String(), b.cfg.Notifications.EmbedColors.Action, fields)
}

func (b *Bot) levelUpEmbed(level int) *discordgo.MessageEmbed {
	return b.commandEmbed("Level up!", fmt.Sprintf("You reached level %d. Keep it going!", level), b.cfg.Notifications.EmbedColors.Action, nil)
}

func (b *Bot) auditEmbed(entry storage.AuditLog) *discordgo.MessageEmbed {
	color := b.cfg.Notifications.EmbedColors.Warning
	if entry.Level == "CRIT" {
		color = b.cfg.Notifications.EmbedColors.Error
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Event", Value: entry.Event, Inline: true},
		{Name: "Level", Value: entry.Level, Inline: true},
	}
	if entry.UserID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "User", Value: "<@" + entry.UserID + ">", Inline: true})
	}
	description := entry.Details
	if description == "" {
		description = "—"
	}
	return b.commandEmbed("Audit", description, color, fields)
}

// progressBar renders position within the current level.
func progressBar(xp int64, level int) string {
	base := int64(level) * leveling.PointsPerLevel
	span := leveling.NextLevelXP(level) - base
	into := xp - base
	filled := int(into * progressBarWidth / span)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", progressBarWidth-filled)
}

// rolePanelRows lays self-role buttons out five per row, capped at the
// component limit of five rows.
func rolePanelRows(roles []storage.SelfRole) []discordgo.MessageComponent {
	if len(roles) > 25 {
		roles = roles[:25]
	}

	var rows []discordgo.MessageComponent
	for start := 0; start < len(roles); start += 5 {
		end := start + 5
		if end > len(roles) {
			end = len(roles)
		}
		var buttons []discordgo.MessageComponent
		for _, role := range roles[start:end] {
			label := role.Label
			if label == "" {
				label = role.RoleID
			}
			buttons = append(buttons, discordgo.Button{
				Label:    label,
				Style:    discordgo.SecondaryButton,
				CustomID: interactions.Ref{Kind: interactions.KindRoleToggle, Arg: role.RoleID}.CustomID(),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}
