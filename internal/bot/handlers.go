package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"guildhall/internal/interactions"
	"guildhall/internal/leveling"
	"guildhall/internal/modules/audit"
	"guildhall/internal/modules/confessions"
	"guildhall/internal/tickets"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// nukePhrase must be typed verbatim into the confirmation modal before a
// guild's XP state is wiped.
const nukePhrase = "CONFIRM"

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx := context.Background()

	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, session, interaction)
	case discordgo.InteractionMessageComponent:
		data := interaction.MessageComponentData()
		ref, ok := interactions.Parse(data.CustomID)
		if !ok {
			return
		}
		b.handleComponent(ctx, session, interaction, ref)
	case discordgo.InteractionModalSubmit:
		data := interaction.ModalSubmitData()
		ref, ok := interactions.Parse(data.CustomID)
		if !ok {
			return
		}
		b.handleModal(ctx, session, interaction, ref, data)
	}
}

func (b *Bot) handleCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		b.respondEmbed(session, interaction, b.commandEmbed("Guildhall", "This command only works inside a server.", b.cfg.Notifications.EmbedColors.Error, nil), true)
		return
	}

	data := interaction.ApplicationCommandData()
	switch data.Name {
	case "xp":
		b.handleXPCommand(ctx, session, interaction, data.Options)
	case "rank":
		b.handleRank(ctx, session, interaction, data.Options)
	case "leaderboard":
		b.handleLeaderboard(ctx, session, interaction, data.Options)
	case "ticket":
		b.handleTicketCommand(ctx, session, interaction, data.Options)
	case "welcome":
		b.handleWelcomeCommand(ctx, session, interaction, data.Options)
	case "confess":
		b.handleConfess(session, interaction)
	case "confessions":
		b.handleConfessionsSetup(ctx, session, interaction, data.Options)
	case "roles":
		b.handleRolesCommand(ctx, session, interaction, data.Options)
	case "auditlog":
		b.handleAuditLog(ctx, session, interaction, data.Options)
	case "report":
		b.handleReport(ctx, session, interaction, data.Options)
	}
}

func (b *Bot) handleXPCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := commandOptions(options)
	action := ""
	if opt, ok := opts["action"]; ok {
		action = opt.StringValue()
	}

	var userID string
	if opt, ok := opts["user"]; ok {
		if user := opt.UserValue(session); user != nil {
			userID = user.ID
		}
	}
	var amount int64
	if opt, ok := opts["amount"]; ok {
		amount = opt.IntValue()
	}
	var level int
	if opt, ok := opts["level"]; ok {
		level = int(opt.IntValue())
	}
	var roleID string
	if opt, ok := opts["role"]; ok {
		if role := opt.RoleValue(session, interaction.GuildID); role != nil {
			roleID = role.ID
		}
	}

	switch action {
	case "enable", "disable":
		enabled := action == "enable"
		if err := b.ledger.SetEnabled(ctx, interaction.GuildID, enabled); err != nil {
			b.respondError(session, interaction, "XP")
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("XP", fmt.Sprintf("XP accrual is now %sd.", action), b.cfg.Notifications.EmbedColors.Action, nil), true)
	case "add", "remove":
		if userID == "" || amount <= 0 {
			b.respondEmbed(session, interaction, b.commandEmbed("XP", "A user and a positive amount are required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
			return
		}
		direction := directionFor(action)
		total, err := b.ledger.Modify(ctx, interaction.GuildID, userID, amount, direction)
		if err != nil {
			b.respondError(session, interaction, "XP")
			return
		}
		fields := []*discordgo.MessageEmbedField{
			{Name: "User", Value: "<@" + userID + ">", Inline: true},
			{Name: "Total XP", Value: fmt.Sprintf("%d", total), Inline: true},
		}
		b.respondEmbed(session, interaction, b.commandEmbed("XP", "Balance updated.", b.cfg.Notifications.EmbedColors.Action, fields), true)
	case "clear":
		if userID == "" {
			b.respondEmbed(session, interaction, b.commandEmbed("XP", "A user is required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
			return
		}
		if err := b.ledger.ClearUser(ctx, interaction.GuildID, userID); err != nil {
			b.respondError(session, interaction, "XP")
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("XP", "Account cleared for <@"+userID+">.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
	case "levelrole":
		if level <= 0 {
			b.respondEmbed(session, interaction, b.commandEmbed("XP", "A positive level is required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
			return
		}
		// An empty role clears the binding for that level.
		if err := b.ledger.SetLevelRole(ctx, interaction.GuildID, level, roleID); err != nil {
			b.respondError(session, interaction, "XP")
			return
		}
		value := "cleared"
		if roleID != "" {
			value = "<@&" + roleID + ">"
		}
		fields := []*discordgo.MessageEmbedField{{Name: fmt.Sprintf("Level %d", level), Value: value, Inline: true}}
		b.respondEmbed(session, interaction, b.commandEmbed("XP", "Level role updated.", b.cfg.Notifications.EmbedColors.Action, fields), true)
	case "blockrole", "unblockrole":
		if roleID == "" {
			b.respondEmbed(session, interaction, b.commandEmbed("XP", "A role is required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
			return
		}
		var err error
		if action == "blockrole" {
			err = b.ledger.BlockRole(ctx, interaction.GuildID, roleID)
		} else {
			err = b.ledger.UnblockRole(ctx, interaction.GuildID, roleID)
		}
		if err != nil {
			b.respondError(session, interaction, "XP")
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("XP", "Blocked roles updated.", b.cfg.Notifications.EmbedColors.Action, nil), true)
	case "nuke":
		b.armNuke(session, interaction)
	default:
		b.respondEmbed(session, interaction, b.commandEmbed("XP", "Unknown action.", b.cfg.Notifications.EmbedColors.Error, nil), true)
	}
}

func (b *Bot) handleRank(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	userID := interactionUserID(interaction)
	if opt, ok := commandOptions(options)["user"]; ok {
		if user := opt.UserValue(session); user != nil {
			userID = user.ID
		}
	}
	if userID == "" {
		b.respondError(session, interaction, "Rank")
		return
	}

	progress, err := b.ledger.Progress(ctx, interaction.GuildID, userID)
	if err != nil {
		b.respondError(session, interaction, "Rank")
		return
	}
	b.respondEmbed(session, interaction, b.rankEmbed(userID, progress), true)
}

func (b *Bot) handleLeaderboard(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	limit := 0
	if opt, ok := commandOptions(options)["limit"]; ok {
		limit = int(opt.IntValue())
	}

	entries, err := b.ledger.Leaderboard(ctx, interaction.GuildID, limit)
	if err != nil {
		b.respondError(session, interaction, "Leaderboard")
		return
	}
	b.respondEmbed(session, interaction, b.leaderboardEmbed(entries), false)
}

func (b *Bot) handleTicketCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := commandOptions(options)
	action := ""
	if opt, ok := opts["action"]; ok {
		action = opt.StringValue()
	}
	var roleID string
	if opt, ok := opts["role"]; ok {
		if role := opt.RoleValue(session, interaction.GuildID); role != nil {
			roleID = role.ID
		}
	}

	switch action {
	case "panel":
		if err := b.tickets.EnsureSettings(ctx, interaction.GuildID); err != nil {
			b.respondError(session, interaction, "Tickets")
			return
		}
		_, err := session.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
			Embed: b.commandEmbed("Support", "Need help? Open a private ticket and a staff member will join you.", b.cfg.Notifications.EmbedColors.Action, nil),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Open ticket",
						Style:    discordgo.PrimaryButton,
						CustomID: interactions.Ref{Kind: interactions.KindTicketOpen}.CustomID(),
					},
				}},
			},
		})
		if err != nil {
			b.respondError(session, interaction, "Tickets")
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Tickets", "Panel posted.", b.cfg.Notifications.EmbedColors.Action, nil), true)
	case "close":
		err := b.tickets.Close(ctx, interaction.ChannelID)
		if errors.Is(err, tickets.ErrNoTicket) {
			b.respondEmbed(session, interaction, b.commandEmbed("Tickets", "This channel has no open ticket.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
			return
		}
		if err != nil {
			b.respondError(session, interaction, "Tickets")
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Tickets", "Ticket closed. The channel is now staff-only.", b.cfg.Notifications.EmbedColors.Action, nil), false)
	case "pingrole":
		if err := b.tickets.SetPingRole(ctx, interaction.GuildID, roleID); err != nil {
			b.respondError(session, interaction, "Tickets")
			return
		}
		value := "cleared"
		if roleID != "" {
			value = "<@&" + roleID + ">"
		}
		fields := []*discordgo.MessageEmbedField{{Name: "Ping role", Value: value, Inline: true}}
		b.respondEmbed(session, interaction, b.commandEmbed("Tickets", "Settings updated.", b.cfg.Notifications.EmbedColors.Action, fields), true)
	case "access-add", "access-remove":
		if roleID == "" {
			b.respondEmbed(session, interaction, b.commandEmbed("Tickets", "A role is required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
			return
		}
		var err error
		if action == "access-add" {
			err = b.tickets.AddAccessRole(ctx, interaction.GuildID, roleID)
		} else {
			err = b.tickets.RemoveAccessRole(ctx, interaction.GuildID, roleID)
		}
		if err != nil {
			b.respondError(session, interaction, "Tickets")
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Tickets", "Access roles updated.", b.cfg.Notifications.EmbedColors.Action, nil), true)
	case "transcript":
		messages, err := b.tickets.Transcript(ctx, interaction.ChannelID)
		if err != nil {
			b.respondError(session, interaction, "Tickets")
			return
		}
		b.respondEmbed(session, interaction, b.transcriptEmbed(messages), true)
	default:
		b.respondEmbed(session, interaction, b.commandEmbed("Tickets", "Unknown action.", b.cfg.Notifications.EmbedColors.Error, nil), true)
	}
}

func (b *Bot) handleWelcomeCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := commandOptions(options)
	kind := ""
	if opt, ok := opts["kind"]; ok {
		kind = opt.StringValue()
	}
	var channelID string
	if opt, ok := opts["channel"]; ok {
		if channel := opt.ChannelValue(session); channel != nil {
			channelID = channel.ID
		}
	}
	message := ""
	if opt, ok := opts["message"]; ok {
		message = opt.StringValue()
	}
	if channelID == "" {
		b.respondEmbed(session, interaction, b.commandEmbed("Welcome", "A channel is required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
		return
	}

	var err error
	if kind == "goodbye" {
		err = b.welcome.SetGoodbye(ctx, interaction.GuildID, channelID, message)
	} else {
		err = b.welcome.SetWelcome(ctx, interaction.GuildID, channelID, message)
	}
	if err != nil {
		b.respondError(session, interaction, "Welcome")
		return
	}
	fields := []*discordgo.MessageEmbedField{{Name: "Channel", Value: "<#" + channelID + ">", Inline: true}}
	b.respondEmbed(session, interaction, b.commandEmbed("Welcome", "Settings updated.", b.cfg.Notifications.EmbedColors.Action, fields), true)
}

func (b *Bot) handleConfess(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: interactions.Ref{Kind: interactions.KindConfessSubmit}.CustomID(),
			Title:    "Anonymous confession",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "confession",
						Label:       "Your confession",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "No links. Posted without your name.",
						Required:    true,
						MaxLength:   2000,
					},
				}},
			},
		},
	})
	if err != nil {
		b.logger.Warn("confess modal failed", zap.Error(err))
	}
}

func (b *Bot) handleConfessionsSetup(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	var channelID string
	if opt, ok := commandOptions(options)["channel"]; ok {
		if channel := opt.ChannelValue(session); channel != nil {
			channelID = channel.ID
		}
	}
	if channelID == "" {
		b.respondEmbed(session, interaction, b.commandEmbed("Confessions", "A channel is required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
		return
	}
	if err := b.confess.SetChannel(ctx, interaction.GuildID, channelID); err != nil {
		b.respondError(session, interaction, "Confessions")
		return
	}
	fields := []*discordgo.MessageEmbedField{{Name: "Channel", Value: "<#" + channelID + ">", Inline: true}}
	b.respondEmbed(session, interaction, b.commandEmbed("Confessions", "Settings updated.", b.cfg.Notifications.EmbedColors.Action, fields), true)
}

func (b *Bot) handleRolesCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := commandOptions(options)
	action := ""
	if opt, ok := opts["action"]; ok {
		action = opt.StringValue()
	}
	var roleID, roleName string
	if opt, ok := opts["role"]; ok {
		if role := opt.RoleValue(session, interaction.GuildID); role != nil {
			roleID = role.ID
			roleName = role.Name
		}
	}
	label := ""
	if opt, ok := opts["label"]; ok {
		label = opt.StringValue()
	}
	if label == "" {
		label = roleName
	}

	switch action {
	case "add":
		if roleID == "" {
			b.respondEmbed(session, interaction, b.commandEmbed("Roles", "A role is required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
			return
		}
		if err := b.roles.Register(ctx, interaction.GuildID, roleID, label); err != nil {
			b.respondError(session, interaction, "Roles")
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Roles", "<@&"+roleID+"> is now self-assignable.", b.cfg.Notifications.EmbedColors.Action, nil), true)
	case "remove":
		if roleID == "" {
			b.respondEmbed(session, interaction, b.commandEmbed("Roles", "A role is required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
			return
		}
		if err := b.roles.Unregister(ctx, interaction.GuildID, roleID); err != nil {
			b.respondError(session, interaction, "Roles")
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Roles", "<@&"+roleID+"> removed from self-assignment.", b.cfg.Notifications.EmbedColors.Action, nil), true)
	case "panel":
		roles, err := b.roles.List(ctx, interaction.GuildID)
		if err != nil {
			b.respondError(session, interaction, "Roles")
			return
		}
		if len(roles) == 0 {
			b.respondEmbed(session, interaction, b.commandEmbed("Roles", "No self-assignable roles registered.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
			return
		}
		_, err = session.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
			Embed:      b.commandEmbed("Roles", "Click a button to toggle a role.", b.cfg.Notifications.EmbedColors.Action, nil),
			Components: rolePanelRows(roles),
		})
		if err != nil {
			b.respondError(session, interaction, "Roles")
			return
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Roles", "Panel posted.", b.cfg.Notifications.EmbedColors.Action, nil), true)
	default:
		b.respondEmbed(session, interaction, b.commandEmbed("Roles", "Unknown action.", b.cfg.Notifications.EmbedColors.Error, nil), true)
	}
}

func (b *Bot) handleAuditLog(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	var channelID string
	if opt, ok := commandOptions(options)["channel"]; ok {
		if channel := opt.ChannelValue(session); channel != nil {
			channelID = channel.ID
		}
	}
	if channelID == "" {
		b.respondEmbed(session, interaction, b.commandEmbed("Audit", "A channel is required.", b.cfg.Notifications.EmbedColors.Error, nil), true)
		return
	}
	if err := b.store.SetAuditChannel(ctx, interaction.GuildID, channelID); err != nil {
		b.respondError(session, interaction, "Audit")
		return
	}
	fields := []*discordgo.MessageEmbedField{{Name: "Channel", Value: "<#" + channelID + ">", Inline: true}}
	b.respondEmbed(session, interaction, b.commandEmbed("Audit", "Notifications will be posted there.", b.cfg.Notifications.EmbedColors.Action, fields), true)
}

func (b *Bot) handleReport(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	period := "day"
	if opt, ok := commandOptions(options)["period"]; ok {
		period = opt.StringValue()
	}
	start := time.Now().Add(-24 * time.Hour)
	if period == "week" {
		start = time.Now().Add(-7 * 24 * time.Hour)
	}

	report, err := b.analytics.Report(ctx, interaction.GuildID, start)
	if err != nil {
		b.respondError(session, interaction, "Report")
		return
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Total", Value: fmt.Sprintf("%d", report.Total), Inline: true},
		{Name: "Info", Value: fmt.Sprintf("%d", report.ByLevel[audit.LevelInfo]), Inline: true},
		{Name: "Warn", Value: fmt.Sprintf("%d", report.ByLevel[audit.LevelWarn]), Inline: true},
		{Name: "Crit", Value: fmt.Sprintf("%d", report.ByLevel[audit.LevelCrit]), Inline: true},
		{Name: "Level-ups", Value: fmt.Sprintf("%d", report.ByEvent[audit.EventLevelUp]), Inline: true},
		{Name: "Tickets opened", Value: fmt.Sprintf("%d", report.ByEvent[audit.EventTicketOpen]), Inline: true},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Report", "Activity for the last "+period+".", b.cfg.Notifications.EmbedColors.Action, fields), true)
}

func (b *Bot) handleComponent(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, ref interactions.Ref) {
	switch ref.Kind {
	case interactions.KindTicketOpen:
		b.openTicketFromPanel(ctx, session, interaction)
	case interactions.KindRoleToggle:
		b.toggleRole(ctx, session, interaction, ref.Arg)
	case interactions.KindNukeArm:
		b.presentNukeModal(session, interaction)
	}
}

func (b *Bot) handleModal(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, ref interactions.Ref, data discordgo.ModalSubmitInteractionData) {
	switch ref.Kind {
	case interactions.KindNukeConfirm:
		b.confirmNuke(ctx, session, interaction, modalInput(data))
	case interactions.KindConfessSubmit:
		b.submitConfession(ctx, session, interaction, modalInput(data))
	}
}

func (b *Bot) openTicketFromPanel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	userID := interactionUserID(interaction)
	if userID == "" || interaction.GuildID == "" {
		return
	}

	result, err := b.tickets.Open(ctx, interaction.GuildID, userID)
	if errors.Is(err, tickets.ErrNoSettings) {
		b.respondEmbed(session, interaction, b.commandEmbed("Tickets", "Tickets are not set up here yet.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
		return
	}
	if err != nil {
		b.logger.Warn("ticket open failed", zap.String("guild_id", interaction.GuildID), zap.String("user_id", userID), zap.Error(err))
		b.respondError(session, interaction, "Tickets")
		return
	}

	content := "<@" + userID + ">"
	if result.PingRoleID != "" {
		content += " <@&" + result.PingRoleID + ">"
	}
	_, _ = session.ChannelMessageSendComplex(result.ChannelID, &discordgo.MessageSend{
		Content: content,
		Embed:   b.commandEmbed("Support ticket", "Describe your issue and a staff member will be with you shortly.", b.cfg.Notifications.EmbedColors.Action, nil),
	})
	b.respondEmbed(session, interaction, b.commandEmbed("Tickets", "Your ticket is open: <#"+result.ChannelID+">", b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func (b *Bot) toggleRole(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, roleID string) {
	userID := interactionUserID(interaction)
	if userID == "" || interaction.GuildID == "" || roleID == "" {
		return
	}

	allowed, err := b.roles.Toggleable(ctx, interaction.GuildID, roleID)
	if err != nil || !allowed {
		b.respondEmbed(session, interaction, b.commandEmbed("Roles", "That role is not self-assignable.", b.cfg.Notifications.EmbedColors.Error, nil), true)
		return
	}

	has := false
	if interaction.Member != nil {
		for _, id := range interaction.Member.Roles {
			if id == roleID {
				has = true
				break
			}
		}
	}

	if has {
		err = session.GuildMemberRoleRemove(interaction.GuildID, userID, roleID)
	} else {
		err = session.GuildMemberRoleAdd(interaction.GuildID, userID, roleID)
	}
	if err != nil {
		b.respondError(session, interaction, "Roles")
		return
	}
	verb := "added"
	if has {
		verb = "removed"
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Roles", "<@&"+roleID+"> "+verb+".", b.cfg.Notifications.EmbedColors.Action, nil), true)
}

// armNuke answers /xp nuke with a warning and a danger button. The pending
// entry expires after its TTL, after which the button leads nowhere.
func (b *Bot) armNuke(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	userID := interactionUserID(interaction)
	if userID == "" {
		return
	}
	b.confirms.Arm(nukeKey(interaction.GuildID, userID), "armed")

	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				b.commandEmbed("XP nuke",
					"This permanently deletes every XP account, level role binding and blocked role for this server. There is no undo.",
					b.cfg.Notifications.EmbedColors.Warning, nil),
			},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "I understand, continue",
						Style:    discordgo.DangerButton,
						CustomID: interactions.Ref{Kind: interactions.KindNukeArm}.CustomID(),
					},
				}},
			},
		},
	})
	if err != nil {
		b.logger.Warn("nuke arm failed", zap.Error(err))
	}
}

func (b *Bot) presentNukeModal(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: interactions.Ref{Kind: interactions.KindNukeConfirm}.CustomID(),
			Title:    "Confirm XP nuke",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "confirmation",
						Label:       "Type " + nukePhrase + " to proceed",
						Style:       discordgo.TextInputShort,
						Placeholder: nukePhrase,
						Required:    true,
						MaxLength:   len(nukePhrase),
					},
				}},
			},
		},
	})
	if err != nil {
		b.logger.Warn("nuke modal failed", zap.Error(err))
	}
}

func (b *Bot) confirmNuke(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, input string) {
	userID := interactionUserID(interaction)
	if userID == "" || interaction.GuildID == "" {
		return
	}

	if _, ok := b.confirms.Consume(nukeKey(interaction.GuildID, userID)); !ok {
		b.respondEmbed(session, interaction, b.commandEmbed("XP nuke", "Confirmation expired. Run /xp nuke again.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
		return
	}
	if strings.TrimSpace(input) != nukePhrase {
		b.respondEmbed(session, interaction, b.commandEmbed("XP nuke", "Aborted: the confirmation phrase did not match.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
		return
	}

	if err := b.ledger.Nuke(ctx, interaction.GuildID); err != nil {
		b.respondError(session, interaction, "XP nuke")
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("XP nuke", "All XP state for this server has been removed.", b.cfg.Notifications.EmbedColors.Error, nil), true)
}

func (b *Bot) submitConfession(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, content string) {
	userID := interactionUserID(interaction)
	if userID == "" || interaction.GuildID == "" {
		return
	}

	channelID, err := b.confess.Submit(ctx, interaction.GuildID, userID, content)
	switch {
	case errors.Is(err, confessions.ErrEmpty):
		b.respondEmbed(session, interaction, b.commandEmbed("Confessions", "Your confession was empty.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
		return
	case errors.Is(err, confessions.ErrNotConfigured):
		b.respondEmbed(session, interaction, b.commandEmbed("Confessions", "Confessions are not set up here.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
		return
	case errors.Is(err, confessions.ErrContainsLink):
		b.respondEmbed(session, interaction, b.commandEmbed("Confessions", "Links are not allowed in confessions.", b.cfg.Notifications.EmbedColors.Error, nil), true)
		return
	case errors.Is(err, confessions.ErrRateLimited):
		b.respondEmbed(session, interaction, b.commandEmbed("Confessions", "Slow down, you are posting too many confessions.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
		return
	case err != nil:
		b.respondError(session, interaction, "Confessions")
		return
	}

	_, err = session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       "Anonymous confession",
		Description: content,
		Color:       b.cfg.Notifications.EmbedColors.Action,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
	if err != nil {
		b.respondError(session, interaction, "Confessions")
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Confessions", "Posted anonymously.", b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func nukeKey(guildID, userID string) string {
	return guildID + "|" + userID
}

func directionFor(action string) leveling.Direction {
	if action == "remove" {
		return leveling.DirectionRemove
	}
	return leveling.DirectionAdd
}

func commandOptions(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		byName[opt.Name] = opt
	}
	return byName
}

func interactionUserID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func modalInput(data discordgo.ModalSubmitInteractionData) string {
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				return input.Value
			}
		}
	}
	return ""
}
