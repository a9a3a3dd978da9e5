// Package mod - /mod warn command
package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/effects"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

const escalationTimeout = 24 * time.Hour

// createWarnCommand creates the /mod warn subcommand
func createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario",
		"mod",
		warnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a advertir",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la advertencia",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		InGuild()
}

// escalation returns the automatic action for a member who now has count
// warnings, or nil when the guild does not escalate yet.
func escalation(mod models.ModerationConfig, user *discordgo.User, count int, channelID string) []effects.Effect {
	if !mod.AutoWarnActions || count < mod.MaxWarnings {
		return nil
	}

	switch mod.WarnAction {
	case models.WarnActionTimeout:
		reason := fmt.Sprintf("Aislamiento automático: %d advertencias alcanzadas", mod.MaxWarnings)
		return []effects.Effect{
			effects.TimeoutMember(user.ID, escalationTimeout, reason),
			effects.SendMessage(channelID, fmt.Sprintf("🔇 **%s** ha sido aislado automáticamente durante 24 horas (%d advertencias).", user.String(), mod.MaxWarnings)).Then(),
		}
	case models.WarnActionKick:
		reason := fmt.Sprintf("Expulsión automática: %d advertencias alcanzadas", mod.MaxWarnings)
		return []effects.Effect{
			effects.KickMember(user.ID, reason),
			effects.SendMessage(channelID, fmt.Sprintf("👢 **%s** ha sido expulsado automáticamente (%d advertencias).", user.String(), mod.MaxWarnings)).Then(),
		}
	default:
		return nil
	}
}

// warnEffects are the follow-ups of a recorded warning: DM, audit and escalation.
func warnEffects(cfg *models.GuildConfig, guild string, user, moderator *discordgo.User, w models.Warning, count int, channelID string) []effects.Effect {
	list := []effects.Effect{
		effects.NotifyUser(user.ID, fmt.Sprintf(
			"⚠️ **Has recibido una advertencia en %s**\n**Razón:** %s\n**Advertencias totales:** %d\n**Moderador:** %s",
			guild, w.Reason, count, moderator.String(),
		)),
	}
	list = append(list, audit(cfg, fmt.Sprintf(
		"⚠️ **Usuario advertido:** %s (%s)\n**Razón:** %s\n**Advertencias totales:** %d\n**Advertido por:** %s\n**Fecha:** %s",
		user.String(), user.ID, w.Reason, count, moderator.String(), stamp(w.Time()),
	))...)
	return append(list, escalation(cfg.Moderation, user, count, channelID)...)
}

// warnHandler handles the /mod warn command
func warnHandler(ctx *discord.CommandContext) error {
	cfg, err := enabledConfig(ctx, "warn", func(m models.ModerationConfig) bool { return m.WarnEnabled })
	if err != nil {
		return err
	}

	user, _, err := moderatedMember(ctx)
	if err != nil {
		return err
	}

	moderator := ctx.User()
	w := models.NewWarning(reasonOr(ctx.GetStringOption("razon")), moderator.ID, time.Now())

	w, count, err := ctx.Client.Store.AddWarning(ctx.Context(), ctx.Interaction.GuildID, user.ID, w)
	if err != nil {
		return err
	}

	if err := ctx.Reply(fmt.Sprintf("⚠️ **%s** ha sido advertido.\n**Razón:** %s\n**Advertencias totales:** %d\n**Moderador:** %s",
		user.String(), w.Reason, count, moderator.String(),
	)); err != nil {
		return err
	}

	execute(ctx, warnEffects(cfg, guildName(ctx), user, moderator, w, count, ctx.Interaction.ChannelID))
	return nil
}
