// Package mod - /mod timeout command
package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

const (
	defaultTimeoutMinutes = 10
	// Discord caps timeouts at 28 days.
	maxTimeoutMinutes = 28 * 24 * 60
)

// createTimeoutCommand creates the /mod timeout subcommand
func createTimeoutCommand() *discord.Command {
	return discord.NewCommand(
		"timeout",
		"Aísla temporalmente a un usuario",
		"mod",
		timeoutHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a aislar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "minutos",
			Description: "Duración en minutos (por defecto 10)",
			Required:    false,
			MinValue:    ptr(1.0),
			MaxValue:    maxTimeoutMinutes,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del aislamiento",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers).
		InGuild()
}

// timeoutMinutes clamps the requested duration.
func timeoutMinutes(requested int64) int64 {
	switch {
	case requested <= 0:
		return defaultTimeoutMinutes
	case requested > maxTimeoutMinutes:
		return maxTimeoutMinutes
	default:
		return requested
	}
}

// timeoutHandler handles the /mod timeout command
func timeoutHandler(ctx *discord.CommandContext) error {
	cfg, err := enabledConfig(ctx, "timeout", func(m models.ModerationConfig) bool { return m.TimeoutEnabled })
	if err != nil {
		return err
	}

	user, _, err := moderatedMember(ctx)
	if err != nil {
		return err
	}

	minutes := timeoutMinutes(ctx.GetIntOption("minutos"))
	reason := reasonOr(ctx.GetStringOption("razon"))
	until := time.Now().Add(time.Duration(minutes) * time.Minute)

	err = ctx.Session.GuildMemberTimeout(ctx.Interaction.GuildID, user.ID, &until, discordgo.WithAuditLogReason(reason))
	if err != nil {
		return errors.Platform("timeout", err)
	}

	execute(ctx, audit(cfg, fmt.Sprintf(
		"🔇 **Usuario aislado:** %s (%s)\n**Razón:** %s\n**Duración:** %d minutos\n**Aislado por:** %s\n**Fecha:** %s",
		user.String(), user.ID, reason, minutes, ctx.User().String(), stamp(time.Now()),
	)))

	return ctx.Reply(fmt.Sprintf("🔇 **%s** ha sido aislado durante %d minutos.\n**Razón:** %s", user.String(), minutes, reason))
}
