// Package mod - /mod kick command
package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// createKickCommand creates the /mod kick subcommand
func createKickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Expulsa a un usuario del servidor",
		"mod",
		kickHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a expulsar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la expulsión",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionKickMembers).
		WithBotPermissions(discordgo.PermissionKickMembers).
		InGuild()
}

// kickHandler handles the /mod kick command
func kickHandler(ctx *discord.CommandContext) error {
	cfg, err := enabledConfig(ctx, "kick", func(m models.ModerationConfig) bool { return m.KickEnabled })
	if err != nil {
		return err
	}

	user, _, err := moderatedMember(ctx)
	if err != nil {
		return err
	}

	reason := reasonOr(ctx.GetStringOption("razon"))

	err = ctx.Session.GuildMemberDeleteWithReason(ctx.Interaction.GuildID, user.ID, reason)
	if err != nil {
		return errors.Platform("kick", err)
	}

	execute(ctx, audit(cfg, fmt.Sprintf(
		"👢 **Usuario expulsado:** %s (%s)\n**Razón:** %s\n**Expulsado por:** %s\n**Fecha:** %s",
		user.String(), user.ID, reason, ctx.User().String(), stamp(time.Now()),
	)))

	return ctx.Reply(fmt.Sprintf("👢 **%s** ha sido expulsado.\n**Razón:** %s", user.String(), reason))
}
