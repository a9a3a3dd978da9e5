// Package mod - /mod ban and /mod unban
package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

func banEnabled(m models.ModerationConfig) bool { return m.BanEnabled }

// createBanCommand creates the /mod ban subcommand
func createBanCommand() *discord.Command {
	return discord.NewCommand(
		"ban",
		"Banea a un usuario del servidor",
		"mod",
		banHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a banear",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del ban",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "dias",
			Description: "Días de mensajes a eliminar (0-7)",
			Required:    false,
			MinValue:    ptr(0.0),
			MaxValue:    7,
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		InGuild()
}

// banHandler handles the /mod ban command. Users that already left can be banned too.
func banHandler(ctx *discord.CommandContext) error {
	cfg, err := enabledConfig(ctx, "ban", banEnabled)
	if err != nil {
		return err
	}

	user, err := userOption(ctx)
	if err != nil {
		return err
	}
	if member, err := fetchMember(ctx, user.ID); err == nil {
		if member.User == nil {
			member.User = user
		}
		if err := checkTarget(ctx.Member(), member, ctx.Guild()); err != nil {
			return err
		}
	}

	reason := reasonOr(ctx.GetStringOption("razon"))
	days := int(ctx.GetIntOption("dias"))

	err = ctx.Session.GuildBanCreateWithReason(ctx.Interaction.GuildID, user.ID, reason, days)
	if err != nil {
		return errors.Platform("ban", err)
	}

	execute(ctx, audit(cfg, fmt.Sprintf(
		"🔨 **Usuario baneado:** %s (%s)\n**Razón:** %s\n**Baneado por:** %s\n**Fecha:** %s",
		user.String(), user.ID, reason, ctx.User().String(), stamp(time.Now()),
	)))

	return ctx.Reply(fmt.Sprintf("🔨 **%s** ha sido baneado.\n**Razón:** %s", user.String(), reason))
}

// createUnbanCommand creates the /mod unban subcommand
func createUnbanCommand() *discord.Command {
	return discord.NewCommand(
		"unban",
		"Retira el ban de un usuario",
		"mod",
		unbanHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "ID del usuario baneado",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del unban",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		InGuild()
}

// unbanHandler handles the /mod unban command
func unbanHandler(ctx *discord.CommandContext) error {
	cfg, err := enabledConfig(ctx, "unban", banEnabled)
	if err != nil {
		return err
	}

	userID := ctx.GetStringOption("id")
	reason := reasonOr(ctx.GetStringOption("razon"))
	guildID := ctx.Interaction.GuildID

	ban, err := ctx.Session.GuildBan(guildID, userID)
	if err != nil || ban == nil || ban.User == nil {
		return errors.NotFound(fmt.Sprintf("el usuario %s no está baneado", userID))
	}

	if err := ctx.Session.GuildBanDelete(guildID, userID, discordgo.WithAuditLogReason(reason)); err != nil {
		return errors.Platform("unban", err)
	}

	execute(ctx, audit(cfg, fmt.Sprintf(
		"✅ **Usuario desbaneado:** %s (%s)\n**Razón:** %s\n**Desbaneado por:** %s\n**Fecha:** %s",
		ban.User.String(), userID, reason, ctx.User().String(), stamp(time.Now()),
	)))

	return ctx.Reply(fmt.Sprintf("✅ **%s** ha sido desbaneado.\n**Razón:** %s", ban.User.String(), reason))
}
