// Package mod - /mod addrole and /mod removerole
package mod

import (
	"fmt"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

func roleOptions(verb string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario al que " + verb + " el rol",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol",
			Description: "Rol",
			Required:    true,
		},
	}
}

// checkRole verifies that both the actor and the bot sit above role.
func checkRole(ctx *discord.CommandContext, role *discordgo.Role) error {
	if role.Managed || role.ID == ctx.Interaction.GuildID {
		return errors.PermissionDenied("el rol " + role.Name + " no se puede asignar")
	}
	if !discord.CanManageRole(ctx.Session, ctx.Interaction.GuildID, role.ID) {
		return errors.PermissionDenied("el bot no puede gestionar el rol " + role.Name)
	}
	if guild := ctx.Guild(); guild != nil && !discord.CanAssignRole(guild, ctx.Member(), role.ID) {
		return errors.PermissionDenied("el rol " + role.Name + " es igual o superior a tu rol más alto")
	}
	return nil
}

func roleEnabled(m models.ModerationConfig) bool { return m.RoleEnabled }

func changeRole(ctx *discord.CommandContext, add bool) error {
	name := "removerole"
	if add {
		name = "addrole"
	}
	cfg, err := enabledConfig(ctx, name, roleEnabled)
	if err != nil {
		return err
	}

	user, err := userOption(ctx)
	if err != nil {
		return err
	}
	member, err := fetchMember(ctx, user.ID)
	if err != nil {
		return err
	}
	role := ctx.GetRoleOption("rol")
	if role == nil {
		return errors.NotFound("rol")
	}
	if err := checkRole(ctx, role); err != nil {
		return err
	}

	has := slices.Contains(member.Roles, role.ID)
	guildID := ctx.Interaction.GuildID
	reason := discordgo.WithAuditLogReason("Por " + ctx.User().String())

	var icon, log, reply string
	if add {
		if has {
			return ctx.ReplyEphemeral(fmt.Sprintf("❌ **%s** ya tiene el rol %s.", user.String(), role.Name))
		}
		err = ctx.Session.GuildMemberRoleAdd(guildID, user.ID, role.ID, reason)
		icon, log, reply = "➕", "Rol añadido", fmt.Sprintf("✅ Se añadió el rol %s a **%s**.", role.Name, user.String())
	} else {
		if !has {
			return ctx.ReplyEphemeral(fmt.Sprintf("❌ **%s** no tiene el rol %s.", user.String(), role.Name))
		}
		err = ctx.Session.GuildMemberRoleRemove(guildID, user.ID, role.ID, reason)
		icon, log, reply = "➖", "Rol retirado", fmt.Sprintf("✅ Se retiró el rol %s a **%s**.", role.Name, user.String())
	}
	if err != nil {
		return errors.Platform(name, err)
	}

	execute(ctx, audit(cfg, fmt.Sprintf(
		"%s **%s:** <@&%s> a %s (%s)\n**Por:** %s\n**Fecha:** %s",
		icon, log, role.ID, user.String(), user.ID, ctx.User().String(), stamp(time.Now()),
	)))
	return ctx.Reply(reply)
}

// createAddRoleCommand creates the /mod addrole subcommand
func createAddRoleCommand() *discord.Command {
	return discord.NewCommand(
		"addrole",
		"Añade un rol a un usuario",
		"mod",
		func(ctx *discord.CommandContext) error { return changeRole(ctx, true) },
	).WithOptions(roleOptions("añadir")...).
		WithUserPermissions(discordgo.PermissionManageRoles).
		WithBotPermissions(discordgo.PermissionManageRoles).
		InGuild()
}

// createRemoveRoleCommand creates the /mod removerole subcommand
func createRemoveRoleCommand() *discord.Command {
	return discord.NewCommand(
		"removerole",
		"Retira un rol a un usuario",
		"mod",
		func(ctx *discord.CommandContext) error { return changeRole(ctx, false) },
	).WithOptions(roleOptions("retirar")...).
		WithUserPermissions(discordgo.PermissionManageRoles).
		WithBotPermissions(discordgo.PermissionManageRoles).
		InGuild()
}
