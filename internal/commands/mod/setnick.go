// Package mod - /mod setnick command
package mod

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

const maxNickname = 32

// createSetNickCommand creates the /mod setnick subcommand
func createSetNickCommand() *discord.Command {
	return discord.NewCommand(
		"setnick",
		"Cambia o restablece el apodo de un usuario",
		"mod",
		setNickHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "apodo",
			Description: "Nuevo apodo (vacío lo restablece)",
			Required:    false,
			MaxLength:   maxNickname,
		},
	).WithUserPermissions(discordgo.PermissionManageNicknames).
		WithBotPermissions(discordgo.PermissionManageNicknames).
		InGuild()
}

func orNone(s string) string {
	if s == "" {
		return "Ninguno"
	}
	return s
}

// setNickHandler handles the /mod setnick command
func setNickHandler(ctx *discord.CommandContext) error {
	cfg, err := enabledConfig(ctx, "setnick", func(m models.ModerationConfig) bool { return m.NicknameEnabled })
	if err != nil {
		return err
	}

	user, member, err := moderatedMember(ctx)
	if err != nil {
		return err
	}

	nick := ctx.GetStringOption("apodo")
	if utf8.RuneCountInString(nick) > maxNickname {
		return ctx.ReplyEphemeral("❌ El apodo no puede superar los 32 caracteres.")
	}

	if err := ctx.Session.GuildMemberNickname(ctx.Interaction.GuildID, user.ID, nick); err != nil {
		return errors.Platform("set nickname", err)
	}

	execute(ctx, audit(cfg, fmt.Sprintf(
		"📝 **Apodo cambiado:** %s (%s)\n**Anterior:** %s\n**Nuevo:** %s\n**Por:** %s\n**Fecha:** %s",
		user.String(), user.ID, orNone(member.Nick), orNone(nick), ctx.User().String(), stamp(time.Now()),
	)))

	if nick == "" {
		return ctx.Reply(fmt.Sprintf("📝 Se restableció el apodo de **%s**.", user.String()))
	}
	return ctx.Reply(fmt.Sprintf("📝 El apodo de **%s** ahora es \"%s\".", user.String(), nick))
}
