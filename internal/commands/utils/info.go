package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
)

// Maximum number of role mentions listed by /utils userinfo.
const maxListedRoles = 20

func userOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: "Usuario (por defecto tú)",
		Required:    false,
	}
}

func optionalUser(ctx *discord.CommandContext) *discordgo.User {
	if u := ctx.GetUserOption("usuario"); u != nil {
		return u
	}
	return ctx.User()
}

func createUserInfoCommand() *discord.Command {
	return discord.NewCommand(
		"userinfo",
		"Muestra información de un usuario",
		"utils",
		userInfoHandler,
	).WithOptions(userOption()).InGuild()
}

func createServerInfoCommand() *discord.Command {
	return discord.NewCommand(
		"serverinfo",
		"Muestra información del servidor",
		"utils",
		serverInfoHandler,
	).InGuild()
}

func createAvatarCommand() *discord.Command {
	return discord.NewCommand(
		"avatar",
		"Muestra el avatar de un usuario",
		"utils",
		avatarHandler,
	).WithOptions(userOption())
}

func discordTime(t time.Time) string {
	if t.IsZero() {
		return "Desconocido"
	}
	return fmt.Sprintf("<t:%d:F>", t.Unix())
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// userInfoEmbed renders a member. member may be nil when the user left the guild.
func userInfoEmbed(guild *discordgo.Guild, user *discordgo.User, member *discordgo.Member, warnings int) *discordgo.MessageEmbed {
	created, _ := discordgo.SnowflakeTimestamp(user.ID)

	embed := &discordgo.MessageEmbed{
		Title:     "Información de " + user.String(),
		Color:     0x5865F2,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Usuario", Value: fmt.Sprintf("%s (%s)", user.Mention(), user.String()), Inline: true},
			{Name: "ID", Value: user.ID, Inline: true},
			{Name: "Cuenta creada", Value: discordTime(created), Inline: true},
			{Name: "Advertencias", Value: fmt.Sprint(warnings), Inline: true},
			{Name: "Bot", Value: yesNo(user.Bot), Inline: true},
		},
	}
	if member == nil {
		return embed
	}

	nick := member.Nick
	if nick == "" {
		nick = "Ninguno"
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Apodo", Value: nick, Inline: true},
		&discordgo.MessageEmbedField{Name: "Se unió", Value: discordTime(member.JoinedAt), Inline: true},
	)

	roles := make([]string, 0, len(member.Roles))
	for _, id := range member.Roles {
		if len(roles) == maxListedRoles {
			roles = append(roles, fmt.Sprintf("y %d más", len(member.Roles)-maxListedRoles))
			break
		}
		roles = append(roles, "<@&"+id+">")
	}
	if len(roles) == 0 {
		roles = append(roles, "Ninguno")
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("Roles (%d)", len(member.Roles)),
		Value: strings.Join(roles, " "),
	})

	if guild != nil {
		perms := discord.GuildPermissions(guild, member)
		var key []string
		for _, p := range []struct {
			bit  int64
			name string
		}{
			{discordgo.PermissionAdministrator, "Administrador"},
			{discordgo.PermissionManageGuild, "Gestionar servidor"},
			{discordgo.PermissionBanMembers, "Banear"},
			{discordgo.PermissionKickMembers, "Expulsar"},
			{discordgo.PermissionModerateMembers, "Aislar"},
			{discordgo.PermissionManageMessages, "Gestionar mensajes"},
			{discordgo.PermissionManageRoles, "Gestionar roles"},
		} {
			if perms&p.bit != 0 {
				key = append(key, p.name)
			}
		}
		if len(key) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Permisos clave", Value: strings.Join(key, ", ")})
		}
	}
	return embed
}

func userInfoHandler(ctx *discord.CommandContext) error {
	user := optionalUser(ctx)
	guildID := ctx.Interaction.GuildID

	member, err := ctx.Session.State.Member(guildID, user.ID)
	if err != nil {
		member, _ = ctx.Session.GuildMember(guildID, user.ID)
	}

	warnings := 0
	if ctx.Client.Store != nil {
		list, err := ctx.Client.Store.Warnings(ctx.Context(), guildID, user.ID)
		if err != nil {
			return err
		}
		warnings = len(list)
	}

	return ctx.ReplyEmbed(userInfoEmbed(ctx.Guild(), user, member, warnings))
}

// serverInfoEmbed renders the guild from the state cache.
func serverInfoEmbed(g *discordgo.Guild) *discordgo.MessageEmbed {
	created, _ := discordgo.SnowflakeTimestamp(g.ID)

	var text, voice, categories int
	for _, ch := range g.Channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			text++
		case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
			voice++
		case discordgo.ChannelTypeGuildCategory:
			categories++
		}
	}

	return &discordgo.MessageEmbed{
		Title:     "Información de " + g.Name,
		Color:     0x5865F2,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: g.IconURL("256")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: g.ID, Inline: true},
			{Name: "Propietario", Value: "<@" + g.OwnerID + ">", Inline: true},
			{Name: "Creado", Value: discordTime(created), Inline: true},
			{Name: "Miembros", Value: fmt.Sprintf("👥 %d", g.MemberCount), Inline: true},
			{Name: "Canales", Value: fmt.Sprintf("💬 %d texto\n🔊 %d voz\n📁 %d categorías", text, voice, categories), Inline: true},
			{Name: "Roles", Value: fmt.Sprint(len(g.Roles)), Inline: true},
			{Name: "Nivel de mejoras", Value: fmt.Sprintf("Nivel %d", g.PremiumTier), Inline: true},
			{Name: "Mejoras", Value: fmt.Sprint(g.PremiumSubscriptionCount), Inline: true},
			{Name: "Verificación", Value: verificationLabel(g.VerificationLevel), Inline: true},
		},
	}
}

func verificationLabel(v discordgo.VerificationLevel) string {
	switch v {
	case discordgo.VerificationLevelNone:
		return "Ninguna"
	case discordgo.VerificationLevelLow:
		return "Baja"
	case discordgo.VerificationLevelMedium:
		return "Media"
	case discordgo.VerificationLevelHigh:
		return "Alta"
	case discordgo.VerificationLevelVeryHigh:
		return "Muy alta"
	default:
		return "Desconocida"
	}
}

func serverInfoHandler(ctx *discord.CommandContext) error {
	guild := ctx.Guild()
	if guild == nil {
		return errors.NotFound("servidor " + ctx.Interaction.GuildID)
	}
	return ctx.ReplyEmbed(serverInfoEmbed(guild))
}

func avatarHandler(ctx *discord.CommandContext) error {
	user := optionalUser(ctx)
	url := user.AvatarURL("1024")
	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Avatar de " + user.String(),
		Color:       0x5865F2,
		Description: fmt.Sprintf("[Abrir en el navegador](%s)", url),
		Image:       &discordgo.MessageEmbedImage{URL: url},
	})
}
