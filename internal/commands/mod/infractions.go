// Package mod - /mod infractions and /mod clearinfractions
package mod

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

const (
	recentInfractions = 10
	embedFieldLimit   = 1024
)

// createInfractionsCommand creates the /mod infractions subcommand
func createInfractionsCommand() *discord.Command {
	return discord.NewCommand(
		"infractions",
		"Muestra las advertencias de un usuario",
		"mod",
		infractionsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a consultar (por defecto tú)",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		InGuild()
}

// infractionsEmbed renders the infractions view of user. It returns nil when
// the user has no warnings.
func infractionsEmbed(user, requester *discordgo.User, summary models.WarningSummary, now time.Time) *discordgo.MessageEmbed {
	if summary.Total == 0 {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title: "Infracciones - " + user.String(),
		Color: 0xFF6B6B,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: user.AvatarURL(""),
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Últimas 24 horas", Value: fmt.Sprint(summary.LastDay), Inline: true},
			{Name: "Última semana", Value: fmt.Sprint(summary.LastWeek), Inline: true},
			{Name: "Total", Value: fmt.Sprint(summary.Total), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Solicitado por " + requester.String()},
		Timestamp: now.Format(time.RFC3339),
	}

	lines := make([]string, 0, len(summary.Recent))
	for i, w := range summary.Recent {
		lines = append(lines, fmt.Sprintf("**%d.** %s\n*%s por <@%s>*", i+1, w.Reason, w.Time().Format("02/01/2006"), w.Moderator))
	}
	value := strings.Join(lines, "\n\n")
	if len(value) > embedFieldLimit {
		value = strings.ToValidUTF8(value[:embedFieldLimit-3], "") + "..."
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("Advertencias recientes (%d)", len(summary.Recent)),
		Value: value,
	})
	return embed
}

// infractionsHandler handles the /mod infractions command
func infractionsHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		user = ctx.User()
	}

	list, err := ctx.Client.Store.Warnings(ctx.Context(), ctx.Interaction.GuildID, user.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	embed := infractionsEmbed(user, ctx.User(), models.SummarizeWarnings(list, now, recentInfractions), now)
	if embed == nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("✅ **%s** no tiene advertencias registradas.", user.String()))
	}
	return ctx.ReplyEmbed(embed)
}

// createClearInfractionsCommand creates the /mod clearinfractions subcommand
func createClearInfractionsCommand() *discord.Command {
	return discord.NewCommand(
		"clearinfractions",
		"Elimina todas las advertencias de un usuario",
		"mod",
		clearInfractionsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a limpiar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		InGuild()
}

// clearInfractionsHandler handles the /mod clearinfractions command
func clearInfractionsHandler(ctx *discord.CommandContext) error {
	cfg, err := enabledConfig(ctx, "clearinfractions", nil)
	if err != nil {
		return err
	}

	user, err := userOption(ctx)
	if err != nil {
		return err
	}

	removed, err := ctx.Client.Store.ClearWarnings(ctx.Context(), ctx.Interaction.GuildID, user.ID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ctx.ReplyEphemeral(fmt.Sprintf("✅ **%s** no tiene advertencias que eliminar.", user.String()))
	}

	execute(ctx, audit(cfg, fmt.Sprintf(
		"🧹 **Infracciones eliminadas:** %s (%s)\n**Advertencias previas:** %d\n**Eliminadas por:** %s\n**Fecha:** %s",
		user.String(), user.ID, removed, ctx.User().String(), stamp(time.Now()),
	)))

	return ctx.Reply(fmt.Sprintf("🧹 Se eliminaron %d advertencia(s) de **%s**.", removed, user.String()))
}
