// Package levels provides the /rank and /leaderboard commands.
package levels

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/leveling"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// RegisterLevelingCommands registers /rank and /leaderboard.
func RegisterLevelingCommands(client *discord.ExtendedClient) {
	client.CommandHandler.RegisterCommand(createRankCommand())
	client.CommandHandler.RegisterCommand(createLeaderboardCommand())
}

func createRankCommand() *discord.Command {
	return discord.NewCommand(
		"rank",
		"Muestra el nivel y la posición de un usuario",
		"leveling",
		rankHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a consultar (por defecto tú)",
			Required:    false,
		},
	).InGuild()
}

func createLeaderboardCommand() *discord.Command {
	return discord.NewCommand(
		"leaderboard",
		"Muestra los 10 miembros con más XP",
		"leveling",
		leaderboardHandler,
	).InGuild()
}

func levelingConfig(ctx *discord.CommandContext) (*models.GuildConfig, error) {
	cfg, err := ctx.GuildConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Features.Leveling {
		return nil, errors.FeatureDisabled("leveling")
	}
	return cfg, nil
}

// rankEmbed renders the rank card of user, or nil when the user has no XP yet.
func rankEmbed(cfg *models.GuildConfig, user, requester *discordgo.User, now time.Time) *discordgo.MessageEmbed {
	data, ok := cfg.Leveling.Users[user.ID]
	if !ok {
		return nil
	}
	rank, _ := leveling.Rank(cfg.Leveling.Users, user.ID)
	p := leveling.ProgressOf(data.XP)

	return &discordgo.MessageEmbed{
		Title:     "Rango de " + user.String(),
		Color:     0x5865F2,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Nivel", Value: fmt.Sprint(p.Level), Inline: true},
			{Name: "XP", Value: fmt.Sprint(data.XP), Inline: true},
			{Name: "Posición", Value: fmt.Sprintf("#%d", rank), Inline: true},
			{Name: "Progreso al siguiente nivel", Value: fmt.Sprintf("%d/%d (faltan %d XP)", p.Current, p.Span, p.Needed)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Solicitado por " + requester.String()},
		Timestamp: now.Format(time.RFC3339),
	}
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

// leaderboardEmbed renders the top members. Names are mentions so no user
// lookups are needed.
func leaderboardEmbed(guildName string, entries []leveling.Entry, now time.Time) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s <@%s>\nNivel %d • %d XP", medal(e.Rank), e.UserID, e.Level, e.XP))
	}
	return &discordgo.MessageEmbed{
		Title:       "🏆 Clasificación de " + guildName,
		Description: fmt.Sprintf("Los %d miembros más activos", len(entries)),
		Color:       0xFFD700,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Posiciones", Value: strings.Join(lines, "\n\n")},
		},
		Timestamp: now.Format(time.RFC3339),
	}
}

func rankHandler(ctx *discord.CommandContext) error {
	cfg, err := levelingConfig(ctx)
	if err != nil {
		return err
	}

	user := ctx.GetUserOption("usuario")
	if user == nil {
		user = ctx.User()
	}

	embed := rankEmbed(cfg, user, ctx.User(), time.Now())
	if embed == nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("**%s** aún no tiene XP. ¡Envía mensajes para empezar a ganarla!", user.String()))
	}
	return ctx.ReplyEmbed(embed)
}

func leaderboardHandler(ctx *discord.CommandContext) error {
	cfg, err := levelingConfig(ctx)
	if err != nil {
		return err
	}

	entries := leveling.Leaderboard(cfg.Leveling.Users, leveling.DefaultLeaderboardSize)
	if len(entries) == 0 {
		return ctx.ReplyEphemeral("No hay datos de niveles en este servidor.")
	}

	name := ctx.Interaction.GuildID
	if g := ctx.Guild(); g != nil {
		name = g.Name
	}
	return ctx.ReplyEmbed(leaderboardEmbed(name, entries, time.Now()))
}
