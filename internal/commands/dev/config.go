package dev

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Discord rejects message content over 2000 characters.
const maxContent = 2000

func createInspectCommand() *discord.Command {
	return discord.NewCommand(
		"inspect",
		"Muestra la configuración guardada de un servidor",
		"dev",
		inspectHandler,
	).WithOptions(guildIDOption("ID del servidor"))
}

func createPurgeCommand() *discord.Command {
	return discord.NewCommand(
		"purge",
		"Elimina la configuración guardada de un servidor",
		"dev",
		purgeHandler,
	).WithOptions(guildIDOption("ID del servidor"))
}

func createGuildsCommand() *discord.Command {
	return discord.NewCommand(
		"guilds",
		"Lista los servidores con configuración guardada",
		"dev",
		guildsHandler,
	)
}

func inspectHandler(ctx *discord.CommandContext) error {
	guildID := strings.TrimSpace(ctx.GetStringOption("servidor"))
	cfg := ctx.Client.Store.Peek(guildID)
	if cfg == nil {
		return errors.NotFound("configuración de " + guildID)
	}
	content, err := configBlock(cfg)
	if err != nil {
		return err
	}
	return ctx.ReplyEphemeral(content)
}

// configBlock renders cfg as an indented JSON code block that fits in a message.
func configBlock(cfg *models.GuildConfig) (string, error) {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	const open, closing, cut = "```json\n", "\n```", "\n…"
	body := string(raw)
	if limit := maxContent - len(open) - len(closing) - len(cut); len(body) > limit {
		body = strings.ToValidUTF8(body[:limit], "") + cut
	}
	return open + body + closing, nil
}

func purgeHandler(ctx *discord.CommandContext) error {
	guildID := strings.TrimSpace(ctx.GetStringOption("servidor"))
	if !ctx.Client.Store.Exists(guildID) {
		return errors.NotFound("configuración de " + guildID)
	}
	if err := ctx.Client.Store.Delete(ctx.Context(), guildID); err != nil {
		return err
	}
	logger.Warn(fmt.Sprintf("Configuración de %s eliminada por %s", guildID, ctx.User().ID), "Dev")
	return ctx.ReplyEphemeral(fmt.Sprintf("🗑️ Configuración de `%s` eliminada.", guildID))
}

func guildsHandler(ctx *discord.CommandContext) error {
	embed := guildsEmbed(ctx.Client.Store.All(), ctx.Client.Guilds())
	return ctx.ReplyEphemeralEmbed(embed)
}

// guildsEmbed lists stored configurations, marking the ones the bot is no longer in.
func guildsEmbed(configs map[string]*models.GuildConfig, joined []*discordgo.Guild) *discordgo.MessageEmbed {
	names := make(map[string]string, len(joined))
	for _, g := range joined {
		names[g.ID] = g.Name
	}

	ids := make([]string, 0, len(configs))
	for id := range configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	orphans := 0
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			orphans++
			name = "⚠️ sin acceso"
		}
		line := fmt.Sprintf("`%s` %s\n", id, name)
		if b.Len()+len(line) > 4000 {
			b.WriteString("…")
			break
		}
		b.WriteString(line)
	}
	if len(ids) == 0 {
		b.WriteString("No hay configuraciones guardadas.")
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🗂️ Configuraciones guardadas (%d)", len(ids)),
		Description: b.String(),
		Color:       0x5865F2,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d sin acceso", orphans)},
	}
}
