package dev

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

func createTokenCommand(tokens TokenIssuer) *discord.Command {
	return discord.NewCommand(
		"token",
		"Genera un token para la API del dashboard",
		"dev",
		func(ctx *discord.CommandContext) error { return tokenHandler(ctx, tokens) },
	).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "servidores",
		Description: "IDs separados por comas (vacío = todos)",
		Required:    false,
	})
}

// tokenGuilds splits a comma separated list of guild IDs.
func tokenGuilds(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func tokenHandler(ctx *discord.CommandContext, tokens TokenIssuer) error {
	if tokens == nil {
		return errors.FeatureDisabled("dashboard")
	}
	guilds := tokenGuilds(ctx.GetStringOption("servidores"))
	token, err := tokens.GenerateToken(ctx.User().ID, guilds...)
	if err != nil {
		return fmt.Errorf("signing dashboard token: %w", err)
	}

	scope := "todos los servidores"
	if len(guilds) > 0 {
		scope = strings.Join(guilds, ", ")
	}
	logger.Info(fmt.Sprintf("Token de dashboard emitido para %s (%s)", ctx.User().ID, scope), "Dev")
	return ctx.ReplyEphemeral(fmt.Sprintf("🔑 Token para %s:\n```%s```", scope, token))
}
