// Package dev holds the maintenance commands registered only in the development guild.
package dev

import (
	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// TokenIssuer signs dashboard tokens. *web.TokenManager satisfies it.
type TokenIssuer interface {
	GenerateToken(subject string, guilds ...string) (string, error)
}

// Register registers all dev commands as /dev subcommands (only in dev guild)
func Register(client *discord.ExtendedClient, tokens TokenIssuer) {
	devGroup := client.CommandHandler.BuildCommandGroup(
		"dev",
		"Comandos de desarrollo",
		devOnly(createInspectCommand()),
		devOnly(createPurgeCommand()),
		devOnly(createGuildsCommand()),
		devOnly(createTokenCommand(tokens)),
	)

	// Register the command group as dev-only command
	client.CommandHandler.AddDevCommand(devGroup)
}

func devOnly(cmd *discord.Command) *discord.Command {
	return cmd.AsDev().InGuild().WithUserPermissions(discordgo.PermissionAdministrator)
}

func guildIDOption(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "servidor",
		Description: desc,
		Required:    true,
		MinLength:   ptr(17),
		MaxLength:   20,
	}
}

func ptr[T any](v T) *T { return &v }
