// Package mod provides moderation commands organized as subcommands under /mod.
// Every subcommand is gated by its switch in the guild's moderation config and
// audited to the log channel when the guild logs actions.
package mod

import (
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// Commands returns every /mod subcommand.
func Commands() []*discord.Command {
	return []*discord.Command{
		createBanCommand(),
		createUnbanCommand(),
		createKickCommand(),
		createTimeoutCommand(),
		createWarnCommand(),
		createInfractionsCommand(),
		createClearInfractionsCommand(),
		createClearCommand(),
		createSlowmodeCommand(),
		createLockCommand(),
		createUnlockCommand(),
		createAddRoleCommand(),
		createRemoveRoleCommand(),
		createSetNickCommand(),
	}
}

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient) {
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		Commands()...,
	)

	client.CommandHandler.AddGlobalCommand(modGroup)
}
