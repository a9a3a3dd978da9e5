// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (utils, mod, levels, settings).
package commands

import (
	"github.com/PancyStudios/PancyGuardGo/internal/commands/levels"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/mod"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/settings"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/utils"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient) {
	// /utils ping|help|stats|status|userinfo|serverinfo|avatar
	utils.RegisterUtilsCommands(client)

	// /mod ban|unban|kick|timeout|warn|...
	mod.RegisterModCommands(client)

	// /rank, /leaderboard
	levels.RegisterLevelingCommands(client)

	// /config ...
	settings.RegisterConfigCommands(client)
}
