package utils

import (
	"fmt"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		statusHandler,
	)
}

// statusHandler handles the /utils status command
func statusHandler(ctx *discord.CommandContext) error {
	dbStatus, backend := "⚪ | Sin almacenamiento", "-"
	if store := ctx.Client.Store; store != nil {
		label, latency, ok := database.Status(ctx.Context(), store.Backend())
		backend = store.Backend().Name()
		dbStatus = label
		if ok {
			dbStatus = fmt.Sprintf("%s (%dms)", label, latency.Milliseconds())
		}
	}

	return ctx.Reply(fmt.Sprintf(
		"📊 **Estado del Bot**\n"+
			"• Bot: 🟢 Online\n"+
			"• Almacenamiento (%s): %s\n"+
			"• Servidores: %d\n"+
			"• Configuraciones guardadas: %d",
		backend,
		dbStatus,
		ctx.Client.GuildCount(),
		storedGuilds(ctx.Client),
	))
}

func storedGuilds(c *discord.ExtendedClient) int {
	if c.Store == nil {
		return 0
	}
	return c.Store.Len()
}
