package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

// helpText lists the registered commands by category. Keys of cmds are the
// dotted names used for dispatch ("mod.ban", "config.badword.add").
func helpText(cmds map[string]*discord.Command) string {
	byCategory := map[string][]string{}
	for name, cmd := range cmds {
		if cmd.IsDev {
			continue
		}
		line := fmt.Sprintf("• `/%s` - %s", strings.ReplaceAll(name, ".", " "), cmd.Description)
		byCategory[cmd.Category] = append(byCategory[cmd.Category], line)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("📖 **Ayuda de PancyGuard**\n")
	for _, c := range categories {
		lines := byCategory[c]
		sort.Strings(lines)
		fmt.Fprintf(&b, "\n**%s**\n%s\n", c, strings.Join(lines, "\n"))
	}
	return b.String()
}

// helpHandler handles the /utils help command
func helpHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEphemeral(helpText(ctx.Client.Commands.All()))
}
