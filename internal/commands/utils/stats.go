package utils

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/config"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/sysinfo"
)

// createStatsCommand creates the /utils stats subcommand
func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Muestra estadísticas del bot",
		"utils",
		statsHandler,
	)
}

// statsEmbed renders the bot statistics.
func statsEmbed(s sysinfo.Snapshot, guilds, members int, uptime time.Duration, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "📊 Estadísticas del Bot",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🤖 Versión del Bot", Value: config.Version, Inline: true},
			{Name: "🐹 Versión de Go", Value: s.GoVersion, Inline: true},
			{Name: "📚 Versión de DiscordGo", Value: discordgo.VERSION, Inline: true},
			{Name: "🖥 Memoria del host", Value: s.Memory(), Inline: true},
			{Name: "⚙️ CPU", Value: fmt.Sprintf("%.1f%% (%d CPUs)", s.CPUPercent, s.CPUs), Inline: true},
			{Name: "🧠 Proceso", Value: fmt.Sprintf("%.2f MB / %d goroutines", s.HeapMB, s.Goroutines), Inline: true},
			{Name: "💻 Sistema", Value: s.OS, Inline: true},
			{Name: "⏱ Uptime", Value: sysinfo.FormatDuration(uptime), Inline: true},
			{Name: "🏠 Guilds", Value: fmt.Sprint(guilds), Inline: true},
			{Name: "👥 Miembros", Value: fmt.Sprint(members), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "💫 - Developed by PancyStudios"},
		Timestamp: now.Format(time.RFC3339),
	}
}

// statsHandler handles the /utils stats command
func statsHandler(ctx *discord.CommandContext) error {
	// cpu.Percent blocks briefly on some platforms.
	if err := ctx.Defer(); err != nil {
		return err
	}

	members := 0
	guilds := ctx.Client.Guilds()
	for _, g := range guilds {
		members += g.MemberCount
	}

	return ctx.EditReplyEmbed(statsEmbed(sysinfo.Collect(), len(guilds), members, ctx.Client.Uptime(), time.Now()))
}
