// Package events provides event handlers for guild (server) events
package events

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

// GuildCreate is also sent for every guild at startup; only recent joins are new.
const joinWindow = 10 * time.Second

// RegisterGuildEvents registers all guild-related event handlers
func RegisterGuildEvents(client *discord.ExtendedClient, opts Options) {
	client.EventHandler.OnGuildCreate(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		onGuildCreate(client, s, g)
	})
	client.EventHandler.OnGuildDelete(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		onGuildDelete(client, g, opts)
	})
}

func isNewJoin(joinedAt, now time.Time) bool {
	return !joinedAt.Before(now.Add(-joinWindow))
}

func joinEmbed(now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "¡Gracias por agregarme! 🛡️",
		Description: "Hola, soy **PancyGuard**. Usa `/utils help` para ver todos mis comandos.",
		Color:       0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔧 Moderación", Value: "Usa `/mod` para moderar", Inline: true},
			{Name: "⚙️ Configuración", Value: "Usa `/config show` para empezar", Inline: true},
			{Name: "⭐ Niveles", Value: "Actívalos con `/config feature`", Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "¡Disfruta de PancyGuard!"},
		Timestamp: now.Format(time.RFC3339),
	}
}

// onGuildCreate is called when the bot joins a server
func onGuildCreate(client *discord.ExtendedClient, s *discordgo.Session, g *discordgo.GuildCreate) {
	now := time.Now()
	if !isNewJoin(g.JoinedAt, now) {
		return
	}

	logger.Info(fmt.Sprintf("➕ Bot agregado a servidor: %s (ID: %s)", g.Name, g.ID), "Guild")
	logger.Debug(fmt.Sprintf("   Miembros: %d | Canales: %d", g.MemberCount, len(g.Channels)), "Guild")

	if client.Store != nil {
		ctx, cancel := eventContext()
		_, err := client.Store.Get(ctx, g.ID)
		cancel()
		report(err, "creando configuración de "+g.ID, "Guild")
	}

	if g.SystemChannelID != "" {
		if _, err := s.ChannelMessageSendEmbed(g.SystemChannelID, joinEmbed(now)); err != nil {
			logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Guild")
		}
	}
}

// onGuildDelete is called when the bot is removed from a server or the server
// becomes unavailable.
func onGuildDelete(client *discord.ExtendedClient, g *discordgo.GuildDelete, opts Options) {
	if g.Unavailable {
		logger.Warn(fmt.Sprintf("Servidor %s no disponible", g.ID), "Guild")
		return
	}
	logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", g.ID), "Guild")

	if !opts.PurgeOnGuildLeave || client.Store == nil {
		return
	}
	ctx, cancel := eventContext()
	defer cancel()
	if err := client.Store.Delete(ctx, g.ID); err != nil {
		report(err, "eliminando configuración de "+g.ID, "Guild")
		return
	}
	logger.Info(fmt.Sprintf("🗑️ Configuración de %s eliminada", g.ID), "Guild")
}
