// Package events provides event handlers for member events
package events

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/internal/pipeline"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

// RegisterMemberEvents registers all member-related event handlers
func RegisterMemberEvents(client *discord.ExtendedClient, pipe *pipeline.Pipeline) {
	client.EventHandler.OnGuildMemberAdd(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.Member == nil || m.User == nil {
			return
		}
		logger.Info(fmt.Sprintf("👋 Nuevo miembro: %s en servidor %s", m.User.String(), m.GuildID), "Member")

		ctx, cancel := eventContext()
		defer cancel()
		report(pipe.HandleMemberJoin(ctx, memberEvent(cachedGuild(s, m.GuildID), m.GuildID, m.Member)), "bienvenida", "Member")
	})

	client.EventHandler.OnGuildMemberRemove(func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if m.Member == nil || m.User == nil {
			return
		}
		logger.Info(fmt.Sprintf("👋 Adiós: %s salió del servidor %s", m.User.String(), m.GuildID), "Member")

		ctx, cancel := eventContext()
		defer cancel()
		report(pipe.HandleMemberLeave(ctx, memberEvent(cachedGuild(s, m.GuildID), m.GuildID, m.Member)), "despedida", "Member")
	})
}

func cachedGuild(s *discordgo.Session, guildID string) *discordgo.Guild {
	if s.State == nil {
		return nil
	}
	g, err := s.State.Guild(guildID)
	if err != nil {
		return nil
	}
	return g
}

// memberEvent converts a gateway member into a pipeline event. guild may be nil.
func memberEvent(guild *discordgo.Guild, guildID string, m *discordgo.Member) pipeline.MemberEvent {
	ev := pipeline.MemberEvent{
		GuildID:   guildID,
		GuildName: guildID,
		UserID:    m.User.ID,
		Username:  m.User.Username,
		Tag:       m.User.String(),
		AvatarURL: m.User.AvatarURL("256"),
		RoleIDs:   m.Roles,
		JoinedAt:  m.JoinedAt,
	}
	if guild != nil {
		ev.GuildName = guild.Name
		ev.MemberCount = guild.MemberCount
	}
	return ev
}
