// Package events provides event handlers for message events
package events

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/internal/pipeline"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// RegisterMessageEvents registers all message-related event handlers
func RegisterMessageEvents(client *discord.ExtendedClient, pipe *pipeline.Pipeline) {
	client.EventHandler.OnMessageCreate(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot || m.GuildID == "" {
			return
		}

		guild := cachedGuild(s, m.GuildID)
		perms := discord.MemberPermissions(s, m.Author.ID, m.ChannelID, guild, m.Member)

		guildName := m.GuildID
		if guild != nil {
			guildName = guild.Name
		}
		botID := ""
		if s.State != nil && s.State.User != nil {
			botID = s.State.User.ID
		}

		ctx, cancel := eventContext()
		defer cancel()
		_, err := pipe.HandleMessage(ctx, messageEvent(m.Message, guildName, perms, botID, time.Now()))
		report(err, "mensaje "+m.ID, "Message")
	})
}

// messageEvent converts a gateway message into a pipeline event.
func messageEvent(m *discordgo.Message, guildName string, perms int64, botID string, now time.Time) pipeline.MessageEvent {
	ev := pipeline.MessageEvent{
		GuildID:      m.GuildID,
		GuildName:    guildName,
		ChannelID:    m.ChannelID,
		MessageID:    m.ID,
		Content:      m.Content,
		AuthorExempt: discord.IsModerator(perms),
		BotID:        botID,
		Now:          now,
	}
	if m.Author != nil {
		ev.AuthorID = m.Author.ID
		ev.AuthorTag = m.Author.String()
		ev.AuthorBot = m.Author.Bot
	}
	if m.Member != nil {
		ev.MemberRoleIDs = m.Member.Roles
	}
	return ev
}
