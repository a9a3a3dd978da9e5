package web

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
)

// Bot is what the dashboard API needs from the Discord client.
type Bot interface {
	IsReady() bool
	Self() *discordgo.User
	Guilds() []*discordgo.Guild
	Guild(guildID string) (*discordgo.Guild, error)
	SendMessage(guildID, channelID, content string) error
	Uptime() time.Duration
}

type discordBot struct {
	c *discord.ExtendedClient
}

// DiscordBot adapts the bot client to Bot.
func DiscordBot(c *discord.ExtendedClient) Bot {
	return discordBot{c: c}
}

func (b discordBot) IsReady() bool { return b.c.IsReady() }

func (b discordBot) Self() *discordgo.User {
	if b.c.Session == nil || b.c.Session.State == nil {
		return nil
	}
	return b.c.Session.State.User
}

func (b discordBot) Guilds() []*discordgo.Guild { return b.c.Guilds() }

func (b discordBot) Guild(guildID string) (*discordgo.Guild, error) {
	guild, err := b.c.Session.State.Guild(guildID)
	if err != nil {
		return nil, errors.NotFound("guild " + guildID)
	}
	return guild, nil
}

// SendMessage posts content to channelID after checking that it belongs to guildID.
func (b discordBot) SendMessage(guildID, channelID, content string) error {
	ch, err := b.c.Session.State.Channel(channelID)
	if err != nil || ch.GuildID != guildID {
		return errors.NotFound("channel " + channelID)
	}
	_, err = b.c.Session.ChannelMessageSend(channelID, content)
	return errors.Platform("send message", err)
}

func (b discordBot) Uptime() time.Duration { return b.c.Uptime() }
