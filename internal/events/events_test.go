package events

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestIsNewJoin(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, isNewJoin(now, now))
	assert.True(t, isNewJoin(now.Add(-joinWindow), now))
	assert.False(t, isNewJoin(now.Add(-joinWindow-time.Second), now))
	assert.False(t, isNewJoin(time.Time{}, now))
}

func TestMemberEvent(t *testing.T) {
	joined := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := &discordgo.Member{
		User:     &discordgo.User{ID: "u1", Username: "ana", Discriminator: "0"},
		Roles:    []string{"r1"},
		JoinedAt: joined,
	}

	ev := memberEvent(&discordgo.Guild{ID: "g1", Name: "Servidor", MemberCount: 42}, "g1", m)
	assert.Equal(t, "g1", ev.GuildID)
	assert.Equal(t, "Servidor", ev.GuildName)
	assert.Equal(t, 42, ev.MemberCount)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "ana", ev.Username)
	assert.Equal(t, "ana", ev.Tag)
	assert.Equal(t, []string{"r1"}, ev.RoleIDs)
	assert.Equal(t, joined, ev.JoinedAt)
	assert.NotEmpty(t, ev.AvatarURL)

	uncached := memberEvent(nil, "g1", m)
	assert.Equal(t, "g1", uncached.GuildName)
	assert.Zero(t, uncached.MemberCount)
}

func TestMessageEvent(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "hola",
		Author:    &discordgo.User{ID: "u1", Username: "ana", Discriminator: "0"},
		Member:    &discordgo.Member{Roles: []string{"r1", "r2"}},
	}

	ev := messageEvent(m, "Servidor", 0, "bot", now)
	assert.Equal(t, "g1", ev.GuildID)
	assert.Equal(t, "Servidor", ev.GuildName)
	assert.Equal(t, "c1", ev.ChannelID)
	assert.Equal(t, "m1", ev.MessageID)
	assert.Equal(t, "u1", ev.AuthorID)
	assert.Equal(t, "ana", ev.AuthorTag)
	assert.Equal(t, "hola", ev.Content)
	assert.Equal(t, []string{"r1", "r2"}, ev.MemberRoleIDs)
	assert.Equal(t, "bot", ev.BotID)
	assert.Equal(t, now, ev.Now)
	assert.False(t, ev.AuthorExempt)

	ev = messageEvent(m, "Servidor", discordgo.PermissionManageMessages, "bot", now)
	assert.True(t, ev.AuthorExempt)

	ev = messageEvent(m, "Servidor", discordgo.PermissionAdministrator, "bot", now)
	assert.True(t, ev.AuthorExempt)
}

func TestJoinEmbed(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	embed := joinEmbed(now)
	assert.Len(t, embed.Fields, 3)
	assert.Equal(t, now.Format(time.RFC3339), embed.Timestamp)
}
