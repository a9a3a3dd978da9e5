package levels

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/PancyGuardGo/pkg/leveling"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

func TestRankEmbed(t *testing.T) {
	cfg := models.DefaultGuildConfig()
	cfg.Leveling.Users = map[string]models.LevelingUser{
		"a": {XP: 450, Level: 2},
		"b": {XP: 900, Level: 3},
	}
	requester := &discordgo.User{ID: "r", Username: "req"}

	assert.Nil(t, rankEmbed(cfg, &discordgo.User{ID: "nobody"}, requester, time.Now()))

	embed := rankEmbed(cfg, &discordgo.User{ID: "a", Username: "alice"}, requester, time.Now())
	require.NotNil(t, embed)
	assert.Equal(t, "2", embed.Fields[0].Value)
	assert.Equal(t, "450", embed.Fields[1].Value)
	assert.Equal(t, "#2", embed.Fields[2].Value)
	// level 2 spans 400..900
	assert.Equal(t, "50/500 (faltan 450 XP)", embed.Fields[3].Value)
}

func TestLeaderboardEmbed(t *testing.T) {
	users := map[string]models.LevelingUser{}
	for i, id := range []string{"a", "b", "c", "d"} {
		users[id] = models.LevelingUser{XP: (i + 1) * 100}
	}
	embed := leaderboardEmbed("Guild", leveling.Leaderboard(users, 10), time.Now())

	value := embed.Fields[0].Value
	assert.True(t, strings.HasPrefix(value, "🥇 <@d>"))
	assert.Contains(t, value, "🥈 <@c>")
	assert.Contains(t, value, "4. <@a>")
	assert.Contains(t, embed.Title, "Guild")
}

func TestCommandsAreGuildOnly(t *testing.T) {
	assert.True(t, createRankCommand().GuildOnly)
	assert.True(t, createLeaderboardCommand().GuildOnly)
}
