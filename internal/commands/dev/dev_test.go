package dev

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

func TestRegisterIsDevOnly(t *testing.T) {
	client, err := discord.NewClient("test-token", nil)
	require.NoError(t, err)

	Register(client, nil)

	global, devCmds := client.CommandHandler.Definitions()
	assert.Empty(t, global)
	require.Len(t, devCmds, 1)
	assert.Equal(t, "dev", devCmds[0].Name)

	for _, name := range []string{"dev.inspect", "dev.purge", "dev.guilds", "dev.token"} {
		cmd, ok := client.Commands.Get(name)
		require.True(t, ok, name)
		assert.True(t, cmd.IsDev, name)
		assert.True(t, cmd.GuildOnly, name)
		assert.Equal(t, int64(discordgo.PermissionAdministrator), cmd.UserPermissions, name)
	}
}

func TestConfigBlockFitsInMessage(t *testing.T) {
	cfg := models.DefaultGuildConfig()
	block, err := configBlock(cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(block, "```json\n"))
	assert.True(t, strings.HasSuffix(block, "\n```"))

	for i := 0; i < 300; i++ {
		cfg.Automod.BadWordsList = append(cfg.Automod.BadWordsList, strings.Repeat("ñ", 10))
	}
	block, err = configBlock(cfg)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(block), maxContent)
	assert.True(t, utf8.ValidString(block))
	assert.Contains(t, block, "…")
}

func TestGuildsEmbedMarksOrphans(t *testing.T) {
	configs := map[string]*models.GuildConfig{
		"2": models.DefaultGuildConfig(),
		"1": models.DefaultGuildConfig(),
	}
	joined := []*discordgo.Guild{{ID: "1", Name: "Uno"}}

	embed := guildsEmbed(configs, joined)
	assert.Contains(t, embed.Title, "(2)")
	assert.Equal(t, "`1` Uno\n`2` ⚠️ sin acceso\n", embed.Description)
	assert.Equal(t, "1 sin acceso", embed.Footer.Text)

	empty := guildsEmbed(nil, nil)
	assert.Equal(t, "No hay configuraciones guardadas.", empty.Description)
}

func TestTokenGuilds(t *testing.T) {
	assert.Nil(t, tokenGuilds(""))
	assert.Equal(t, []string{"1", "2"}, tokenGuilds(" 1, ,2 "))
}
