package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

func TestRegisterAll(t *testing.T) {
	client, err := discord.NewClient("test-token", nil)
	require.NoError(t, err)

	RegisterAll(client)

	for _, name := range []string{
		"utils.ping", "utils.help", "utils.stats", "utils.status", "utils.userinfo", "utils.serverinfo", "utils.avatar",
		"mod.ban", "mod.warn", "mod.clear", "mod.setnick",
		"rank", "leaderboard",
		"config.show", "config.feature", "config.badword.add", "config.badword.remove",
		"config.leveling.multiplier", "config.leveling.announce", "config.leveling.reward",
	} {
		_, ok := client.Commands.Get(name)
		assert.True(t, ok, name)
	}

	global, dev := client.CommandHandler.Definitions()
	assert.Empty(t, dev)
	names := map[string]bool{}
	for _, cmd := range global {
		assert.False(t, names[cmd.Name], "duplicate definition %s", cmd.Name)
		names[cmd.Name] = true
	}
	assert.Len(t, names, 5)
}
