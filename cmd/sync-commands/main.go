// Package main lists, removes or syncs the bot's slash commands.
//
// Usage:
//
//	go run ./cmd/sync-commands [-list | -clean] [-guild <id>]
//
// Without -list or -clean the global commands (/utils, /mod, /rank,
// /leaderboard, /config) are overwritten with the current definitions. With
// -guild the /dev commands are synced into that guild instead.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/internal/commands"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/dev"
	"github.com/PancyStudios/PancyGuardGo/pkg/config"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

const prefix = "SyncCommands"

func main() {
	list := flag.Bool("list", false, "List the registered commands")
	clean := flag.Bool("clean", false, "Remove every registered command")
	guildID := flag.String("guild", "", "Target guild (empty for global commands)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.InitWithOptions(logger.Options{
		Dir:          cfg.LogDir,
		ErrorWebhook: cfg.ErrorWebhook,
		LogsWebhook:  cfg.LogsWebhook,
	})
	defer log.Close()

	// No store: this tool only manages application commands.
	client, err := discord.NewClient(cfg.BotToken, nil)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), prefix)
		os.Exit(1)
	}
	commands.RegisterAll(client)
	// Definitions only; the token command is never run from here.
	dev.Register(client, nil)

	if err := client.Session.Open(); err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), prefix)
		os.Exit(1)
	}
	defer client.Session.Close()

	scope := "globales"
	if *guildID != "" {
		scope = "del servidor " + *guildID
	}

	remote, err := client.CommandHandler.ListCommands(*guildID)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error obteniendo comandos %s: %v", scope, err), prefix)
		os.Exit(1)
	}

	switch {
	case *list:
		logger.Info(fmt.Sprintf("📋 %d comandos %s:", len(remote), scope), prefix)
		for _, cmd := range remote {
			logger.Info(fmt.Sprintf("  /%s (ID: %s)", cmd.Name, cmd.ID), prefix)
		}
	case *clean:
		err = client.CommandHandler.UnregisterCommands(*guildID)
	default:
		global, devCmds := client.CommandHandler.Definitions()
		local := global
		if *guildID != "" {
			local = devCmds
		}
		for _, name := range staleCommands(remote, local) {
			logger.Info(fmt.Sprintf("🧹 /%s ya no existe y será eliminado", name), prefix)
		}
		err = client.CommandHandler.SyncGuildCommands(*guildID)
	}
	if err != nil {
		logger.Error(fmt.Sprintf("Error en comandos %s: %v", scope, err), prefix)
		os.Exit(1)
	}

	logger.Success("Operación completada exitosamente", prefix)
}

// staleCommands returns the names registered on Discord that the bot no longer defines.
func staleCommands(remote, local []*discordgo.ApplicationCommand) []string {
	defined := make(map[string]bool, len(local))
	for _, cmd := range local {
		defined[cmd.Name] = true
	}
	var stale []string
	for _, cmd := range remote {
		if !defined[cmd.Name] {
			stale = append(stale, cmd.Name)
		}
	}
	sort.Strings(stale)
	return stale
}
