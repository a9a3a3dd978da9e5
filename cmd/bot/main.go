// Package main is the entry point for the PancyGuard Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyGuardGo/internal/commands"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/dev"
	"github.com/PancyStudios/PancyGuardGo/internal/events"
	"github.com/PancyStudios/PancyGuardGo/internal/pipeline"
	"github.com/PancyStudios/PancyGuardGo/pkg/config"
	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/guildconfig"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
	"github.com/PancyStudios/PancyGuardGo/pkg/web"
)

const (
	dashboardTokenTTL = 24 * time.Hour
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.InitWithOptions(logger.Options{
		Dir:          cfg.LogDir,
		ErrorWebhook: cfg.ErrorWebhook,
		LogsWebhook:  cfg.LogsWebhook,
	})
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando PancyGuard Go %s (%s)...", config.Version, config.BuildTime), "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Guild config store
	openCtx, openCancel := context.WithTimeout(ctx, 30*time.Second)
	backend, err := database.FromConfig(openCtx, cfg)
	if err != nil {
		openCancel()
		logger.Critical(fmt.Sprintf("Error abriendo el almacenamiento %q: %v", cfg.StoreBackend, err), "Main")
		os.Exit(1)
	}
	store, err := guildconfig.Open(openCtx, backend)
	openCancel()
	if err != nil {
		logger.Critical(fmt.Sprintf("Error cargando configuraciones: %v", err), "Main")
		_ = backend.Close()
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando el almacenamiento: %v", err), "Main")
		}
	}()

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken, store)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	tokens := web.NewTokenManager(cfg.DashboardSecret, dashboardTokenTTL)

	// Register commands and events
	commands.RegisterAll(discordClient)
	if cfg.DevGuildID != "" {
		var issuer dev.TokenIssuer
		if tokens != nil {
			issuer = tokens
		}
		dev.Register(discordClient, issuer)
	}
	pipe := pipeline.New(store, discordClient.Executor, nil)
	events.RegisterAll(discordClient, pipe, events.Options{PurgeOnGuildLeave: cfg.PurgeOnGuildLeave})

	// Dashboard API and its live change stream
	hub := web.NewHub()
	go hub.Run(ctx)
	unsubscribe := store.Subscribe(hub.Publish)
	defer unsubscribe()

	webServer := web.Init(web.Options{
		WebhookURL:   cfg.LogsWebServerHook,
		AllowedHosts: web.ParseHosts(cfg.DashboardAllowedHosts),
	})
	web.SetupAPIRoutes(webServer, &web.API{
		Store:  store,
		Bot:    web.DiscordBot(discordClient),
		Hub:    hub,
		Tokens: tokens,
	})
	webServer.StartAsync(cfg.Port)

	// MQTT bridge
	var bridge *mqtt.Bridge
	if cfg.MQTTEnabled {
		mqttClientID := "pancyguard"
		if !cfg.IsProd() {
			mqttClientID = "pancyguard_canary"
		}
		mqttClient := mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, mqttClientID)
		defer mqttClient.Destroy()

		bridge = mqtt.NewBridge(mqttClient, store)
		if err := bridge.Start(); err != nil {
			logger.Error(fmt.Sprintf("Error iniciando el puente MQTT: %v", err), "Main")
			bridge = nil
		}
	}

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}

	logger.Success("PancyGuard Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyGuard Go...", "Main")

	if err := webServer.Shutdown(shutdownTimeout); err != nil {
		logger.Error(fmt.Sprintf("Error deteniendo el servidor web: %v", err), "Main")
	}
	if bridge != nil {
		bridge.Stop()
	}
	if err := discordClient.Stop(); err != nil {
		logger.Error(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
	}
	cancel()
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
