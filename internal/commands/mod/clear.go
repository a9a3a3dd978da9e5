// Package mod - /mod clear command
package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

const (
	maxClear = 100
	// Messages older than this cannot be bulk deleted.
	bulkDeleteAge = 14 * 24 * time.Hour
)

// createClearCommand creates the /mod clear subcommand
func createClearCommand() *discord.Command {
	return discord.NewCommand(
		"clear",
		"Elimina mensajes recientes de un canal",
		"mod",
		clearHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "cantidad",
			Description: "Número de mensajes (1-100)",
			Required:    true,
			MinValue:    ptr(1.0),
			MaxValue:    maxClear,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Eliminar solo los mensajes de este usuario",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "canal",
			Description:  "Canal a limpiar (por defecto el actual)",
			Required:     false,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		},
	).WithUserPermissions(discordgo.PermissionManageMessages).
		WithBotPermissions(discordgo.PermissionManageMessages).
		InGuild()
}

// selectForClear picks up to amount message IDs, newest first, optionally from
// one author, skipping messages too old to bulk delete.
func selectForClear(msgs []*discordgo.Message, authorID string, amount int, now time.Time) []string {
	ids := make([]string, 0, amount)
	for _, m := range msgs {
		if len(ids) == amount {
			break
		}
		if authorID != "" && (m.Author == nil || m.Author.ID != authorID) {
			continue
		}
		if now.Sub(m.Timestamp) >= bulkDeleteAge {
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids
}

// clearHandler handles the /mod clear command
func clearHandler(ctx *discord.CommandContext) error {
	cfg, err := enabledConfig(ctx, "clear", func(m models.ModerationConfig) bool { return m.ClearEnabled })
	if err != nil {
		return err
	}

	amount := int(ctx.GetIntOption("cantidad"))
	if amount < 1 || amount > maxClear {
		return ctx.ReplyEphemeral("❌ La cantidad debe estar entre 1 y 100.")
	}

	channelID := ctx.Interaction.ChannelID
	if ch := ctx.GetChannelOption("canal"); ch != nil {
		channelID = ch.ID
	}
	var authorID, target string
	if user := ctx.GetUserOption("usuario"); user != nil {
		authorID, target = user.ID, user.String()
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	limit := amount
	if authorID != "" {
		limit = min(amount*2, maxClear)
	}
	msgs, err := ctx.Session.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return errors.Platform("fetch messages", err)
	}

	ids := selectForClear(msgs, authorID, amount, time.Now())
	switch len(ids) {
	case 0:
	case 1:
		err = ctx.Session.ChannelMessageDelete(channelID, ids[0])
	default:
		err = ctx.Session.ChannelMessagesBulkDelete(channelID, ids)
	}
	if err != nil {
		return errors.Platform("delete messages", err)
	}

	if target == "" {
		target = "Todos los usuarios"
	}
	execute(ctx, audit(cfg, fmt.Sprintf(
		"🧹 **Mensajes eliminados:** %d en <#%s>\n**Objetivo:** %s\n**Eliminados por:** %s\n**Fecha:** %s",
		len(ids), channelID, target, ctx.User().String(), stamp(time.Now()),
	)))

	return ctx.EditReply(fmt.Sprintf("🧹 Se eliminaron %d mensaje(s) en <#%s>.", len(ids), channelID))
}
