// Package mod - /mod slowmode, /mod lock and /mod unlock
package mod

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Discord caps slowmode at six hours.
const maxSlowmode = 21600

func channelOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "canal",
		Description:  "Canal (por defecto el actual)",
		Required:     false,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	}
}

func targetChannel(ctx *discord.CommandContext) string {
	if ch := ctx.GetChannelOption("canal"); ch != nil {
		return ch.ID
	}
	return ctx.Interaction.ChannelID
}

// createSlowmodeCommand creates the /mod slowmode subcommand
func createSlowmodeCommand() *discord.Command {
	return discord.NewCommand(
		"slowmode",
		"Configura el modo lento de un canal",
		"mod",
		slowmodeHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "segundos",
			Description: "Segundos entre mensajes (0 lo desactiva, máximo 21600)",
			Required:    true,
			MinValue:    ptr(0.0),
			MaxValue:    maxSlowmode,
		},
		channelOption(),
	).WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageChannels).
		InGuild()
}

// formatSlowmode renders seconds as "1h 2m 3s", omitting zero parts.
func formatSlowmode(seconds int) string {
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

// slowmodeHandler handles the /mod slowmode command
func slowmodeHandler(ctx *discord.CommandContext) error {
	cfg, err := enabledConfig(ctx, "slowmode", func(m models.ModerationConfig) bool { return m.SlowmodeEnabled })
	if err != nil {
		return err
	}

	seconds := int(ctx.GetIntOption("segundos"))
	if seconds < 0 || seconds > maxSlowmode {
		return ctx.ReplyEphemeral("❌ El modo lento debe estar entre 0 y 21600 segundos (6 horas).")
	}
	channelID := targetChannel(ctx)

	if _, err := ctx.Session.ChannelEdit(channelID, &discordgo.ChannelEdit{RateLimitPerUser: &seconds}); err != nil {
		return errors.Platform("slowmode", err)
	}

	reply := fmt.Sprintf("⏰ Modo lento establecido en %s en <#%s>.", formatSlowmode(seconds), channelID)
	state := fmt.Sprintf("%d segundos", seconds)
	if seconds == 0 {
		reply = fmt.Sprintf("🚫 Modo lento desactivado en <#%s>.", channelID)
		state = "Desactivado"
	}

	execute(ctx, audit(cfg, fmt.Sprintf(
		"⏰ **Modo lento:** <#%s>\n**Duración:** %s\n**Configurado por:** %s\n**Fecha:** %s",
		channelID, state, ctx.User().String(), stamp(time.Now()),
	)))
	return ctx.Reply(reply)
}

// everyoneOverwrite returns the @everyone overwrite of ch after locking or
// unlocking it. Other bits of the overwrite are preserved.
func everyoneOverwrite(ch *discordgo.Channel, guildID string, lock bool) (allow, deny int64) {
	if ch != nil {
		for _, ow := range ch.PermissionOverwrites {
			if ow.ID == guildID && ow.Type == discordgo.PermissionOverwriteTypeRole {
				allow, deny = ow.Allow, ow.Deny
				break
			}
		}
	}
	if lock {
		return allow &^ discordgo.PermissionSendMessages, deny | discordgo.PermissionSendMessages
	}
	return allow, deny &^ discordgo.PermissionSendMessages
}

func setLocked(ctx *discord.CommandContext, lock bool) error {
	name := "unlock"
	if lock {
		name = "lock"
	}
	cfg, err := enabledConfig(ctx, name, func(m models.ModerationConfig) bool { return m.LockEnabled })
	if err != nil {
		return err
	}

	guildID := ctx.Interaction.GuildID
	channelID := targetChannel(ctx)

	ch, err := ctx.Session.Channel(channelID)
	if err != nil {
		return errors.NotFound("canal " + channelID)
	}

	allow, deny := everyoneOverwrite(ch, guildID, lock)
	err = ctx.Session.ChannelPermissionSet(channelID, guildID, discordgo.PermissionOverwriteTypeRole, allow, deny)
	if err != nil {
		return errors.Platform(name, err)
	}

	icon, verb := "🔓", "desbloqueado"
	if lock {
		icon, verb = "🔒", "bloqueado"
	}
	execute(ctx, audit(cfg, fmt.Sprintf(
		"%s **Canal %s:** <#%s>\n**Por:** %s\n**Fecha:** %s",
		icon, verb, channelID, ctx.User().String(), stamp(time.Now()),
	)))
	return ctx.Reply(fmt.Sprintf("%s <#%s> ha sido %s.", icon, channelID, verb))
}

// createLockCommand creates the /mod lock subcommand
func createLockCommand() *discord.Command {
	return discord.NewCommand(
		"lock",
		"Impide que @everyone escriba en un canal",
		"mod",
		func(ctx *discord.CommandContext) error { return setLocked(ctx, true) },
	).WithOptions(channelOption()).
		WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageRoles).
		InGuild()
}

// createUnlockCommand creates the /mod unlock subcommand
func createUnlockCommand() *discord.Command {
	return discord.NewCommand(
		"unlock",
		"Permite de nuevo que @everyone escriba en un canal",
		"mod",
		func(ctx *discord.CommandContext) error { return setLocked(ctx, false) },
	).WithOptions(channelOption()).
		WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageRoles).
		InGuild()
}
