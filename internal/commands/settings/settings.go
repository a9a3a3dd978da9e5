// Package settings provides the /config command group, which edits the guild
// document from Discord. Every subcommand requires Manage Server.
package settings

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// errUnchanged aborts an update that would not modify the document.
var errUnchanged = errors.New("unchanged")

// RegisterConfigCommands registers the /config group.
func RegisterConfigCommands(client *discord.ExtendedClient) {
	ch := client.CommandHandler

	badword := ch.BuildSubcommandGroup("config", "badword", "Lista de palabras prohibidas",
		manage(discord.NewCommand("add", "Añade una palabra prohibida", "config", badWordHandler(true)).WithOptions(wordOption())),
		manage(discord.NewCommand("remove", "Quita una palabra prohibida", "config", badWordHandler(false)).WithOptions(wordOption())),
	)
	leveling := ch.BuildSubcommandGroup("config", "leveling", "Sistema de niveles",
		manage(createMultiplierCommand()),
		manage(createAnnounceCommand()),
		manage(createRewardCommand()),
	)

	group := ch.BuildMixedGroup("config", "Configuración del servidor",
		[]*discord.Command{
			manage(createShowCommand()),
			manage(createLogChannelCommand()),
			manage(createFeatureCommand()),
			manage(createAutomodCommand()),
		},
		badword, leveling,
	)
	ch.AddGlobalCommand(group)
}

func manage(cmd *discord.Command) *discord.Command {
	return cmd.WithUserPermissions(discordgo.PermissionManageGuild).InGuild()
}

func choices(values ...string) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, len(values))
	for i, v := range values {
		out[i] = &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v}
	}
	return out
}

func update(ctx *discord.CommandContext, fn func(*models.GuildConfig) error) (*models.GuildConfig, error) {
	return ctx.Client.Store.Update(ctx.Context(), ctx.Interaction.GuildID, fn)
}

func onOff(b bool) string {
	if b {
		return "✅"
	}
	return "❌"
}

func channelMention(id string) string {
	if id == "" {
		return "Ninguno"
	}
	return "<#" + id + ">"
}

// configEmbed summarises the document for /config show.
func configEmbed(cfg *models.GuildConfig, guildName string) *discordgo.MessageEmbed {
	f, a, l := cfg.Features, cfg.Automod, cfg.Leveling

	levels := make([]int, 0, len(l.RoleRewards))
	for lvl := range l.RoleRewards {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)
	rewards := make([]string, 0, len(levels))
	for _, lvl := range levels {
		rewards = append(rewards, fmt.Sprintf("Nivel %d → <@&%s>", lvl, l.RoleRewards[lvl]))
	}
	if len(rewards) == 0 {
		rewards = append(rewards, "Ninguna")
	}

	action := a.Action
	if action == "" {
		action = models.AutomodActionDelete
	}

	return &discordgo.MessageEmbed{
		Title: "⚙️ Configuración de " + guildName,
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Canal de registros", Value: channelMention(cfg.LogChannel), Inline: true},
			{Name: "Advertencias máximas", Value: fmt.Sprintf("%d (%s)", cfg.Moderation.MaxWarnings, cfg.Moderation.WarnAction), Inline: true},
			{Name: "Funciones", Value: fmt.Sprintf("%s Automod\n%s Niveles\n%s Bienvenida\n%s Despedida",
				onOff(f.Automod), onOff(f.Leveling), onOff(f.Welcome), onOff(f.Goodbye))},
			{Name: "Automod", Value: fmt.Sprintf("%s Anti-spam\n%s Anti-invitaciones\n%s Anti-enlaces\n%s Palabras prohibidas (%d)\nAcción: %s",
				onOff(a.AntiSpam), onOff(a.AntiInvite), onOff(a.AntiLink), onOff(a.BadWords), len(a.BadWordsList), action)},
			{Name: "Niveles", Value: fmt.Sprintf("Multiplicador: x%.2f\nAnuncios: %s\nRecompensas:\n%s",
				l.Multiplier, channelMention(l.AnnounceChannel), strings.Join(rewards, "\n"))},
		},
	}
}

func createShowCommand() *discord.Command {
	return discord.NewCommand("show", "Muestra la configuración actual", "config", func(ctx *discord.CommandContext) error {
		cfg, err := ctx.GuildConfig()
		if err != nil {
			return err
		}
		name := ctx.Interaction.GuildID
		if g := ctx.Guild(); g != nil {
			name = g.Name
		}
		return ctx.ReplyEphemeralEmbed(configEmbed(cfg, name))
	})
}

func createLogChannelCommand() *discord.Command {
	return discord.NewCommand("logchannel", "Establece o quita el canal de registros", "config", func(ctx *discord.CommandContext) error {
		channelID := ""
		if ch := ctx.GetChannelOption("canal"); ch != nil {
			channelID = ch.ID
		}
		if _, err := ctx.Client.Store.Patch(ctx.Context(), ctx.Interaction.GuildID, map[string]any{"logChannel": channelID}); err != nil {
			return err
		}
		return ctx.Reply("📝 Canal de registros: " + channelMention(channelID))
	}).WithOptions(&discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "canal",
		Description:  "Canal de registros (vacío lo desactiva)",
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	})
}

func createFeatureCommand() *discord.Command {
	return discord.NewCommand("feature", "Activa o desactiva una función", "config", func(ctx *discord.CommandContext) error {
		name := ctx.GetStringOption("funcion")
		on := ctx.GetBoolOption("activo")
		if _, err := ctx.Client.Store.PatchSection(ctx.Context(), ctx.Interaction.GuildID, "features", map[string]any{name: on}); err != nil {
			return err
		}
		return ctx.Reply(fmt.Sprintf("%s Función **%s** %s.", onOff(on), name, map[bool]string{true: "activada", false: "desactivada"}[on]))
	}).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "funcion",
			Description: "Función",
			Required:    true,
			Choices:     choices("automod", "leveling", "welcome", "goodbye"),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "activo",
			Description: "Activar o desactivar",
			Required:    true,
		},
	)
}

// automodPatch builds the automod section patch for /config automod.
func automodPatch(rule string, on bool, action string) map[string]any {
	fields := map[string]any{rule: on}
	if action != "" {
		fields["action"] = action
	}
	return fields
}

func createAutomodCommand() *discord.Command {
	return discord.NewCommand("automod", "Configura una regla de automoderación", "config", func(ctx *discord.CommandContext) error {
		rule := ctx.GetStringOption("regla")
		on := ctx.GetBoolOption("activo")
		action := ctx.GetStringOption("accion")

		_, err := ctx.Client.Store.PatchSection(ctx.Context(), ctx.Interaction.GuildID, "automod", automodPatch(rule, on, action))
		if err != nil {
			return err
		}
		reply := fmt.Sprintf("%s Regla **%s** actualizada.", onOff(on), rule)
		if action != "" {
			reply += " Acción: **" + action + "**."
		}
		return ctx.Reply(reply)
	}).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "regla",
			Description: "Regla",
			Required:    true,
			Choices:     choices("antiSpam", "antiInvite", "antiLink", "badWords", "sendWarning"),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "activo",
			Description: "Activar o desactivar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "accion",
			Description: "Acción adicional al borrar el mensaje",
			Choices: choices(string(models.AutomodActionDelete), string(models.AutomodActionTimeout),
				string(models.AutomodActionWarn)),
		},
	)
}

func wordOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "palabra",
		Description: "Palabra",
		Required:    true,
		MaxLength:   100,
	}
}

// setBadWord adds or removes word from the list. Words are stored lowercased.
func setBadWord(cfg *models.GuildConfig, word string, add bool) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return errUnchanged
	}
	i := slices.Index(cfg.Automod.BadWordsList, word)
	switch {
	case add && i < 0:
		cfg.Automod.BadWordsList = append(cfg.Automod.BadWordsList, word)
	case !add && i >= 0:
		cfg.Automod.BadWordsList = slices.Delete(cfg.Automod.BadWordsList, i, i+1)
	default:
		return errUnchanged
	}
	return nil
}

func badWordHandler(add bool) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		word := ctx.GetStringOption("palabra")
		_, err := update(ctx, func(cfg *models.GuildConfig) error { return setBadWord(cfg, word, add) })
		switch {
		case errors.Is(err, errUnchanged) && add:
			return ctx.ReplyEphemeral("La palabra ya estaba en la lista.")
		case errors.Is(err, errUnchanged):
			return ctx.ReplyEphemeral("La palabra no estaba en la lista.")
		case err != nil:
			return err
		case add:
			return ctx.ReplyEphemeral("🚫 Palabra añadida a la lista de prohibidas.")
		default:
			return ctx.ReplyEphemeral("✅ Palabra eliminada de la lista de prohibidas.")
		}
	}
}

func createMultiplierCommand() *discord.Command {
	return discord.NewCommand("multiplier", "Cambia el multiplicador de XP", "config", func(ctx *discord.CommandContext) error {
		opt := ctx.GetOption("valor")
		if opt == nil {
			return errors.NotFound("valor")
		}
		v := opt.FloatValue()
		if _, err := ctx.Client.Store.PatchSection(ctx.Context(), ctx.Interaction.GuildID, "leveling", map[string]any{"multiplier": v}); err != nil {
			return err
		}
		return ctx.Reply(fmt.Sprintf("✨ Multiplicador de XP: x%.2f", v))
	}).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionNumber,
		Name:        "valor",
		Description: "Multiplicador (mayor que 0)",
		Required:    true,
		MinValue:    ptr(0.1),
		MaxValue:    10,
	})
}

func createAnnounceCommand() *discord.Command {
	return discord.NewCommand("announce", "Canal de anuncios de subida de nivel", "config", func(ctx *discord.CommandContext) error {
		channelID := ""
		if ch := ctx.GetChannelOption("canal"); ch != nil {
			channelID = ch.ID
		}
		_, err := ctx.Client.Store.PatchSection(ctx.Context(), ctx.Interaction.GuildID, "leveling", map[string]any{"announceChannel": channelID})
		if err != nil {
			return err
		}
		if channelID == "" {
			return ctx.Reply("📣 Los anuncios de nivel se enviarán en el canal del mensaje.")
		}
		return ctx.Reply("📣 Canal de anuncios de nivel: " + channelMention(channelID))
	}).WithOptions(&discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "canal",
		Description:  "Canal (vacío usa el canal del mensaje)",
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	})
}

// setReward sets or, with an empty roleID, removes the role granted at level.
func setReward(cfg *models.GuildConfig, level int, roleID string) error {
	if level < 1 {
		return fmt.Errorf("%w: level must be at least 1", models.ErrInvalidConfig)
	}
	if cfg.Leveling.RoleRewards == nil {
		cfg.Leveling.RoleRewards = make(map[int]string)
	}
	current, ok := cfg.Leveling.RoleRewards[level]
	switch {
	case roleID == "" && !ok:
		return errUnchanged
	case roleID == "":
		delete(cfg.Leveling.RoleRewards, level)
	case current == roleID:
		return errUnchanged
	default:
		cfg.Leveling.RoleRewards[level] = roleID
	}
	return nil
}

func createRewardCommand() *discord.Command {
	return discord.NewCommand("reward", "Asigna o quita el rol de recompensa de un nivel", "config", func(ctx *discord.CommandContext) error {
		level := int(ctx.GetIntOption("nivel"))
		roleID := ""
		if role := ctx.GetRoleOption("rol"); role != nil {
			if !discord.CanManageRole(ctx.Session, ctx.Interaction.GuildID, role.ID) {
				return errors.PermissionDenied("el bot no puede asignar el rol " + role.Name)
			}
			roleID = role.ID
		}

		_, err := update(ctx, func(cfg *models.GuildConfig) error { return setReward(cfg, level, roleID) })
		switch {
		case errors.Is(err, errUnchanged):
			return ctx.ReplyEphemeral("La recompensa ya estaba así.")
		case err != nil:
			return err
		case roleID == "":
			return ctx.Reply(fmt.Sprintf("🗑️ Recompensa del nivel %d eliminada.", level))
		default:
			return ctx.Reply(fmt.Sprintf("🎁 Nivel %d → <@&%s>", level, roleID))
		}
	}).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "nivel",
			Description: "Nivel",
			Required:    true,
			MinValue:    ptr(1.0),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol",
			Description: "Rol (vacío quita la recompensa)",
		},
	)
}

func ptr[T any](v T) *T { return &v }
