package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/effects"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

const noReason = "Sin razón especificada"

// flagFunc picks the moderation switch that gates a command.
type flagFunc func(models.ModerationConfig) bool

// enabledConfig loads the guild document and fails with FeatureDisabled when
// the command is switched off. A nil flag never disables.
func enabledConfig(ctx *discord.CommandContext, name string, flag flagFunc) (*models.GuildConfig, error) {
	cfg, err := ctx.GuildConfig()
	if err != nil {
		return nil, err
	}
	if flag != nil && !flag(cfg.Moderation) {
		return nil, errors.FeatureDisabled("/mod " + name)
	}
	return cfg, nil
}

// audit returns the log-channel message for an action, if the guild logs them.
func audit(cfg *models.GuildConfig, content string) []effects.Effect {
	if cfg == nil || !cfg.Moderation.LogActions || cfg.LogChannel == "" {
		return nil
	}
	return []effects.Effect{effects.AuditLog(cfg.LogChannel, content)}
}

// execute runs follow-up effects. Failures are logged by the executor.
func execute(ctx *discord.CommandContext, list []effects.Effect) {
	if len(list) == 0 || ctx.Client == nil || ctx.Client.Executor == nil {
		return
	}
	_ = ctx.Client.Executor.Execute(ctx.Context(), ctx.Interaction.GuildID, list)
}

func reasonOr(reason string) string {
	if reason == "" {
		return noReason
	}
	return reason
}

// stamp renders a Discord full date timestamp.
func stamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:F>", t.Unix())
}

func userOption(ctx *discord.CommandContext) (*discordgo.User, error) {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return nil, errors.NotFound("usuario")
	}
	return user, nil
}

// fetchMember returns the guild member for userID, from the state cache when possible.
func fetchMember(ctx *discord.CommandContext, userID string) (*discordgo.Member, error) {
	guildID := ctx.Interaction.GuildID
	if ctx.Session.State != nil {
		if m, err := ctx.Session.State.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	m, err := ctx.Session.GuildMember(guildID, userID)
	if err != nil {
		return nil, errors.NotFound("el usuario no está en este servidor")
	}
	return m, nil
}

// checkTarget rejects actions on oneself and on members at or above the actor.
func checkTarget(actor, target *discordgo.Member, guild *discordgo.Guild) error {
	if actor != nil && actor.User != nil && target.User != nil && actor.User.ID == target.User.ID {
		return errors.PermissionDenied("no puedes moderarte a ti mismo")
	}
	if guild != nil && !discord.Outranks(guild, actor, target) {
		return errors.PermissionDenied("el usuario tiene un rol igual o superior al tuyo")
	}
	return nil
}

// moderatedMember resolves the "usuario" option to a member the actor may act on.
func moderatedMember(ctx *discord.CommandContext) (*discordgo.User, *discordgo.Member, error) {
	user, err := userOption(ctx)
	if err != nil {
		return nil, nil, err
	}
	member, err := fetchMember(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if member.User == nil {
		member.User = user
	}
	if err := checkTarget(ctx.Member(), member, ctx.Guild()); err != nil {
		return nil, nil, err
	}
	return user, member, nil
}

func guildName(ctx *discord.CommandContext) string {
	if g := ctx.Guild(); g != nil {
		return g.Name
	}
	return ctx.Interaction.GuildID
}

func ptr[T any](v T) *T { return &v }
