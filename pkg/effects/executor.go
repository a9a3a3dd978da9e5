package effects

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Platform is the subset of *discordgo.Session the executor needs.
type Platform interface {
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// WarningRecorder persists warnings. *guildconfig.Store implements it.
type WarningRecorder interface {
	RecordWarning(ctx context.Context, guildID, userID string, w models.Warning) error
}

// Executor runs effect lists.
type Executor struct {
	platform Platform
	warnings WarningRecorder

	// CanManageRole reports whether the bot may assign roleID. Nil allows every role.
	CanManageRole func(guildID, roleID string) bool

	now func() time.Time
}

// NewExecutor creates an Executor.
func NewExecutor(platform Platform, warnings WarningRecorder) *Executor {
	return &Executor{platform: platform, warnings: warnings, now: time.Now}
}

// Execute runs every effect in order. A failure does not stop the remaining
// effects; all failures are logged and returned joined.
func (x *Executor) Execute(ctx context.Context, guildID string, list []Effect) error {
	var errs []error
	prevFailed := false

	for _, e := range list {
		if e.AfterPrevious && prevFailed {
			logger.Debug(fmt.Sprintf("Omitiendo %s: la acción anterior falló", e.Kind), "Effects")
			continue
		}

		err := x.apply(ctx, guildID, e)
		prevFailed = err != nil
		if err == nil {
			continue
		}

		if e.Kind == KindNotifyUser {
			logger.Debug(fmt.Sprintf("No se pudo enviar DM a %s: %v", e.UserID, err), "Effects")
			continue
		}
		errors.Handle(err, "Effects")
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (x *Executor) apply(ctx context.Context, guildID string, e Effect) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch e.Kind {
	case KindDeleteMessage:
		return errors.Platform("delete message", x.platform.ChannelMessageDelete(e.ChannelID, e.MessageID))

	case KindTimeoutMember:
		until := x.now().Add(e.Duration)
		return errors.Platform("timeout member", x.platform.GuildMemberTimeout(guildID, e.UserID, &until, auditReason(e.Reason)...))

	case KindKickMember:
		return errors.Platform("kick member", x.platform.GuildMemberDeleteWithReason(guildID, e.UserID, e.Reason))

	case KindRecordWarning:
		if x.warnings == nil {
			return errors.Storage("record warning", fmt.Errorf("no warning recorder"))
		}
		err := x.warnings.RecordWarning(ctx, guildID, e.UserID, e.Warning)
		if err != nil && !errors.Is(err, errors.ErrStorage) {
			err = errors.Storage("record warning", err)
		}
		return err

	case KindSendMessage, KindAuditLog:
		_, err := x.platform.ChannelMessageSend(e.ChannelID, e.Content)
		return errors.Platform("send message", err)

	case KindSendEmbed:
		_, err := x.platform.ChannelMessageSendEmbed(e.ChannelID, e.Embed)
		return errors.Platform("send embed", err)

	case KindNotifyUser:
		ch, err := x.platform.UserChannelCreate(e.UserID)
		if err != nil {
			return errors.Platform("open DM", err)
		}
		_, err = x.platform.ChannelMessageSend(ch.ID, e.Content)
		return errors.Platform("send DM", err)

	case KindGrantRole:
		if x.CanManageRole != nil && !x.CanManageRole(guildID, e.RoleID) {
			return errors.PermissionDenied(fmt.Sprintf("el bot no puede asignar el rol %s", e.RoleID))
		}
		return errors.Platform("add role", x.platform.GuildMemberRoleAdd(guildID, e.UserID, e.RoleID, auditReason(e.Reason)...))

	default:
		return fmt.Errorf("unknown effect kind %q", e.Kind)
	}
}

func auditReason(reason string) []discordgo.RequestOption {
	if reason == "" {
		return nil
	}
	return []discordgo.RequestOption{discordgo.WithAuditLogReason(reason)}
}
