package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/automod"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/leveling"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// MessageEvent is an inbound guild message, built from *discordgo.MessageCreate.
type MessageEvent struct {
	GuildID   string
	GuildName string
	ChannelID string
	MessageID string
	AuthorID  string
	AuthorTag string
	AuthorBot bool
	Content   string

	MemberRoleIDs []string
	// AuthorExempt is true for members with Manage Messages or Administrator.
	AuthorExempt bool
	BotID        string
	Now          time.Time
}

// MessageResult reports what happened to a message.
type MessageResult struct {
	Moderated bool
	Decision  automod.Decision
	Leveling  leveling.Outcome
}

// HandleMessage runs automod and, when the message survives, leveling.
// Effect failures are logged by the executor and returned joined.
func (p *Pipeline) HandleMessage(ctx context.Context, ev MessageEvent) (MessageResult, error) {
	var res MessageResult
	if ev.GuildID == "" || ev.AuthorBot {
		return res, nil
	}
	if ev.Now.IsZero() {
		ev.Now = p.now()
	}

	cfg, err := p.store.Get(ctx, ev.GuildID)
	if err != nil {
		return res, err
	}

	if cfg.Features.Automod {
		violations := automod.Evaluate(ev.Content, ev.AuthorExempt, cfg.Automod)
		if len(violations) > 0 {
			res.Moderated = true
			res.Decision = automod.Resolve(automod.Input{
				ChannelID: ev.ChannelID,
				MessageID: ev.MessageID,
				AuthorID:  ev.AuthorID,
				AuthorTag: ev.AuthorTag,
				GuildName: ev.GuildName,
				Content:   ev.Content,
				BotID:     ev.BotID,
			}, violations, cfg, ev.Now)

			logger.Info(fmt.Sprintf("Auto-mod en %s: %s (%s)", ev.GuildID, ev.AuthorTag, automod.Join(violations)), "AutoMod")
			return res, p.exec.Execute(ctx, ev.GuildID, res.Decision.Effects)
		}
	}

	if !cfg.Features.Leveling {
		return res, nil
	}

	_, err = p.store.Update(ctx, ev.GuildID, func(doc *models.GuildConfig) error {
		res.Leveling = p.engine.Award(leveling.Event{
			UserID:        ev.AuthorID,
			ChannelID:     ev.ChannelID,
			MemberRoleIDs: ev.MemberRoleIDs,
			Now:           ev.Now,
		}, doc)
		if !res.Leveling.Awarded {
			return errSkip
		}
		return nil
	})
	if errors.Is(err, errSkip) {
		return res, nil
	}
	if err != nil {
		res.Leveling = leveling.Outcome{}
		return res, err
	}

	if res.Leveling.LeveledUp {
		logger.Info(fmt.Sprintf("%s subió al nivel %d en %s", ev.AuthorTag, res.Leveling.User.Level, ev.GuildID), "Leveling")
	}
	return res, p.exec.Execute(ctx, ev.GuildID, res.Leveling.Effects)
}

// errSkip aborts a store update that changed nothing.
var errSkip = errors.New("nothing to persist")
