// Package leveling implements XP accrual, the level curve and rankings.
package leveling

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/effects"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

const (
	// Cooldown is the minimum time between two XP grants for one member.
	Cooldown = 60 * time.Second
	MinGain  = 15
	MaxGain  = 30
)

// Level returns floor(sqrt(xp/100)).
func Level(xp int) int {
	if xp <= 0 {
		return 0
	}
	l := int(math.Sqrt(float64(xp) / 100))
	for XPForLevel(l+1) <= xp {
		l++
	}
	for l > 0 && XPForLevel(l) > xp {
		l--
	}
	return l
}

// XPForLevel returns the total XP at which level l starts.
func XPForLevel(l int) int {
	return l * l * 100
}

// Progress describes how far a member is into the current level.
type Progress struct {
	Level   int
	Current int // XP earned inside the current level
	Span    int // XP between the current and the next level
	Needed  int // XP still missing for the next level
}

// ProgressOf returns the level progress of a member with xp.
func ProgressOf(xp int) Progress {
	l := Level(xp)
	start, next := XPForLevel(l), XPForLevel(l+1)
	return Progress{
		Level:   l,
		Current: xp - start,
		Span:    next - start,
		Needed:  next - xp,
	}
}

// Event is one message eligible for XP.
type Event struct {
	UserID        string
	ChannelID     string
	MemberRoleIDs []string
	Now           time.Time
}

// Outcome reports what Award did.
type Outcome struct {
	Awarded       bool
	Gained        int
	User          models.LevelingUser
	PreviousLevel int
	LeveledUp     bool
	Effects       []effects.Effect
}

// Engine awards XP.
type Engine struct {
	intN func(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand replaces the random source. intN must return a value in [0, n).
func WithRand(intN func(n int) int) Option {
	return func(e *Engine) { e.intN = intN }
}

// NewEngine creates an Engine using math/rand/v2 unless WithRand is given.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{intN: rand.IntN}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Award grants XP for ev and updates cfg.Leveling.Users in place. It is a
// no-op when leveling is off, the channel or a member role is excluded, or the
// member is still in cooldown. Callers run it inside Store.Update.
func (e *Engine) Award(ev Event, cfg *models.GuildConfig) Outcome {
	lv := &cfg.Leveling

	if !cfg.Features.Leveling || lv.IsChannelExcluded(ev.ChannelID) || lv.HasExcludedRole(ev.MemberRoleIDs) {
		return Outcome{}
	}

	user := lv.Users[ev.UserID]
	now := ev.Now.UnixMilli()
	if now-user.LastMessage < Cooldown.Milliseconds() {
		return Outcome{User: user}
	}

	multiplier := lv.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	gained := int(math.Floor(float64(MinGain+e.intN(MaxGain-MinGain+1)) * multiplier))

	prev := user.Level
	user.XP += gained
	user.LastMessage = now
	user.Level = Level(user.XP)

	if lv.Users == nil {
		lv.Users = make(map[string]models.LevelingUser)
	}
	lv.Users[ev.UserID] = user

	out := Outcome{
		Awarded:       true,
		Gained:        gained,
		User:          user,
		PreviousLevel: prev,
		LeveledUp:     user.Level > prev,
	}
	if out.LeveledUp {
		out.Effects = levelUpEffects(ev, cfg, user)
	}
	return out
}

func levelUpEffects(ev Event, cfg *models.GuildConfig, user models.LevelingUser) []effects.Effect {
	var list []effects.Effect

	if ch := cfg.Leveling.AnnounceChannel; ch != "" {
		list = append(list, effects.SendMessage(ch, fmt.Sprintf(
			"🎉 <@%s> alcanzó el nivel **%d**! (%d XP)", ev.UserID, user.Level, user.XP,
		)))
	}

	roleID := cfg.Leveling.RoleRewards[user.Level]
	if roleID == "" || slices.Contains(ev.MemberRoleIDs, roleID) {
		return list
	}

	list = append(list, effects.GrantRole(ev.UserID, roleID, fmt.Sprintf("Recompensa de nivel %d", user.Level)))
	if cfg.Moderation.LogActions && cfg.LogChannel != "" {
		list = append(list, effects.AuditLog(cfg.LogChannel, fmt.Sprintf(
			"🎯 **Recompensa de nivel:** <@&%s> otorgado a <@%s> por alcanzar el nivel %d",
			roleID, ev.UserID, user.Level,
		)).Then())
	}
	return list
}
