package models

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInvalidConfig is returned when a guild document breaks one of its invariants.
var ErrInvalidConfig = errors.New("invalid guild config")

// WarnAction is the escalation applied once a member reaches maxWarnings.
type WarnAction string

const (
	WarnActionTimeout WarnAction = "timeout"
	WarnActionKick    WarnAction = "kick"
	WarnActionNone    WarnAction = "none"
)

// AutomodAction is the extra action applied on top of deleting a flagged message.
type AutomodAction string

const (
	AutomodActionDelete  AutomodAction = "delete"
	AutomodActionTimeout AutomodAction = "timeout"
	AutomodActionWarn    AutomodAction = "warn"
)

// GuildConfig es el documento de configuración de un servidor.
// The JSON names are the persisted names; the dashboard patches them by name.
type GuildConfig struct {
	SchemaVersion int                  `json:"schemaVersion" bson:"schemaVersion"`
	LogChannel    string               `json:"logChannel" bson:"logChannel"`
	Moderation    ModerationConfig     `json:"moderation" bson:"moderation"`
	Features      FeatureFlags         `json:"features" bson:"features"`
	Automod       AutomodConfig        `json:"automod" bson:"automod"`
	Leveling      LevelingConfig       `json:"leveling" bson:"leveling"`
	Welcome       WelcomeConfig        `json:"welcome" bson:"welcome"`
	Goodbye       GoodbyeConfig        `json:"goodbye" bson:"goodbye"`
	Warnings      map[string][]Warning `json:"warnings" bson:"warnings"`
}

// ModerationConfig toggles each moderation command and the warn escalation.
type ModerationConfig struct {
	BanEnabled      bool       `json:"banEnabled" bson:"banEnabled"`
	KickEnabled     bool       `json:"kickEnabled" bson:"kickEnabled"`
	TimeoutEnabled  bool       `json:"timeoutEnabled" bson:"timeoutEnabled"`
	WarnEnabled     bool       `json:"warnEnabled" bson:"warnEnabled"`
	ClearEnabled    bool       `json:"clearEnabled" bson:"clearEnabled"`
	LockEnabled     bool       `json:"lockEnabled" bson:"lockEnabled"`
	SlowmodeEnabled bool       `json:"slowmodeEnabled" bson:"slowmodeEnabled"`
	RoleEnabled     bool       `json:"roleEnabled" bson:"roleEnabled"`
	NicknameEnabled bool       `json:"nicknameEnabled" bson:"nicknameEnabled"`
	LogActions      bool       `json:"logActions" bson:"logActions"`
	AutoWarnActions bool       `json:"autoWarnActions" bson:"autoWarnActions"`
	MaxWarnings     int        `json:"maxWarnings" bson:"maxWarnings"`
	WarnAction      WarnAction `json:"warnAction" bson:"warnAction"`
}

// FeatureFlags are the master switches of each subsystem.
type FeatureFlags struct {
	Automod  bool `json:"automod" bson:"automod"`
	Leveling bool `json:"leveling" bson:"leveling"`
	Welcome  bool `json:"welcome" bson:"welcome"`
	Goodbye  bool `json:"goodbye" bson:"goodbye"`
}

// AutomodConfig selects which automod rules run and what happens on a hit.
type AutomodConfig struct {
	AntiSpam     bool          `json:"antiSpam" bson:"antiSpam"`
	AntiInvite   bool          `json:"antiInvite" bson:"antiInvite"`
	AntiLink     bool          `json:"antiLink" bson:"antiLink"`
	BadWords     bool          `json:"badWords" bson:"badWords"`
	BadWordsList []string      `json:"badWordsList" bson:"badWordsList"`
	Action       AutomodAction `json:"action" bson:"action"`
	SendWarning  bool          `json:"sendWarning" bson:"sendWarning"`
}

// LevelingConfig holds the XP state of every member plus the leveling rules.
type LevelingConfig struct {
	Users            map[string]LevelingUser `json:"users" bson:"users"`
	Multiplier       float64                 `json:"multiplier" bson:"multiplier"`
	ExcludedChannels []string                `json:"excludedChannels" bson:"excludedChannels"`
	ExcludedRoles    []string                `json:"excludedRoles" bson:"excludedRoles"`
	RoleRewards      map[int]string          `json:"roleRewards" bson:"roleRewards"`
	AnnounceChannel  string                  `json:"announceChannel" bson:"announceChannel"`
}

// LevelingUser is the per-member leveling state. LastMessage is unix milliseconds.
type LevelingUser struct {
	XP          int   `json:"xp" bson:"xp"`
	Level       int   `json:"level" bson:"level"`
	LastMessage int64 `json:"lastMessage" bson:"lastMessage"`
}

// WelcomeConfig configures the join message, auto-role and welcome DM.
type WelcomeConfig struct {
	Enabled      bool   `json:"enabled" bson:"enabled"`
	ChannelID    string `json:"channelId" bson:"channelId"`
	Message      string `json:"message" bson:"message"`
	EmbedEnabled bool   `json:"embedEnabled" bson:"embedEnabled"`
	EmbedTitle   string `json:"embedTitle" bson:"embedTitle"`
	EmbedColor   string `json:"embedColor" bson:"embedColor"`
	EmbedImage   string `json:"embedImage" bson:"embedImage"`
	AutoRole     string `json:"autoRole" bson:"autoRole"`
	DMEnabled    bool   `json:"dmEnabled" bson:"dmEnabled"`
	DMMessage    string `json:"dmMessage" bson:"dmMessage"`
}

// GoodbyeConfig configures the leave message.
type GoodbyeConfig struct {
	Enabled      bool   `json:"enabled" bson:"enabled"`
	ChannelID    string `json:"channelId" bson:"channelId"`
	Message      string `json:"message" bson:"message"`
	EmbedEnabled bool   `json:"embedEnabled" bson:"embedEnabled"`
	EmbedTitle   string `json:"embedTitle" bson:"embedTitle"`
	EmbedColor   string `json:"embedColor" bson:"embedColor"`
	EmbedImage   string `json:"embedImage" bson:"embedImage"`
}

// sections are the object-valued top-level fields accepted by a section patch.
var sections = []string{"moderation", "features", "automod", "leveling", "welcome", "goodbye", "warnings"}

// IsSection reports whether name is an object-valued top-level field of GuildConfig.
func IsSection(name string) bool {
	return slices.Contains(sections, name)
}

// Sections returns the names of the object-valued top-level fields.
func Sections() []string {
	return slices.Clone(sections)
}

// IsChannelExcluded reports whether messages in channelID earn no XP.
func (l LevelingConfig) IsChannelExcluded(channelID string) bool {
	return slices.Contains(l.ExcludedChannels, channelID)
}

// HasExcludedRole reports whether any of roleIDs is excluded from leveling.
func (l LevelingConfig) HasExcludedRole(roleIDs []string) bool {
	for _, id := range roleIDs {
		if slices.Contains(l.ExcludedRoles, id) {
			return true
		}
	}
	return false
}

// Normalize replaces nil collections with empty ones so documents always
// serialise with {} and [] instead of null.
func (c *GuildConfig) Normalize() {
	if c.Warnings == nil {
		c.Warnings = make(map[string][]Warning)
	}
	if c.Leveling.Users == nil {
		c.Leveling.Users = make(map[string]LevelingUser)
	}
	if c.Leveling.RoleRewards == nil {
		c.Leveling.RoleRewards = make(map[int]string)
	}
	if c.Leveling.ExcludedChannels == nil {
		c.Leveling.ExcludedChannels = []string{}
	}
	if c.Leveling.ExcludedRoles == nil {
		c.Leveling.ExcludedRoles = []string{}
	}
	if c.Automod.BadWordsList == nil {
		c.Automod.BadWordsList = []string{}
	}
}

// Validate checks the document invariants.
func (c *GuildConfig) Validate() error {
	if c.Moderation.MaxWarnings < 1 {
		return fmt.Errorf("%w: moderation.maxWarnings must be at least 1, got %d", ErrInvalidConfig, c.Moderation.MaxWarnings)
	}
	if !(c.Leveling.Multiplier > 0) || math.IsInf(c.Leveling.Multiplier, 0) {
		return fmt.Errorf("%w: leveling.multiplier must be greater than 0, got %v", ErrInvalidConfig, c.Leveling.Multiplier)
	}

	switch c.Moderation.WarnAction {
	case WarnActionTimeout, WarnActionKick, WarnActionNone:
	default:
		return fmt.Errorf("%w: unknown moderation.warnAction %q", ErrInvalidConfig, c.Moderation.WarnAction)
	}

	switch c.Automod.Action {
	case "", AutomodActionDelete, AutomodActionTimeout, AutomodActionWarn:
	default:
		return fmt.Errorf("%w: unknown automod.action %q", ErrInvalidConfig, c.Automod.Action)
	}

	for id, u := range c.Leveling.Users {
		if u.XP < 0 || u.Level < 0 {
			return fmt.Errorf("%w: leveling state of %s is negative", ErrInvalidConfig, id)
		}
	}
	for level := range c.Leveling.RoleRewards {
		if level < 1 {
			return fmt.Errorf("%w: role reward level must be at least 1, got %d", ErrInvalidConfig, level)
		}
	}
	return nil
}

// Clone returns a deep copy of the document.
func (c *GuildConfig) Clone() *GuildConfig {
	if c == nil {
		return nil
	}
	out := *c

	out.Automod.BadWordsList = slices.Clone(c.Automod.BadWordsList)
	out.Leveling.ExcludedChannels = slices.Clone(c.Leveling.ExcludedChannels)
	out.Leveling.ExcludedRoles = slices.Clone(c.Leveling.ExcludedRoles)

	if c.Leveling.Users != nil {
		out.Leveling.Users = make(map[string]LevelingUser, len(c.Leveling.Users))
		for k, v := range c.Leveling.Users {
			out.Leveling.Users[k] = v
		}
	}
	if c.Leveling.RoleRewards != nil {
		out.Leveling.RoleRewards = make(map[int]string, len(c.Leveling.RoleRewards))
		for k, v := range c.Leveling.RoleRewards {
			out.Leveling.RoleRewards[k] = v
		}
	}
	if c.Warnings != nil {
		out.Warnings = make(map[string][]Warning, len(c.Warnings))
		for k, v := range c.Warnings {
			out.Warnings[k] = slices.Clone(v)
		}
	}
	return &out
}
