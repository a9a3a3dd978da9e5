package models

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDefaultGuildConfig(t *testing.T) {
	cfg := DefaultGuildConfig()

	if cfg.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %v, want %v", cfg.SchemaVersion, SchemaVersion)
	}
	if cfg.Moderation.MaxWarnings != 3 {
		t.Errorf("MaxWarnings = %v, want %v", cfg.Moderation.MaxWarnings, 3)
	}
	if cfg.Moderation.WarnAction != WarnActionTimeout {
		t.Errorf("WarnAction = %v, want %v", cfg.Moderation.WarnAction, WarnActionTimeout)
	}
	if cfg.Leveling.Multiplier != 1 {
		t.Errorf("Multiplier = %v, want %v", cfg.Leveling.Multiplier, 1)
	}
	if cfg.LogChannel != "" {
		t.Errorf("LogChannel = %q, want empty", cfg.LogChannel)
	}
	if cfg.Warnings == nil || cfg.Leveling.Users == nil || cfg.Leveling.RoleRewards == nil {
		t.Error("default maps should be non-nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestDefaultGuildConfigIsFresh(t *testing.T) {
	a := DefaultGuildConfig()
	b := DefaultGuildConfig()

	a.Automod.BadWordsList = append(a.Automod.BadWordsList, "foo")
	a.Warnings["1"] = []Warning{{ID: "1"}}

	if len(b.Automod.BadWordsList) != 0 || len(b.Warnings) != 0 {
		t.Error("defaults must not share state between calls")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *GuildConfig)
	}{
		{"zero max warnings", func(c *GuildConfig) { c.Moderation.MaxWarnings = 0 }},
		{"zero multiplier", func(c *GuildConfig) { c.Leveling.Multiplier = 0 }},
		{"negative multiplier", func(c *GuildConfig) { c.Leveling.Multiplier = -1 }},
		{"nan multiplier", func(c *GuildConfig) { c.Leveling.Multiplier = math.NaN() }},
		{"unknown warn action", func(c *GuildConfig) { c.Moderation.WarnAction = "ban" }},
		{"unknown automod action", func(c *GuildConfig) { c.Automod.Action = "ban" }},
		{"negative xp", func(c *GuildConfig) { c.Leveling.Users["1"] = LevelingUser{XP: -5} }},
		{"reward at level zero", func(c *GuildConfig) { c.Leveling.RoleRewards[0] = "role" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGuildConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := DefaultGuildConfig()
	cfg.Warnings["u1"] = []Warning{{ID: "1", Reason: "spam"}}
	cfg.Leveling.Users["u1"] = LevelingUser{XP: 10}
	cfg.Automod.BadWordsList = []string{"foo"}

	clone := cfg.Clone()
	clone.Warnings["u1"][0].Reason = "changed"
	clone.Leveling.Users["u1"] = LevelingUser{XP: 99}
	clone.Automod.BadWordsList[0] = "bar"

	if cfg.Warnings["u1"][0].Reason != "spam" {
		t.Error("warnings slice shared with clone")
	}
	if cfg.Leveling.Users["u1"].XP != 10 {
		t.Error("users map shared with clone")
	}
	if cfg.Automod.BadWordsList[0] != "foo" {
		t.Error("bad words shared with clone")
	}
}

func TestIsSection(t *testing.T) {
	if !IsSection("automod") {
		t.Error("automod should be a section")
	}
	if IsSection("logChannel") {
		t.Error("logChannel is a scalar field, not a section")
	}
}

func TestLevelingExclusions(t *testing.T) {
	l := LevelingConfig{ExcludedChannels: []string{"c1"}, ExcludedRoles: []string{"r1"}}

	if !l.IsChannelExcluded("c1") || l.IsChannelExcluded("c2") {
		t.Error("IsChannelExcluded mismatch")
	}
	if !l.HasExcludedRole([]string{"r0", "r1"}) || l.HasExcludedRole([]string{"r2"}) {
		t.Error("HasExcludedRole mismatch")
	}
}

func TestNewWarning(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	w := NewWarning("spam", "mod", now)

	if w.ID != "1700000000123" {
		t.Errorf("ID = %v, want %v", w.ID, "1700000000123")
	}
	if w.Timestamp != 1700000000123 {
		t.Errorf("Timestamp = %v, want %v", w.Timestamp, 1700000000123)
	}
	if !w.Time().Equal(now) {
		t.Errorf("Time() = %v, want %v", w.Time(), now)
	}
}

func TestSummarizeWarnings(t *testing.T) {
	now := time.Now()
	list := []Warning{
		NewWarning("old", "m", now.Add(-30*24*time.Hour)),
		NewWarning("this week", "m", now.Add(-3*24*time.Hour)),
		NewWarning("today", "m", now.Add(-time.Hour)),
	}

	s := SummarizeWarnings(list, now, 2)
	if s.Total != 3 {
		t.Errorf("Total = %v, want %v", s.Total, 3)
	}
	if s.LastDay != 1 {
		t.Errorf("LastDay = %v, want %v", s.LastDay, 1)
	}
	if s.LastWeek != 2 {
		t.Errorf("LastWeek = %v, want %v", s.LastWeek, 2)
	}
	if len(s.Recent) != 2 || s.Recent[0].Reason != "today" || s.Recent[1].Reason != "this week" {
		t.Errorf("Recent = %+v, want newest first limited to 2", s.Recent)
	}
}
