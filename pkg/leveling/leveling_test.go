package leveling

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/PancyStudios/PancyGuardGo/pkg/effects"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{399, 1},
		{400, 2},
		{899, 2},
		{900, 3},
		{10_000, 10},
		{1_000_000, 100},
	}
	for _, tt := range tests {
		if got := Level(tt.xp); got != tt.want {
			t.Errorf("Level(%d) = %v, want %v", tt.xp, got, tt.want)
		}
	}
}

func TestProgressOf(t *testing.T) {
	p := ProgressOf(150)
	assert.Equal(t, Progress{Level: 1, Current: 50, Span: 300, Needed: 250}, p)
}

func TestProperty_LevelIsMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(0, 10_000_000).Draw(rt, "a")
		b := rapid.IntRange(a, 10_000_000).Draw(rt, "b")
		if Level(a) > Level(b) {
			rt.Fatalf("Level(%d)=%d > Level(%d)=%d", a, Level(a), b, Level(b))
		}

		l := Level(a)
		if XPForLevel(l) > a || XPForLevel(l+1) <= a {
			rt.Fatalf("xp %d outside level %d bounds", a, l)
		}
	})
}

func fixedRand(v int) Option {
	return WithRand(func(n int) int { return v })
}

func enabled() *models.GuildConfig {
	cfg := models.DefaultGuildConfig()
	cfg.Features.Leveling = true
	return cfg
}

func TestAwardSkips(t *testing.T) {
	e := NewEngine(fixedRand(0))
	now := time.UnixMilli(1_000_000)

	t.Run("feature off", func(t *testing.T) {
		cfg := models.DefaultGuildConfig()
		out := e.Award(Event{UserID: "u", ChannelID: "c", Now: now}, cfg)
		assert.False(t, out.Awarded)
		assert.Empty(t, cfg.Leveling.Users)
	})

	t.Run("excluded channel", func(t *testing.T) {
		cfg := enabled()
		cfg.Leveling.ExcludedChannels = []string{"c"}
		assert.False(t, e.Award(Event{UserID: "u", ChannelID: "c", Now: now}, cfg).Awarded)
	})

	t.Run("excluded role", func(t *testing.T) {
		cfg := enabled()
		cfg.Leveling.ExcludedRoles = []string{"muted"}
		out := e.Award(Event{UserID: "u", ChannelID: "c", MemberRoleIDs: []string{"a", "muted"}, Now: now}, cfg)
		assert.False(t, out.Awarded)
	})
}

func TestAwardCooldown(t *testing.T) {
	e := NewEngine(fixedRand(0))
	cfg := enabled()
	start := time.UnixMilli(10_000_000)

	out := e.Award(Event{UserID: "u", ChannelID: "c", Now: start}, cfg)
	require.True(t, out.Awarded)
	assert.Equal(t, 15, out.Gained)

	out = e.Award(Event{UserID: "u", ChannelID: "c", Now: start.Add(59_999 * time.Millisecond)}, cfg)
	assert.False(t, out.Awarded, "inside cooldown")

	out = e.Award(Event{UserID: "u", ChannelID: "c", Now: start.Add(60 * time.Second)}, cfg)
	assert.True(t, out.Awarded, "cooldown boundary is inclusive")
	assert.Equal(t, 30, cfg.Leveling.Users["u"].XP)
	assert.Equal(t, start.Add(60*time.Second).UnixMilli(), cfg.Leveling.Users["u"].LastMessage)
}

func TestAwardCooldownHalfAndJustPast(t *testing.T) {
	cfg := enabled()
	start := time.UnixMilli(50_000_000)
	e := NewEngine(fixedRand(0))

	require.True(t, e.Award(Event{UserID: "u", ChannelID: "c", Now: start}, cfg).Awarded)

	out := e.Award(Event{UserID: "u", ChannelID: "c", Now: start.Add(30 * time.Second)}, cfg)
	assert.False(t, out.Awarded, "30s after the last award")
	assert.Equal(t, 15, cfg.Leveling.Users["u"].XP)

	out = e.Award(Event{UserID: "u", ChannelID: "c", Now: start.Add(60_001 * time.Millisecond)}, cfg)
	assert.True(t, out.Awarded, "60.001s after the last award")
	assert.Equal(t, 30, cfg.Leveling.Users["u"].XP)
}

func TestAwardGainRangeAndMultiplier(t *testing.T) {
	cfg := enabled()
	cfg.Leveling.Multiplier = 1.5

	out := NewEngine(fixedRand(15)).Award(Event{UserID: "u", Now: time.UnixMilli(1e9)}, cfg)
	assert.Equal(t, 45, out.Gained, "floor(30 * 1.5)")

	cfg = enabled()
	cfg.Leveling.Multiplier = 0.5
	out = NewEngine(fixedRand(0)).Award(Event{UserID: "u", Now: time.UnixMilli(1e9)}, cfg)
	assert.Equal(t, 7, out.Gained, "floor(15 * 0.5)")
}

func TestProperty_GainWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := enabled()
		e := NewEngine()
		out := e.Award(Event{UserID: "u", Now: time.UnixMilli(1e9)}, cfg)
		if out.Gained < MinGain || out.Gained > MaxGain {
			rt.Fatalf("gain %d outside [%d,%d]", out.Gained, MinGain, MaxGain)
		}
		if out.User.Level != Level(out.User.XP) {
			rt.Fatalf("stored level %d does not match xp %d", out.User.Level, out.User.XP)
		}
	})
}

func TestAwardLevelUpEffects(t *testing.T) {
	cfg := enabled()
	cfg.LogChannel = "log"
	cfg.Leveling.AnnounceChannel = "announce"
	cfg.Leveling.RoleRewards = map[int]string{1: "r1"}
	cfg.Leveling.Users["u"] = models.LevelingUser{XP: 90, Level: 0}

	out := NewEngine(fixedRand(0)).Award(Event{UserID: "u", ChannelID: "c", Now: time.UnixMilli(1e9)}, cfg)
	require.True(t, out.LeveledUp)
	assert.Equal(t, 1, out.User.Level)
	assert.Equal(t, []effects.Kind{effects.KindSendMessage, effects.KindGrantRole, effects.KindAuditLog}, effects.Kinds(out.Effects))
	assert.Equal(t, "announce", out.Effects[0].ChannelID)
	assert.Equal(t, "r1", out.Effects[1].RoleID)
	assert.True(t, out.Effects[2].AfterPrevious)
}

func TestAwardSkipsRoleMemberAlreadyHas(t *testing.T) {
	cfg := enabled()
	cfg.Leveling.RoleRewards = map[int]string{1: "r1"}
	cfg.Leveling.Users["u"] = models.LevelingUser{XP: 90}

	out := NewEngine(fixedRand(0)).Award(Event{UserID: "u", MemberRoleIDs: []string{"r1"}, Now: time.UnixMilli(1e9)}, cfg)
	require.True(t, out.LeveledUp)
	assert.Empty(t, out.Effects)
}

func TestRankAndLeaderboard(t *testing.T) {
	users := map[string]models.LevelingUser{
		"b": {XP: 500},
		"a": {XP: 500},
		"c": {XP: 900},
		"d": {XP: 10},
	}

	rank, ok := Rank(users, "c")
	assert.True(t, ok)
	assert.Equal(t, 1, rank)

	rank, _ = Rank(users, "a")
	assert.Equal(t, 2, rank, "ties break by user ID")
	rank, _ = Rank(users, "b")
	assert.Equal(t, 3, rank)

	_, ok = Rank(users, "zzz")
	assert.False(t, ok)

	top := Leaderboard(users, 2)
	require.Len(t, top, 2)
	assert.Equal(t, Entry{Rank: 1, UserID: "c", XP: 900, Level: 3}, top[0])
	assert.Equal(t, "a", top[1].UserID)
}

func TestLeaderboardOrdersByXP(t *testing.T) {
	users := map[string]models.LevelingUser{
		"A": {XP: 500},
		"B": {XP: 1500},
		"C": {XP: 10},
	}

	assert.Equal(t, []Entry{
		{Rank: 1, UserID: "B", XP: 1500, Level: 3},
		{Rank: 2, UserID: "A", XP: 500, Level: 2},
		{Rank: 3, UserID: "C", XP: 10, Level: 0},
	}, Leaderboard(users, 10))

	rank, ok := Rank(users, "A")
	assert.True(t, ok)
	assert.Equal(t, 2, rank)
}

func TestLeaderboardDefaultsToTen(t *testing.T) {
	users := map[string]models.LevelingUser{}
	for i := 0; i < 25; i++ {
		users[fmt.Sprintf("u%02d", i)] = models.LevelingUser{XP: i}
	}
	assert.Len(t, Leaderboard(users, 0), DefaultLeaderboardSize)
	assert.Empty(t, Leaderboard(nil, 5))
}
