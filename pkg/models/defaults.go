package models

// SchemaVersion is stamped on every document built by DefaultGuildConfig.
// Bump it when a default changes meaning.
const SchemaVersion = 1

// DefaultGuildConfig builds the document a guild starts with.
// It is the only place defaults are written down.
func DefaultGuildConfig() *GuildConfig {
	cfg := &GuildConfig{
		SchemaVersion: SchemaVersion,
		Moderation: ModerationConfig{
			BanEnabled:      true,
			KickEnabled:     true,
			TimeoutEnabled:  true,
			WarnEnabled:     true,
			ClearEnabled:    true,
			LockEnabled:     true,
			SlowmodeEnabled: true,
			RoleEnabled:     true,
			NicknameEnabled: true,
			LogActions:      true,
			AutoWarnActions: false,
			MaxWarnings:     3,
			WarnAction:      WarnActionTimeout,
		},
		Automod: AutomodConfig{
			Action: AutomodActionDelete,
		},
		Leveling: LevelingConfig{
			Multiplier: 1,
		},
		Welcome: WelcomeConfig{
			Message:    "Welcome {user} to {server}!",
			EmbedTitle: "👋 Welcome!",
			EmbedColor: "#00FF00",
		},
		Goodbye: GoodbyeConfig{
			Message:    "{user} has left {server}. Goodbye!",
			EmbedTitle: "👋 Goodbye!",
			EmbedColor: "#FF0000",
		},
	}
	cfg.Normalize()
	return cfg
}
