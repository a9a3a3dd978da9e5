package discord

import (
	"github.com/bwmarrin/discordgo"
)

// HasPermission reports whether perms contains every bit of required.
// Administrator implies everything.
func HasPermission(perms, required int64) bool {
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&required == required
}

// IsModerator reports whether perms exempt a member from automod.
func IsModerator(perms int64) bool {
	return perms&(discordgo.PermissionManageMessages|discordgo.PermissionAdministrator) != 0
}

// MemberPermissions returns the permissions of userID in channelID, using the
// state cache first and the REST API when the member is not cached. When both
// fail it falls back to the guild-wide permissions of member's roles; guild and
// member may be nil.
func MemberPermissions(s *discordgo.Session, userID, channelID string, guild *discordgo.Guild, member *discordgo.Member) int64 {
	var lookups []permissionLookup
	if s.State != nil {
		lookups = append(lookups, s.State.UserChannelPermissions)
	}
	lookups = append(lookups, func(userID, channelID string) (int64, error) {
		return s.UserChannelPermissions(userID, channelID)
	})
	return resolvePermissions(lookups, userID, channelID, guild, member)
}

type permissionLookup func(userID, channelID string) (int64, error)

func resolvePermissions(lookups []permissionLookup, userID, channelID string, guild *discordgo.Guild, member *discordgo.Member) int64 {
	for _, lookup := range lookups {
		if perms, err := lookup(userID, channelID); err == nil {
			return perms
		}
	}
	if member == nil {
		return 0
	}
	// Message payloads carry the member without its user.
	m := *member
	if m.User == nil {
		m.User = &discordgo.User{ID: userID}
	}
	return GuildPermissions(guild, &m)
}

// GuildPermissions sums the permissions of the member's roles plus @everyone.
func GuildPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil {
		return 0
	}
	if member.User != nil && member.User.ID == guild.OwnerID {
		return discordgo.PermissionAll
	}

	var perms int64
	for _, role := range guild.Roles {
		if role.ID == guild.ID || containsID(member.Roles, role.ID) {
			perms |= role.Permissions
		}
	}
	return perms
}

// HighestRolePosition returns the position of the member's highest role, 0 for @everyone only.
func HighestRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	if guild == nil || member == nil {
		return 0
	}
	highest := 0
	for _, role := range guild.Roles {
		if containsID(member.Roles, role.ID) && role.Position > highest {
			highest = role.Position
		}
	}
	return highest
}

func rolePosition(guild *discordgo.Guild, roleID string) (int, bool) {
	for _, role := range guild.Roles {
		if role.ID == roleID {
			return role.Position, true
		}
	}
	return 0, false
}

// CanAssignRole reports whether member may assign roleID: it needs Manage Roles
// and a highest role above the target role.
func CanAssignRole(guild *discordgo.Guild, member *discordgo.Member, roleID string) bool {
	if guild == nil || member == nil {
		return false
	}
	if !HasPermission(GuildPermissions(guild, member), discordgo.PermissionManageRoles) {
		return false
	}
	pos, ok := rolePosition(guild, roleID)
	if !ok {
		return false
	}
	if member.User != nil && member.User.ID == guild.OwnerID {
		return true
	}
	return HighestRolePosition(guild, member) > pos
}

// CanManageRole reports whether the bot may assign roleID in guildID.
func CanManageRole(s *discordgo.Session, guildID, roleID string) bool {
	if s == nil || s.State == nil || s.State.User == nil {
		return false
	}
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return false
	}
	me, err := s.State.Member(guildID, s.State.User.ID)
	if err != nil {
		return false
	}
	return CanAssignRole(guild, me, roleID)
}

// Outranks reports whether actor sits above target in the role hierarchy.
// The owner outranks everyone and nobody outranks the owner.
func Outranks(guild *discordgo.Guild, actor, target *discordgo.Member) bool {
	if guild == nil || actor == nil || target == nil {
		return false
	}
	if target.User != nil && target.User.ID == guild.OwnerID {
		return false
	}
	if actor.User != nil && actor.User.ID == guild.OwnerID {
		return true
	}
	return HighestRolePosition(guild, actor) > HighestRolePosition(guild, target)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
