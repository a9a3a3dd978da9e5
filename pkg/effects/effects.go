// Package effects describes the side effects decided by automod, leveling and
// the member pipeline, and executes them against Discord.
package effects

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Kind identifies an effect.
type Kind string

const (
	KindDeleteMessage Kind = "deleteMessage"
	KindTimeoutMember Kind = "timeoutMember"
	KindKickMember    Kind = "kickMember"
	KindRecordWarning Kind = "recordWarning"
	KindSendMessage   Kind = "sendMessage"
	KindSendEmbed     Kind = "sendEmbed"
	KindNotifyUser    Kind = "notifyUser"
	KindGrantRole     Kind = "grantRole"
	KindAuditLog      Kind = "auditLog"
)

// Effect is one platform or storage action. Only the fields relevant to Kind are set.
type Effect struct {
	Kind      Kind
	ChannelID string
	MessageID string
	UserID    string
	RoleID    string
	Content   string
	Reason    string
	Duration  time.Duration
	Embed     *discordgo.MessageEmbed
	Warning   models.Warning

	// AfterPrevious skips the effect when the one before it failed.
	AfterPrevious bool
}

// DeleteMessage removes a message.
func DeleteMessage(channelID, messageID string) Effect {
	return Effect{Kind: KindDeleteMessage, ChannelID: channelID, MessageID: messageID}
}

// TimeoutMember times a member out for d.
func TimeoutMember(userID string, d time.Duration, reason string) Effect {
	return Effect{Kind: KindTimeoutMember, UserID: userID, Duration: d, Reason: reason}
}

// KickMember kicks a member from the guild.
func KickMember(userID, reason string) Effect {
	return Effect{Kind: KindKickMember, UserID: userID, Reason: reason}
}

// RecordWarning appends w to the member's warnings.
func RecordWarning(userID string, w models.Warning) Effect {
	return Effect{Kind: KindRecordWarning, UserID: userID, Warning: w}
}

// SendMessage posts content in a channel.
func SendMessage(channelID, content string) Effect {
	return Effect{Kind: KindSendMessage, ChannelID: channelID, Content: content}
}

// SendEmbed posts an embed in a channel.
func SendEmbed(channelID string, embed *discordgo.MessageEmbed) Effect {
	return Effect{Kind: KindSendEmbed, ChannelID: channelID, Embed: embed}
}

// NotifyUser sends a DM. Failures are expected (closed DMs) and never reported.
func NotifyUser(userID, content string) Effect {
	return Effect{Kind: KindNotifyUser, UserID: userID, Content: content}
}

// GrantRole adds a role to a member.
func GrantRole(userID, roleID, reason string) Effect {
	return Effect{Kind: KindGrantRole, UserID: userID, RoleID: roleID, Reason: reason}
}

// AuditLog posts a moderation line to the log channel.
func AuditLog(channelID, content string) Effect {
	return Effect{Kind: KindAuditLog, ChannelID: channelID, Content: content}
}

// Then marks e as dependent on the success of the previous effect.
func (e Effect) Then() Effect {
	e.AfterPrevious = true
	return e
}

// Kinds returns the kinds of list in order.
func Kinds(list []Effect) []Kind {
	out := make([]Kind, len(list))
	for i, e := range list {
		out[i] = e.Kind
	}
	return out
}
