package automod

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/PancyStudios/PancyGuardGo/pkg/effects"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// TimeoutDuration is applied when the automod action is timeout.
const TimeoutDuration = 5 * time.Minute

// Input describes the flagged message.
type Input struct {
	ChannelID string
	MessageID string
	AuthorID  string
	AuthorTag string
	GuildName string
	Content   string
	// BotID is recorded as the moderator of automod warnings.
	BotID string
}

// Decision is the outcome of a flagged message.
type Decision struct {
	Violations []Violation
	Summary    string
	// Hosts are the normalised hosts of the links found in the message.
	Hosts   []string
	Effects []effects.Effect
}

// Resolve turns violations into the effect list. It returns an empty decision
// when there are no violations.
func Resolve(in Input, violations []Violation, cfg *models.GuildConfig, now time.Time) Decision {
	if len(violations) == 0 {
		return Decision{}
	}

	joined := Join(violations)
	reason := "Auto-mod: " + joined

	d := Decision{
		Violations: violations,
		Summary:    "Mensaje eliminado",
		Hosts:      LinkHosts(in.Content),
	}
	d.Effects = append(d.Effects, effects.DeleteMessage(in.ChannelID, in.MessageID))

	switch cfg.Automod.Action {
	case models.AutomodActionTimeout:
		d.Effects = append(d.Effects, effects.TimeoutMember(in.AuthorID, TimeoutDuration, reason))
		d.Summary = "Mensaje eliminado, usuario aislado por 5 minutos"
	case models.AutomodActionWarn:
		d.Effects = append(d.Effects, effects.RecordWarning(in.AuthorID, models.NewWarning(reason, in.BotID, now)))
		d.Summary = "Mensaje eliminado, advertencia registrada"
	}

	if cfg.Moderation.LogActions && cfg.LogChannel != "" {
		d.Effects = append(d.Effects, effects.AuditLog(cfg.LogChannel, auditLine(in, d, joined, now)))
	}

	if cfg.Automod.SendWarning {
		d.Effects = append(d.Effects, effects.NotifyUser(in.AuthorID, fmt.Sprintf(
			"⚠️ **Tu mensaje en %s fue eliminado automáticamente**\n**Motivo:** %s\n**Acción:** %s",
			in.GuildName, joined, d.Summary,
		)))
	}

	return d
}

func auditLine(in Input, d Decision, joined string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🤖 **Auto-Mod:** %s\n", d.Summary)
	fmt.Fprintf(&b, "**Usuario:** %s (%s)\n", in.AuthorTag, in.AuthorID)
	fmt.Fprintf(&b, "**Canal:** <#%s>\n", in.ChannelID)
	fmt.Fprintf(&b, "**Infracciones:** %s\n", joined)
	if len(d.Hosts) > 0 {
		fmt.Fprintf(&b, "**Dominios:** %s\n", strings.Join(d.Hosts, ", "))
	}
	fmt.Fprintf(&b, "**Mensaje:** `%s`\n", Excerpt(in.Content, 100))
	fmt.Fprintf(&b, "**Hora:** <t:%d:F>", now.Unix())
	return b.String()
}

// Excerpt returns the first n runes of s, followed by "..." when cut.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// LinkHosts returns the distinct hosts of the http(s) links in text, lower
// cased and converted to their ASCII (punycode) form.
func LinkHosts(text string) []string {
	var hosts []string
	seen := map[string]bool{}

	for _, raw := range linkPattern.FindAllString(text, -1) {
		parsed, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		if host == "" {
			continue
		}
		if ascii, err := idna.ToASCII(host); err == nil {
			host = ascii
		}
		if !seen[host] {
			seen[host] = true
			hosts = append(hosts, host)
		}
	}
	return hosts
}
