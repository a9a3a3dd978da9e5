// Package automod evaluates guild messages against the automod rules of the
// guild config. Evaluate and Resolve are pure: they return what should happen
// and the caller executes the effects.
package automod

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Violation is the name of a broken rule. The names appear in warning reasons
// and audit lines.
type Violation string

const (
	ViolationRepeatedChars Violation = "excessive repeated characters"
	ViolationCaps          Violation = "excessive caps"
	ViolationEmojis        Violation = "excessive emojis"
	ViolationMentions      Violation = "excessive mentions"
	ViolationBadWord       Violation = "inappropriate language"
	ViolationInvite        Violation = "Discord invite"
	ViolationLink          Violation = "external link"
)

// Thresholds of the anti-spam rule.
const (
	RepeatRun     = 5
	CapsMinLength = 5
	CapsRatio     = 0.7
	MaxEmojis     = 5
	MaxMentions   = 3
)

var (
	shortcodePattern = regexp.MustCompile(`:\w+:`)
	mentionPattern   = regexp.MustCompile(`<@[!&]?\d+>`)
	invitePattern    = regexp.MustCompile(`(?i)discord\.gg/[a-z0-9]+|discordapp\.com/invite/[a-z0-9]+`)
	linkPattern      = regexp.MustCompile(`(?i)https?://\S+`)
)

// Evaluate returns the violations of text in rule order. Exempt authors are
// never flagged.
func Evaluate(text string, authorExempt bool, cfg models.AutomodConfig) []Violation {
	if authorExempt {
		return nil
	}

	var out []Violation

	if cfg.AntiSpam {
		if hasRepeatedRun(text, RepeatRun) {
			out = append(out, ViolationRepeatedChars)
		}
		if isShouting(text) {
			out = append(out, ViolationCaps)
		}
		if countEmojis(text) > MaxEmojis {
			out = append(out, ViolationEmojis)
		}
		if len(mentionPattern.FindAllStringIndex(text, -1)) > MaxMentions {
			out = append(out, ViolationMentions)
		}
	}

	if cfg.BadWords && containsBadWord(text, cfg.BadWordsList) {
		out = append(out, ViolationBadWord)
	}

	if cfg.AntiInvite && invitePattern.MatchString(text) {
		out = append(out, ViolationInvite)
	}

	if cfg.AntiLink && linkPattern.MatchString(text) {
		out = append(out, ViolationLink)
	}

	return out
}

// hasRepeatedRun reports whether text contains n identical runes in a row.
// Line terminators never count as part of a run.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if isLineTerminator(r) {
			run = 0
			continue
		}
		if run > 0 && r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func isShouting(text string) bool {
	length := utf8.RuneCountInString(text)
	if length <= CapsMinLength {
		return false
	}
	caps := 0
	for _, r := range text {
		if r >= 'A' && r <= 'Z' {
			caps++
		}
	}
	return float64(caps)/float64(length) > CapsRatio
}

// countEmojis counts :shortcode: sequences plus pictographic runes.
func countEmojis(text string) int {
	n := len(shortcodePattern.FindAllStringIndex(text, -1))
	for _, r := range text {
		if (r >= 0x1F300 && r <= 0x1F8FF) || (r >= 0x2600 && r <= 0x27BF) {
			n++
		}
	}
	return n
}

func containsBadWord(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if w == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// Join renders violations the way they appear in reasons: comma separated.
func Join(violations []Violation) string {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
