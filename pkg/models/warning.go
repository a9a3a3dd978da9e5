package models

import (
	"strconv"
	"time"
)

// Warning representa una advertencia individual.
// Once appended to a member's list it is never modified.
type Warning struct {
	ID        string `bson:"id" json:"id"`
	Reason    string `bson:"reason" json:"reason"`
	Moderator string `bson:"moderator" json:"moderator"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}

// NewWarning builds a warning whose ID is its creation time in milliseconds.
func NewWarning(reason, moderatorID string, now time.Time) Warning {
	ms := now.UnixMilli()
	return Warning{
		ID:        strconv.FormatInt(ms, 10),
		Reason:    reason,
		Moderator: moderatorID,
		Timestamp: ms,
	}
}

// Time returns the creation time of the warning.
func (w Warning) Time() time.Time {
	return time.UnixMilli(w.Timestamp)
}

// WarningSummary is the infractions view of one member.
type WarningSummary struct {
	Total    int       `json:"total"`
	LastDay  int       `json:"lastDay"`
	LastWeek int       `json:"lastWeek"`
	Recent   []Warning `json:"recent"`
}

// SummarizeWarnings counts warnings per window and returns up to limit of them, newest first.
func SummarizeWarnings(list []Warning, now time.Time, limit int) WarningSummary {
	summary := WarningSummary{Total: len(list)}
	dayAgo := now.Add(-24 * time.Hour).UnixMilli()
	weekAgo := now.Add(-7 * 24 * time.Hour).UnixMilli()

	for _, w := range list {
		if w.Timestamp > dayAgo {
			summary.LastDay++
		}
		if w.Timestamp > weekAgo {
			summary.LastWeek++
		}
	}

	for i := len(list) - 1; i >= 0 && len(summary.Recent) < limit; i-- {
		summary.Recent = append(summary.Recent, list[i])
	}
	return summary
}
