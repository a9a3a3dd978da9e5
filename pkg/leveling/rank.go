package leveling

import (
	"sort"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// DefaultLeaderboardSize is the number of members shown by default.
const DefaultLeaderboardSize = 10

// Entry is one ranked member. Rank is 1-based.
type Entry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
}

// Ranked orders every member by XP descending, ties by user ID ascending.
func Ranked(users map[string]models.LevelingUser) []Entry {
	out := make([]Entry, 0, len(users))
	for id, u := range users {
		out = append(out, Entry{UserID: id, XP: u.XP, Level: Level(u.XP)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].UserID < out[j].UserID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Rank returns the position of userID, or false when the member has no XP data.
func Rank(users map[string]models.LevelingUser, userID string) (int, bool) {
	if _, ok := users[userID]; !ok {
		return 0, false
	}
	for _, e := range Ranked(users) {
		if e.UserID == userID {
			return e.Rank, true
		}
	}
	return 0, false
}

// Leaderboard returns the top n members. n <= 0 means DefaultLeaderboardSize.
func Leaderboard(users map[string]models.LevelingUser, n int) []Entry {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	all := Ranked(users)
	if len(all) > n {
		all = all[:n]
	}
	return all
}
