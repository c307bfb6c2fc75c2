package leaderboardservice

import (
	"cmp"
	"slices"

	leaguefetcher "loltools/fetcher/data/league"
)

// Row is a ladder entry with its computed win rate and final position.
type Row struct {
	Rank         int     `json:"rank"`
	Tier         string  `json:"tier"`
	Division     string  `json:"division"`
	PlayerID     string  `json:"playerId"`
	SummonerName string  `json:"summonerName,omitempty"`
	LeaguePoints int     `json:"leaguePoints"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"winRate"`
	Veteran      bool    `json:"veteran"`
	Inactive     bool    `json:"inactive"`
	FreshBlood   bool    `json:"freshBlood"`
	HotStreak    bool    `json:"hotStreak"`
	QueueType    string  `json:"queueType"`
}

// Record returns the row as a generic record, keyed by the json names.
func (r Row) Record() map[string]any {
	return map[string]any{
		"rank":         r.Rank,
		"tier":         r.Tier,
		"division":     r.Division,
		"playerId":     r.PlayerID,
		"summonerName": r.SummonerName,
		"leaguePoints": r.LeaguePoints,
		"wins":         r.Wins,
		"losses":       r.Losses,
		"winRate":      r.WinRate,
		"veteran":      r.Veteran,
		"inactive":     r.Inactive,
		"freshBlood":   r.FreshBlood,
		"hotStreak":    r.HotStreak,
		"queueType":    r.QueueType,
	}
}

func newRow(entry leaguefetcher.LeagueEntry) Row {
	return Row{
		Tier:         derefOrEmpty(entry.Tier),
		Division:     derefOrEmpty(entry.Rank),
		PlayerID:     entry.PlayerID(),
		SummonerName: entry.SummonerName,
		LeaguePoints: entry.LeaguePoints,
		Wins:         entry.Wins,
		Losses:       entry.Losses,
		WinRate:      entry.WinRate(),
		Veteran:      entry.Veteran,
		Inactive:     entry.Inactive,
		FreshBlood:   entry.FreshBlood,
		HotStreak:    entry.HotStreak,
		QueueType:    derefOrEmpty(entry.QueueType),
	}
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// Higher league points first, then higher win rate.
func compareRows(a, b Row) int {
	if c := cmp.Compare(b.LeaguePoints, a.LeaguePoints); c != 0 {
		return c
	}
	return cmp.Compare(b.WinRate, a.WinRate)
}

// TopN keeps only the best N rows seen so far.
// Ties keep the order in which the rows were seen.
type TopN struct {
	n    int
	rows []Row
}

// NewTopN creates a empty accumulator for n rows.
func NewTopN(n int) *TopN {
	return &TopN{
		n:    n,
		rows: make([]Row, 0, n),
	}
}

// Merge adds a page to the accumulator, then sorts and truncates to N.
// A player already kept keeps its best entry, so nothing cut before can outrank a kept row.
// Returns how many entries were merged.
func (t *TopN) Merge(entries []leaguefetcher.LeagueEntry) int {
	// Index the kept rows by the player.
	index := make(map[string]int, len(t.rows))
	for i, row := range t.rows {
		if row.PlayerID != "" {
			index[row.PlayerID] = i
		}
	}

	for _, entry := range entries {
		row := newRow(entry)

		if i, exists := index[row.PlayerID]; exists && row.PlayerID != "" {
			if compareRows(row, t.rows[i]) < 0 {
				t.rows[i] = row
			}
			continue
		}

		t.rows = append(t.rows, row)
		if row.PlayerID != "" {
			index[row.PlayerID] = len(t.rows) - 1
		}
	}

	slices.SortStableFunc(t.rows, compareRows)

	if len(t.rows) > t.n {
		t.rows = t.rows[:t.n]
	}

	return len(entries)
}

// Len returns how many rows are kept.
func (t *TopN) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the kept rows ranked from 1.
func (t *TopN) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		row.Rank = i + 1
		rows[i] = row
	}
	return rows
}
