package leaguefetcher

// LeagueEntry defines the type returned by the league entries endpoint.
type LeagueEntry struct {
	FreshBlood   bool    `json:"freshBlood"`
	HotStreak    bool    `json:"hotStreak"`
	Inactive     bool    `json:"inactive"`
	LeagueId     string  `json:"leagueId,omitempty"`
	LeaguePoints int     `json:"leaguePoints"`
	Losses       int     `json:"losses"`
	Puuid        string  `json:"puuid"`
	QueueType    *string `json:"queueType,omitempty"`
	Rank         *string `json:"rank,omitempty"`
	SummonerId   string  `json:"summonerId,omitempty"`
	SummonerName string  `json:"summonerName,omitempty"`
	Tier         *string `json:"tier,omitempty"`
	Veteran      bool    `json:"veteran"`
	Wins         int     `json:"wins"`
}

// PlayerID returns the puuid, older payloads only carry the summoner id.
func (e LeagueEntry) PlayerID() string {
	if e.Puuid != "" {
		return e.Puuid
	}
	return e.SummonerId
}

// WinRate returns wins / (wins + losses), zero when no game was played.
func (e LeagueEntry) WinRate() float64 {
	games := e.Wins + e.Losses
	if games == 0 {
		return 0
	}
	return float64(e.Wins) / float64(games)
}
