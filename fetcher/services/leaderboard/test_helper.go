package leaderboardservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	leaguefetcher "loltools/fetcher/data/league"
	"loltools/fetcher/requests"
	"loltools/pkg/regions"

	"github.com/stretchr/testify/mock"
)

// Page fetcher mock implementation.
type MockPageFetcher struct {
	mock.Mock
}

func (m *MockPageFetcher) GetLeagueEntries(
	ctx context.Context,
	cred requests.Credential,
	queue string,
	tier string,
	division string,
	region regions.SubRegion,
	page int,
) ([]leaguefetcher.LeagueEntry, error) {
	args := m.Called(ctx, cred, queue, tier, division, region, page)
	entries, _ := args.Get(0).([]leaguefetcher.LeagueEntry)
	return entries, args.Error(1)
}

// Expect a call for the page on the default test request.
func (m *MockPageFetcher) onPage(page int) *mock.Call {
	return m.On("GetLeagueEntries", mock.Anything, mock.Anything, "RANKED_SOLO_5x5", "DIAMOND", "I", regions.SubRegion("NA1"), page)
}

// Records every wait instead of blocking.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

// Helper to initialize the service with a mocked fetcher.
func setupTestService(config LeaderboardServiceConfig, keys ...string) (*LeaderboardService, *MockPageFetcher, *sleepRecorder) {
	if len(keys) == 0 {
		keys = []string{"RGAPI-test"}
	}
	ring, err := requests.NewCredentialRing(keys)
	if err != nil {
		panic(err)
	}

	fetcher := new(MockPageFetcher)
	recorder := &sleepRecorder{}

	service := NewLeaderboardService(&LeaderboardServiceDeps{
		Fetcher:     fetcher,
		Credentials: ring,
		Config:      config,
		Sleep:       recorder.sleep,
	})

	return service, fetcher, recorder
}

// Request used on most tests, diamond I solo queue on NA.
func defaultRequest() Request {
	return Request{
		Queue:  "soloq",
		Rank:   "d1",
		Region: "NA",
		N:      20,
	}
}

// Create a entry with the given player and league points.
func createEntry(id string, lp, wins, losses int) leaguefetcher.LeagueEntry {
	return leaguefetcher.LeagueEntry{
		Puuid:        id,
		SummonerId:   "summoner-" + id,
		LeaguePoints: lp,
		Wins:         wins,
		Losses:       losses,
	}
}

// Create entries with league points going down from highest to lowest, both included.
func createDescendingPage(highest, lowest int) []leaguefetcher.LeagueEntry {
	entries := make([]leaguefetcher.LeagueEntry, 0, highest-lowest+1)
	for lp := highest; lp >= lowest; lp-- {
		entries = append(entries, createEntry(fmt.Sprintf("p%d", lp), lp, 10, 10))
	}
	return entries
}
