package leaderboardservice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	leaguefetcher "loltools/fetcher/data/league"
	"loltools/fetcher/requests"
	"loltools/internal/testutil"
	"loltools/pkg/apierrors"
	"loltools/pkg/metrics"
	"loltools/pkg/regions"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func emptyPage() []leaguefetcher.LeagueEntry {
	return []leaguefetcher.LeagueEntry{}
}

func retryAfter(d time.Duration) *time.Duration {
	return &d
}

// Simple test for asserting that everything is fine with the service creation.
func TestNewLeaderboardService(t *testing.T) {
	service, fetcher, _ := setupTestService(DefaultConfig())

	assert.NotNil(t, service)
	assert.Equal(t, fetcher, service.fetcher)
	assert.NotNil(t, service.logger)
	assert.NotNil(t, service.sleep)
	assert.Equal(t, 1, service.credentials.Len())
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 10*time.Second, config.RateLimitFallback)
	assert.Equal(t, 5*time.Second, config.UnavailableDelay)
	assert.Equal(t, 10, config.MaxRetries)
	assert.False(t, config.RotateOnRateLimit)
}

func TestAggregateTopOfFirstPage(t *testing.T) {
	service, fetcher, recorder := setupTestService(DefaultConfig())

	fetcher.onPage(1).Return(createDescendingPage(200, 1), nil).Once()
	fetcher.onPage(2).Return(emptyPage(), nil).Once()

	result, err := service.Aggregate(context.Background(), defaultRequest())
	require.NoError(t, err)

	require.Len(t, result.Rows, 20)
	for i, row := range result.Rows {
		assert.Equal(t, i+1, row.Rank)
		assert.Equal(t, 200-i, row.LeaguePoints)
		assert.Equal(t, "DIAMOND", row.Tier)
		assert.Equal(t, "I", row.Division)
		assert.Equal(t, "RANKED_SOLO_5x5", row.QueueType)
		assert.Equal(t, 0.5, row.WinRate)
	}

	assert.Equal(t, 2, result.PagesFetched)
	assert.False(t, result.Partial)
	assert.Equal(t, regions.SubRegion("NA1"), result.Region)
	assert.Empty(t, recorder.recorded())
	testutil.VerifyAllMocks(t, fetcher)
}

func TestAggregateGoldFour(t *testing.T) {
	service, fetcher, _ := setupTestService(DefaultConfig())

	fetcher.On("GetLeagueEntries", mock.Anything, mock.Anything, "RANKED_SOLO_5x5", "GOLD", "IV", regions.SubRegion("EUW1"), 1).
		Return(createDescendingPage(200, 1), nil).Once()
	fetcher.On("GetLeagueEntries", mock.Anything, mock.Anything, "RANKED_SOLO_5x5", "GOLD", "IV", regions.SubRegion("EUW1"), 2).
		Return(emptyPage(), nil).Once()

	result, err := service.Aggregate(context.Background(), Request{Queue: "solo", Rank: "g4", Region: "euw"})
	require.NoError(t, err)

	require.Len(t, result.Rows, DefaultTopN)
	assert.Equal(t, 1, result.Rows[0].Rank)
	assert.Equal(t, 200, result.Rows[0].LeaguePoints)
	assert.Equal(t, 20, result.Rows[19].Rank)
	assert.Equal(t, 181, result.Rows[19].LeaguePoints)
	assert.Equal(t, "GOLD", result.Rows[19].Tier)
	assert.Equal(t, "IV", result.Rows[19].Division)
	testutil.VerifyAllMocks(t, fetcher)
}

func TestAggregateKeepsEntryValues(t *testing.T) {
	service, fetcher, _ := setupTestService(DefaultConfig())

	tier, rank, queue := "DIAMOND", "I", "RANKED_SOLO_5x5"
	entry := createEntry("a", 10, 1, 0)
	entry.Tier, entry.Rank, entry.QueueType = &tier, &rank, &queue
	entry.HotStreak = true
	entry.SummonerName = "Faker"

	fetcher.onPage(1).Return([]leaguefetcher.LeagueEntry{entry}, nil).Once()
	fetcher.onPage(2).Return(emptyPage(), nil).Once()

	result, err := service.Aggregate(context.Background(), defaultRequest())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	assert.Equal(t, "Faker", result.Rows[0].SummonerName)
	assert.True(t, result.Rows[0].HotStreak)
	assert.Equal(t, 1.0, result.Rows[0].WinRate)
}

// Run tests on the waits made for each recoverable error.
func TestAggregateRetries(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedWaits []time.Duration
	}{
		{
			name:          "rateLimitedWithRetryAfter",
			err:           &apierrors.RateLimitedError{RetryAfter: retryAfter(5 * time.Second)},
			expectedWaits: []time.Duration{5 * time.Second},
		},
		{
			name:          "rateLimitedWithoutRetryAfter",
			err:           &apierrors.RateLimitedError{},
			expectedWaits: []time.Duration{10 * time.Second},
		},
		{
			name:          "unavailable",
			err:           errors.Join(errors.New("page 2"), apierrors.ErrUnavailable),
			expectedWaits: []time.Duration{5 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, fetcher, recorder := setupTestService(DefaultConfig())

			fetcher.onPage(1).Return(createDescendingPage(200, 101), nil).Once()
			fetcher.onPage(2).Return(nil, tt.err).Once()
			fetcher.onPage(2).Return(createDescendingPage(100, 1), nil).Once()
			fetcher.onPage(3).Return(emptyPage(), nil).Once()

			request := defaultRequest()
			request.N = 150
			result, err := service.Aggregate(context.Background(), request)
			require.NoError(t, err)

			// Both pages are merged, the retried page is fetched once more.
			require.Len(t, result.Rows, 150)
			assert.Equal(t, 200, result.Rows[0].LeaguePoints)
			assert.Equal(t, 51, result.Rows[149].LeaguePoints)
			assert.Equal(t, 3, result.PagesFetched)
			assert.Equal(t, tt.expectedWaits, recorder.recorded())
			fetcher.AssertNumberOfCalls(t, "GetLeagueEntries", 4)
		})
	}
}

func TestAggregateMaxRetriesExceeded(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 2
	service, fetcher, recorder := setupTestService(config)

	fetcher.onPage(1).Return(nil, apierrors.ErrUnavailable)

	result, err := service.Aggregate(context.Background(), defaultRequest())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apierrors.ErrUnavailable)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Len(t, recorder.recorded(), 2)
	fetcher.AssertNumberOfCalls(t, "GetLeagueEntries", 3)
}

func TestAggregateFatalErrors(t *testing.T) {
	tests := []struct {
		name   string
		result *testutil.OperationResult[[]leaguefetcher.LeagueEntry]
		check  func(t *testing.T, err error)
	}{
		{
			name:   "upstreamStatus",
			result: &testutil.OperationResult[[]leaguefetcher.LeagueEntry]{Err: &apierrors.UpstreamError{StatusCode: 403, URL: "http://riot"}},
			check: func(t *testing.T, err error) {
				var upstream *apierrors.UpstreamError
				require.ErrorAs(t, err, &upstream)
				assert.Equal(t, 403, upstream.StatusCode)
			},
		},
		{
			name:   "transport",
			result: testutil.GetMockUpstreamError[[]leaguefetcher.LeagueEntry](),
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), testutil.UpstreamError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, fetcher, recorder := setupTestService(DefaultConfig())

			fetcher.onPage(1).Return(createDescendingPage(200, 101), nil).Once()
			fetcher.onPage(2).Return(tt.result.Data, tt.result.Err).Once()

			result, err := service.Aggregate(context.Background(), defaultRequest())

			// The accumulated page is discarded.
			assert.Nil(t, result)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to fetch page 2")
			tt.check(t, err)
			assert.Empty(t, recorder.recorded())
			fetcher.AssertNotCalled(t, "GetLeagueEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, 3)
		})
	}
}

func TestAggregatePageLimit(t *testing.T) {
	service, fetcher, _ := setupTestService(DefaultConfig())

	fetcher.onPage(1).Return(createDescendingPage(300, 201), nil).Once()
	fetcher.onPage(2).Return(createDescendingPage(200, 101), nil).Once()

	request := defaultRequest()
	request.PageLimit = 2
	result, err := service.Aggregate(context.Background(), request)
	require.NoError(t, err)

	assert.True(t, result.Partial)
	assert.Equal(t, 2, result.PagesFetched)
	assert.Len(t, result.Rows, 20)
	fetcher.AssertNotCalled(t, "GetLeagueEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, 3)
}

func TestAggregateStopsOnFirstEmptyPage(t *testing.T) {
	service, fetcher, _ := setupTestService(DefaultConfig())

	fetcher.onPage(3).Return(createDescendingPage(50, 41), nil).Once()
	fetcher.onPage(4).Return(createDescendingPage(40, 31), nil).Once()
	fetcher.onPage(5).Return(emptyPage(), nil).Once()

	request := defaultRequest()
	request.StartPage = 3
	result, err := service.Aggregate(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, 3, result.PagesFetched)
	assert.Len(t, result.Rows, 20)
	assert.Equal(t, 50, result.Rows[0].LeaguePoints)
	for _, page := range []int{1, 2, 6} {
		fetcher.AssertNotCalled(t, "GetLeagueEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, page)
	}
	testutil.VerifyAllMocks(t, fetcher)
}

func TestAggregateFewerEntriesThanN(t *testing.T) {
	service, fetcher, _ := setupTestService(DefaultConfig())

	fetcher.onPage(1).Return(createDescendingPage(5, 1), nil).Once()
	fetcher.onPage(2).Return(emptyPage(), nil).Once()

	result, err := service.Aggregate(context.Background(), defaultRequest())
	require.NoError(t, err)
	assert.Len(t, result.Rows, 5)
}

func TestAggregateIsIdempotent(t *testing.T) {
	service, fetcher, _ := setupTestService(DefaultConfig())

	fetcher.onPage(1).Return(createDescendingPage(200, 101), nil)
	fetcher.onPage(2).Return(createDescendingPage(100, 1), nil)
	fetcher.onPage(3).Return(emptyPage(), nil)

	first, err := service.Aggregate(context.Background(), defaultRequest())
	require.NoError(t, err)
	second, err := service.Aggregate(context.Background(), defaultRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregateInvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
	}{
		{name: "unknownRank", modify: func(r *Request) { r.Rank = "xx" }},
		{name: "highEloRank", modify: func(r *Request) { r.Rank = "m1" }},
		{name: "unknownQueue", modify: func(r *Request) { r.Queue = "aram" }},
		{name: "unknownRegion", modify: func(r *Request) { r.Region = "mars" }},
		{name: "negativeN", modify: func(r *Request) { r.N = -1 }},
		{name: "negativeStartPage", modify: func(r *Request) { r.StartPage = -1 }},
		{name: "negativePageLimit", modify: func(r *Request) { r.PageLimit = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, fetcher, _ := setupTestService(DefaultConfig())

			request := defaultRequest()
			tt.modify(&request)
			result, err := service.Aggregate(context.Background(), request)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, apierrors.ErrInvalidArgument)
			fetcher.AssertNotCalled(t, "GetLeagueEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAggregateDefaults(t *testing.T) {
	service, fetcher, _ := setupTestService(DefaultConfig())

	fetcher.onPage(1).Return(createDescendingPage(100, 1), nil).Once()
	fetcher.onPage(2).Return(emptyPage(), nil).Once()

	result, err := service.Aggregate(context.Background(), Request{Queue: "solo", Rank: "D1"})
	require.NoError(t, err)

	assert.Equal(t, DefaultTopN, result.N)
	assert.Len(t, result.Rows, DefaultTopN)
	assert.Equal(t, regions.SubRegion("NA1"), result.Region)
}

func TestAggregateWithoutCredentials(t *testing.T) {
	fetcher := new(MockPageFetcher)
	service := NewLeaderboardService(&LeaderboardServiceDeps{
		Fetcher: fetcher,
		Config:  DefaultConfig(),
	})

	result, err := service.Aggregate(context.Background(), defaultRequest())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, requests.ErrNoCredentials)
}

func TestAggregateRotation(t *testing.T) {
	tests := []struct {
		name        string
		rotate      bool
		retriedWith string
	}{
		{name: "rotateOnRateLimit", rotate: true, retriedWith: "key-b"},
		{name: "keepKeyByDefault", rotate: false, retriedWith: "key-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.RotateOnRateLimit = tt.rotate
			service, fetcher, _ := setupTestService(config, "key-a", "key-b")

			onPage := func(key string, page int) *mock.Call {
				return fetcher.On("GetLeagueEntries", mock.Anything, requests.NewCredential(key), "RANKED_SOLO_5x5", "DIAMOND", "I", regions.SubRegion("NA1"), page)
			}

			onPage("key-a", 1).Return(nil, &apierrors.RateLimitedError{RetryAfter: retryAfter(time.Second)}).Once()
			onPage(tt.retriedWith, 1).Return(createDescendingPage(10, 1), nil).Once()
			onPage(tt.retriedWith, 2).Return(emptyPage(), nil).Once()

			result, err := service.Aggregate(context.Background(), defaultRequest())
			require.NoError(t, err)
			assert.Len(t, result.Rows, 10)

			// The service ring itself is never changed.
			assert.Equal(t, "key-a", service.credentials.Current().Key())
			testutil.VerifyAllMocks(t, fetcher)
		})
	}
}

func TestAggregateCancelledWhileWaiting(t *testing.T) {
	service, fetcher, _ := setupTestService(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher.onPage(1).Return(nil, &apierrors.RateLimitedError{}).Once()

	result, err := service.Aggregate(ctx, defaultRequest())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregateRecordsMetrics(t *testing.T) {
	manager := metrics.NewManager("loltools")

	ring, err := requests.NewCredentialRing([]string{"key"})
	require.NoError(t, err)

	fetcher := new(MockPageFetcher)
	recorder := &sleepRecorder{}
	service := NewLeaderboardService(&LeaderboardServiceDeps{
		Fetcher:     fetcher,
		Credentials: ring,
		Config:      DefaultConfig(),
		Metrics:     manager,
		Sleep:       recorder.sleep,
	})

	fetcher.onPage(1).Return(nil, apierrors.ErrUnavailable).Once()
	fetcher.onPage(1).Return(createDescendingPage(30, 1), nil).Once()
	fetcher.onPage(2).Return(emptyPage(), nil).Once()

	_, err = service.Aggregate(context.Background(), defaultRequest())
	require.NoError(t, err)

	expected := `
# HELP loltools_leaderboard_pages_fetched_total Total number of ladder pages successfully fetched
# TYPE loltools_leaderboard_pages_fetched_total counter
loltools_leaderboard_pages_fetched_total 2
# HELP loltools_leaderboard_retries_total Total number of page retries by reason
# TYPE loltools_leaderboard_retries_total counter
loltools_leaderboard_retries_total{reason="unavailable"} 1
# HELP loltools_leaderboard_entries_merged_total Total number of ladder entries merged into the top N
# TYPE loltools_leaderboard_entries_merged_total counter
loltools_leaderboard_entries_merged_total 30
# HELP loltools_leaderboard_last_run_success 1 when the last aggregation finished without error
# TYPE loltools_leaderboard_last_run_success gauge
loltools_leaderboard_last_run_success 1
`
	assert.NoError(t, promtestutil.GatherAndCompare(manager.Registry(), strings.NewReader(expected),
		"loltools_leaderboard_pages_fetched_total",
		"loltools_leaderboard_retries_total",
		"loltools_leaderboard_entries_merged_total",
		"loltools_leaderboard_last_run_success",
	))
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
