package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	leaguefetcher "loltools/fetcher/data/league"
	"loltools/fetcher/requests"
	"loltools/pkg/apierrors"
	"loltools/pkg/config"
	"loltools/pkg/metrics"
	"loltools/pkg/regions"
	queuevalues "loltools/pkg/riotvalues/queue"
	tiervalues "loltools/pkg/riotvalues/tier"
)

// Defaults used when the request leaves a value as zero.
const (
	DefaultTopN      = 20
	DefaultStartPage = 1
)

// PageFetcher gets a single ladder page.
type PageFetcher interface {
	GetLeagueEntries(
		ctx context.Context,
		cred requests.Credential,
		queue string,
		tier string,
		division string,
		region regions.SubRegion,
		page int,
	) ([]leaguefetcher.LeagueEntry, error)
}

// Logger receives the progress lines of a aggregation.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Sleeper blocks for the duration or until the context is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// LeaderboardServiceConfig is the configuration for the leaderboard service.
type LeaderboardServiceConfig struct {
	DefaultRegion     string
	RateLimitFallback time.Duration
	UnavailableDelay  time.Duration
	// MaxRetries is the amount of consecutive retries of a single page, zero means no limit.
	MaxRetries        int
	RotateOnRateLimit bool
}

// DefaultConfig provides default configuration.
func DefaultConfig() LeaderboardServiceConfig {
	return LeaderboardServiceConfig{
		DefaultRegion:     "NA1",
		RateLimitFallback: 10 * time.Second,
		UnavailableDelay:  5 * time.Second,
		MaxRetries:        10,
	}
}

// ConfigFromEnv builds the service configuration from the loaded config.
func ConfigFromEnv(cfg *config.Config) LeaderboardServiceConfig {
	return LeaderboardServiceConfig{
		DefaultRegion:     cfg.Riot.Region,
		RateLimitFallback: cfg.Retry.RateLimitFallback,
		UnavailableDelay:  cfg.Retry.UnavailableDelay,
		MaxRetries:        cfg.Retry.MaxRetries,
		RotateOnRateLimit: cfg.Retry.RotateOnRateLimit,
	}
}

// LeaderboardServiceDeps is the dependency list for the leaderboard service.
// Logger, Metrics and Sleep are optional.
type LeaderboardServiceDeps struct {
	Fetcher     PageFetcher
	Credentials requests.CredentialRing
	Config      LeaderboardServiceConfig
	Logger      Logger
	Metrics     *metrics.Manager
	Sleep       Sleeper
}

// LeaderboardService builds the top N of a ladder page by page.
type LeaderboardService struct {
	fetcher     PageFetcher
	credentials requests.CredentialRing
	config      LeaderboardServiceConfig
	logger      Logger
	metrics     *metrics.Manager
	sleep       Sleeper
}

// Request is what the caller wants to aggregate.
type Request struct {
	Queue  string
	Rank   string
	Region string
	// N is how many entries to keep, zero uses DefaultTopN.
	N int
	// StartPage is the first page fetched, zero uses DefaultStartPage.
	StartPage int
	// PageLimit bounds how many pages can be fetched, zero means no bound.
	PageLimit int
}

// Result is the ranked top N and what was fetched to build it.
type Result struct {
	Queue        string
	Tier         tiervalues.Tier
	Division     tiervalues.Division
	Region       regions.SubRegion
	N            int
	PagesFetched int
	// Partial is set when the page limit was reached before a empty page.
	Partial bool
	Rows    []Row
}

// Validated request values.
type aggregation struct {
	queue     string
	tier      tiervalues.Tier
	division  tiervalues.Division
	region    regions.SubRegion
	n         int
	startPage int
	pageLimit int
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(deps *LeaderboardServiceDeps) *LeaderboardService {
	service := &LeaderboardService{
		fetcher:     deps.Fetcher,
		credentials: deps.Credentials,
		config:      deps.Config,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		sleep:       deps.Sleep,
	}

	if service.logger == nil {
		service.logger = discardLogger{}
	}
	if service.sleep == nil {
		service.sleep = sleepContext
	}

	return service
}

// Aggregate fetches pages until a empty one (or the page limit) and returns the top N.
// Nothing partial is returned on a error.
func (s *LeaderboardService) Aggregate(ctx context.Context, req Request) (result *Result, err error) {
	if s.metrics != nil {
		defer func() { s.metrics.RunFinished(err) }()
	}

	params, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	if s.credentials.Len() == 0 {
		return nil, requests.ErrNoCredentials
	}

	topN := NewTopN(params.n)
	credentials := s.credentials
	pagesFetched := 0
	ended := false

	// Fetch pages until we get an empty result.
	for page := params.startPage; params.pageLimit == 0 || page < params.startPage+params.pageLimit; page++ {
		var entries []leaguefetcher.LeagueEntry

		entries, credentials, err = s.fetchPage(ctx, credentials, params, page)
		if err != nil {
			s.logger.Errorf("Aggregation of %s %s %s on %s failed at page %d: %v", params.queue, params.tier, params.division, params.region, page, err)
			return nil, err
		}

		pagesFetched++
		if s.metrics != nil {
			s.metrics.PageFetched()
		}

		// If no entry is found, there is nothing left on this division.
		if len(entries) == 0 {
			ended = true
			break
		}

		// Set the requested values for the entries that don't carry them.
		for i := range entries {
			if entries[i].QueueType == nil {
				entries[i].QueueType = &params.queue
			}
			if entries[i].Tier == nil {
				tier := string(params.tier)
				entries[i].Tier = &tier
			}
			if entries[i].Rank == nil {
				division := string(params.division)
				entries[i].Rank = &division
			}
		}

		merged := topN.Merge(entries)
		if s.metrics != nil {
			s.metrics.EntriesMerged(merged)
		}
	}

	if !ended {
		s.logger.Infof("Page limit of %d reached, returning a partial top %d", params.pageLimit, params.n)
	}

	return &Result{
		Queue:        params.queue,
		Tier:         params.tier,
		Division:     params.division,
		Region:       params.region,
		N:            params.n,
		PagesFetched: pagesFetched,
		Partial:      !ended,
		Rows:         topN.Rows(),
	}, nil
}

// Fetch a single page, waiting and retrying the same page on recoverable errors.
// Returns the credentials that should be used from now on.
func (s *LeaderboardService) fetchPage(
	ctx context.Context,
	credentials requests.CredentialRing,
	params *aggregation,
	page int,
) ([]leaguefetcher.LeagueEntry, requests.CredentialRing, error) {
	for attempt := 0; ; attempt++ {
		s.logger.Infof("Fetching page %d of %s %s %s on %s (attempt %d)", page, params.queue, params.tier, params.division, params.region, attempt+1)

		start := time.Now()
		entries, err := s.fetcher.GetLeagueEntries(ctx, credentials.Current(), params.queue, string(params.tier), string(params.division), params.region, page)
		if s.metrics != nil {
			s.metrics.PageAttempted(time.Since(start))
		}

		if err == nil {
			return entries, credentials, nil
		}
		if !apierrors.IsRecoverable(err) {
			return nil, credentials, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		// Decide how long to wait.
		var wait time.Duration
		var reason string
		var rateLimited *apierrors.RateLimitedError
		switch {
		case errors.As(err, &rateLimited):
			reason = "rate_limited"
			wait = s.config.RateLimitFallback
			if rateLimited.RetryAfter != nil {
				wait = *rateLimited.RetryAfter
			}
			if s.config.RotateOnRateLimit && credentials.Len() > 1 {
				credentials = credentials.Rotate()
				s.logger.Infof("Rotated to the API key %s", credentials.Current().Masked())
			}
		default:
			reason = "unavailable"
			wait = s.config.UnavailableDelay
		}

		if s.config.MaxRetries > 0 && attempt >= s.config.MaxRetries {
			return nil, credentials, fmt.Errorf("page %d still failing after %d retries: %w", page, s.config.MaxRetries, err)
		}

		if s.metrics != nil {
			s.metrics.Retry(reason)
		}
		s.logger.Infof("Page %d: %v, waiting %s before retrying", page, err, wait)

		if err := s.sleep(ctx, wait); err != nil {
			return nil, credentials, err
		}
	}
}

// Validate the request before any request is made.
func (s *LeaderboardService) resolve(req Request) (*aggregation, error) {
	queue, err := queuevalues.ParseQueue(req.Queue)
	if err != nil {
		return nil, err
	}

	tier, division, err := tiervalues.ParseRank(req.Rank)
	if err != nil {
		return nil, err
	}

	regionName := req.Region
	if regionName == "" {
		regionName = s.config.DefaultRegion
	}
	region, err := regions.ParseSubRegion(regionName)
	if err != nil {
		return nil, err
	}

	params := &aggregation{
		queue:     queue,
		tier:      tier,
		division:  division,
		region:    region,
		n:         req.N,
		startPage: req.StartPage,
		pageLimit: req.PageLimit,
	}

	switch {
	case params.n < 0:
		return nil, apierrors.InvalidArgument("n must be positive, got %d", params.n)
	case params.n == 0:
		params.n = DefaultTopN
	}

	switch {
	case params.startPage < 0:
		return nil, apierrors.InvalidArgument("start page must be positive, got %d", params.startPage)
	case params.startPage == 0:
		params.startPage = DefaultStartPage
	}

	if params.pageLimit < 0 {
		return nil, apierrors.InvalidArgument("page limit must be positive, got %d", params.pageLimit)
	}

	return params, nil
}

// Blocks for d, returning early when the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type discardLogger struct{}

func (discardLogger) Infof(string, ...interface{})  {}
func (discardLogger) Errorf(string, ...interface{}) {}
