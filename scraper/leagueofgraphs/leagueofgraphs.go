// Package leagueofgraphs reads the win rate of a champion on each role from League of Graphs.
package leagueofgraphs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"loltools/fetcher/requests"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the champion stats root, the champion is appended to it.
const DefaultBaseURL = "https://www.leagueofgraphs.com/champions/stats/"

const cachePrefix = "leagueofgraphs:roles:"

// ErrChampionNotFound is returned when the page has no stats table.
var ErrChampionNotFound = errors.New("champion not found on league of graphs")

// PageFetcher returns the html of a page.
// The site renders the table on the server, but a headless browser can be plugged in.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Cache stores the parsed roles, e.g. redis with a TTL.
type Cache interface {
	GetKey(ctx context.Context, key string) (string, bool, error)
	SetKey(ctx context.Context, key string, value string) error
}

// Logger receives the cache failures, which never fail a scrape.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// HTTPPageFetcher gets the page with a plain request.
type HTTPPageFetcher struct {
	client *requests.Client
}

// NewHTTPPageFetcher creates a fetcher on top of the shared client.
func NewHTTPPageFetcher(client *requests.Client) *HTTPPageFetcher {
	return &HTTPPageFetcher{client: client}
}

// FetchPage returns the body of the page.
// A not found status still has a body, the caller decides from it.
func (f *HTTPPageFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	resp, err := f.client.Request(ctx, "GET", url)
	if err != nil {
		return "", fmt.Errorf("couldn't get the page: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return "", fmt.Errorf("API returned status code %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("couldn't read the page: %w", err)
	}
	return string(body), nil
}

// RoleScraper gets the role win rates of the champions.
type RoleScraper struct {
	fetcher PageFetcher
	cache   Cache
	baseURL string
	logger  Logger
}

// NewRoleScraper creates a scraper, the cache is optional and empty baseURL uses League of Graphs.
func NewRoleScraper(fetcher PageFetcher, cache Cache, baseURL string) *RoleScraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &RoleScraper{
		fetcher: fetcher,
		cache:   cache,
		baseURL: baseURL,
		logger:  discardLogger{},
	}
}

// WithLogger sets the logger of the cache failures.
func (s *RoleScraper) WithLogger(logger Logger) *RoleScraper {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// GetChampionRoles returns the win rate in percent of each role the champion is played on.
func (s *RoleScraper) GetChampionRoles(ctx context.Context, champion string) (map[string]float64, error) {
	slug := championSlug(champion)
	if slug == "" {
		return nil, fmt.Errorf("%w: empty name", ErrChampionNotFound)
	}

	key := cachePrefix + slug
	if roles, ok := s.fromCache(ctx, key); ok {
		return roles, nil
	}

	page, err := s.fetcher.FetchPage(ctx, s.baseURL+slug)
	if err != nil {
		return nil, err
	}

	roles, err := ParseRoleWinRates(page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", champion, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(roles); err == nil {
			// The cache is best effort, the scraped roles are still returned.
			if err := s.cache.SetKey(ctx, key, string(data)); err != nil {
				s.logger.Errorf("Couldn't cache the roles of %s: %v", champion, err)
			}
		}
	}

	return roles, nil
}

// Read the roles from the cache, any failure is a miss.
func (s *RoleScraper) fromCache(ctx context.Context, key string) (map[string]float64, bool) {
	if s.cache == nil {
		return nil, false
	}

	value, found, err := s.cache.GetKey(ctx, key)
	if err != nil {
		s.logger.Errorf("Couldn't read %s from the cache: %v", key, err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var roles map[string]float64
	if err := json.Unmarshal([]byte(value), &roles); err != nil {
		s.logger.Errorf("Invalid cached roles on %s: %v", key, err)
		return nil, false
	}
	return roles, true
}

// ParseRoleWinRates reads the stats table of a champion page.
// The win rates come from the blue progress bars, the roles from the links, both in the table order.
func ParseRoleWinRates(page string) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse the page: %w", err)
	}

	table := doc.Find("table.data_table").First()
	if table.Length() == 0 {
		return nil, ErrChampionNotFound
	}

	var winRates []float64
	table.Find(`progressbar[data-color="wgblue"]`).Each(func(_ int, bar *goquery.Selection) {
		value, err := strconv.ParseFloat(strings.TrimSpace(bar.AttrOr("data-value", "")), 64)
		if err != nil {
			return
		}
		winRates = append(winRates, math.Round(value*100*100)/100)
	})

	var roles []string
	table.Find("a").Each(func(_ int, link *goquery.Selection) {
		if role, exists := link.Attr("filter-role"); exists {
			roles = append(roles, role)
		}
	})

	// Zip both, the shorter one decides.
	result := make(map[string]float64, min(len(roles), len(winRates)))
	for i := 0; i < len(roles) && i < len(winRates); i++ {
		result[roles[i]] = winRates[i]
	}
	return result, nil
}

// The site uses the lower cased name without spaces or punctuation, e.g. "leesin".
func championSlug(champion string) string {
	var slug strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(champion)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			slug.WriteRune(r)
		}
	}
	return slug.String()
}

type discardLogger struct{}

func (discardLogger) Infof(string, ...interface{})  {}
func (discardLogger) Errorf(string, ...interface{}) {}
