package leaguefetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"loltools/fetcher/requests"
	"loltools/pkg/apierrors"
	"loltools/pkg/regions"
)

// DefaultBaseURL is formatted with the region host, e.g. "na1".
const DefaultBaseURL = "https://%s.api.riotgames.com"

// The league fetcher with it's client.
type LeagueFetcher struct {
	client  *requests.Client // Pointer to the client, since it's shared.
	baseURL string
}

// Create a league fetcher.
// The baseURL must contain a single %s for the region host, empty uses the Riot API.
func CreateLeagueFetcher(client *requests.Client, baseURL string) *LeagueFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &LeagueFetcher{
		client:  client,
		baseURL: baseURL,
	}
}

// Get a given league page.
// A empty slice means that there are no more entries on this tier and division.
func (l *LeagueFetcher) GetLeagueEntries(
	ctx context.Context,
	cred requests.Credential,
	queue string,
	tier string,
	division string,
	region regions.SubRegion,
	page int,
) ([]LeagueEntry, error) {
	// Format the URL and create the params.
	// Riot only accept upper case on this entries.
	url := fmt.Sprintf(l.baseURL+"/lol/league/v4/entries/%s/%s/%s",
		region.Host(), queue, strings.ToUpper(tier), strings.ToUpper(division))

	resp, err := l.client.AuthRequest(ctx, cred, "GET", url, map[string]string{
		"page": strconv.Itoa(page),
	})
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	defer resp.Body.Close()

	// Check the status code.
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, &apierrors.RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, fmt.Errorf("page %d: %w", page, apierrors.ErrUnavailable)
	default:
		return nil, &apierrors.UpstreamError{StatusCode: resp.StatusCode, URL: url}
	}

	// Parse the league entries.
	var entries []LeagueEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	// Return the entries.
	return entries, nil
}

// The header can be a amount of seconds or a http date.
func parseRetryAfter(value string) *time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds >= 0 {
		wait := time.Duration(seconds * float64(time.Second))
		return &wait
	}

	if date, err := http.ParseTime(value); err == nil {
		wait := time.Until(date)
		if wait < 0 {
			wait = 0
		}
		return &wait
	}

	return nil
}
