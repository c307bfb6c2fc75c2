package requests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Headers sent on every request, the same a browser on the developer portal sends.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept-Charset":  "application/x-www-form-urlencoded; charset=UTF-8",
	"Origin":          "https://developer.riotgames.com",
}

// Client does the requests to the Riot API and to the static pages.
// The limiter is optional and shared between every request of the client.
type Client struct {
	httpClient *http.Client
	limiter    *RateLimiter
}

// NewClient creates a client with the default timeout.
func NewClient(limiter *RateLimiter) *Client {
	return NewClientWithHTTP(&http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}, limiter)
}

// NewClientWithHTTP creates a client on top of a existing http client.
func NewClientWithHTTP(httpClient *http.Client, limiter *RateLimiter) *Client {
	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// Do a authenticated request to the Riot API.
// The credential is only set on this request, nothing is kept on the client.
func (c *Client) AuthRequest(ctx context.Context, cred Credential, method string, rawURL string, params map[string]string) (*http.Response, error) {
	if cred.IsZero() {
		return nil, ErrNoCredentials
	}

	// Wait for the limiter before building the request.
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := newRequest(ctx, method, rawURL, params)
	if err != nil {
		return nil, err
	}

	req.Header.Set("X-Riot-Token", cred.Key())
	return c.httpClient.Do(req)
}

// Create a simple request and return it.
func (c *Client) Request(ctx context.Context, method string, rawURL string) (*http.Response, error) {
	req, err := newRequest(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// Build the request with the default headers and the query params.
func newRequest(ctx context.Context, method string, rawURL string, params map[string]string) (*http.Request, error) {
	if method == "" {
		return nil, errors.New("missing request method")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", rawURL, err)
	}

	// Merge the params with any existing query.
	if len(params) > 0 {
		query := parsed.Query()
		for key, value := range params {
			query.Set(key, value)
		}
		parsed.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	for key, value := range defaultHeaders {
		req.Header.Set(key, value)
	}

	return req, nil
}
