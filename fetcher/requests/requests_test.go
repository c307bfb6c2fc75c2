package requests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loltools/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRingRotate(t *testing.T) {
	ring, err := NewCredentialRing([]string{"a", "", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, 3, ring.Len())
	assert.Equal(t, "a", ring.Current().Key())

	next := ring.Rotate()
	assert.Equal(t, "b", next.Current().Key())
	// The original ring is untouched.
	assert.Equal(t, "a", ring.Current().Key())

	assert.Equal(t, "c", next.Rotate().Current().Key())
	assert.Equal(t, "a", next.Rotate().Rotate().Current().Key())
}

func TestCredentialRingEmpty(t *testing.T) {
	ring, err := NewCredentialRing([]string{"", ""})

	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.True(t, ring.Current().IsZero())
	assert.Equal(t, 0, ring.Rotate().Len())
}

func TestCredentialMasked(t *testing.T) {
	assert.Equal(t, "****cdef", NewCredential("RGAPI-abcdef").Masked())
	assert.Equal(t, "****", NewCredential("abc").Masked())
}

func TestAuthRequestSetsHeaders(t *testing.T) {
	var gotToken, gotPage, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Riot-Token")
		gotPage = r.URL.Query().Get("page")
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.Client(), nil)

	resp, err := client.AuthRequest(context.Background(), NewCredential("RGAPI-1"), "GET", server.URL+"/entries", map[string]string{"page": "3"})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "RGAPI-1", gotToken)
	assert.Equal(t, "3", gotPage)
	assert.Contains(t, gotAgent, "Mozilla/5.0")
}

func TestAuthRequestWithoutCredential(t *testing.T) {
	client := NewClient(nil)

	resp, err := client.AuthRequest(context.Background(), Credential{}, "GET", "http://localhost", nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestRequestHasNoToken(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Riot-Token")
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.Client(), nil)
	resp, err := client.Request(context.Background(), "GET", server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, gotToken)
}

func TestRateLimiterWaitsForWindow(t *testing.T) {
	limiter := CreateRateLimiter(config.LimitsConfiguration{
		Lower: config.LimitWindow{Count: 2, ResetInterval: 50 * time.Millisecond},
	})

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}

	// The third slot is only available after the window reset.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRateLimiterCancelled(t *testing.T) {
	limiter := CreateRateLimiter(config.LimitsConfiguration{
		Lower: config.LimitWindow{Count: 1, ResetInterval: time.Hour},
	})

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiterWithoutWindows(t *testing.T) {
	limiter := CreateRateLimiter(config.LimitsConfiguration{})

	for i := 0; i < 100; i++ {
		assert.NoError(t, limiter.Wait(context.Background()))
	}
}
