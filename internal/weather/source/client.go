package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultToken is used when no API token is stored.
const DefaultToken = "demo-token"

// maxBodyBytes bounds how much of an upstream response we read.
const maxBodyBytes = 1 << 20

var errUnexpectedStatus = errors.New("unexpected status code")

// TokenFunc supplies the bearer token for upstream requests, typically
// backed by the storage backend.
type TokenFunc func() string

// Client fetches weather data from the primary endpoint. It makes exactly
// one attempt per lookup; any failure is absorbed into synthesized mock
// data after a fixed delay, so Fetch only errors on context cancellation.
type Client struct {
	baseURL       string
	client        *http.Client
	circuit       *gobreaker.CircuitBreaker
	token         TokenFunc
	fallbackDelay time.Duration
}

// NewClient creates a Client. token may be nil, in which case DefaultToken
// is sent.
func NewClient(client *http.Client, baseURL string, token TokenFunc, fallbackDelay time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-upstream",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if token == nil {
		token = func() string { return DefaultToken }
	}

	return &Client{
		baseURL:       baseURL,
		client:        client,
		circuit:       cb,
		token:         token,
		fallbackDelay: fallbackDelay,
	}
}

// Fetch requests weather data for a city. The single upstream attempt runs
// through a circuit breaker; while the upstream is known-bad the breaker
// fails fast and the mock path serves immediately after the fixed delay.
func (c *Client) Fetch(ctx context.Context, city string) (weather.RawResponse, error) {
	raw, err := c.fetchPrimary(ctx, city)
	if err == nil {
		return raw, nil
	}

	log.Printf("WARN: weather upstream failed for %q: %v; serving mock data", city, err)

	// Fixed delay before the fallback resolves, simulating source latency.
	if err := sleepCtx(ctx, c.fallbackDelay); err != nil {
		return weather.RawResponse{}, err
	}
	return MockResponse(city), nil
}

func (c *Client) fetchPrimary(ctx context.Context, city string) (weather.RawResponse, error) {
	u := fmt.Sprintf("%s/api/weather-forecast/%s", c.baseURL, url.PathEscape(city))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return weather.RawResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	req.Header.Set("Accept", "application/json")

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return nil, readErr
		}

		raw, decodeErr := weather.DecodeResponse(body)
		if decodeErr != nil {
			return nil, decodeErr
		}
		return raw, nil
	})
	if err != nil {
		return weather.RawResponse{}, err
	}

	raw, ok := result.(weather.RawResponse)
	if !ok {
		return weather.RawResponse{}, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return raw, nil
}

func (c *Client) bearerToken() string {
	if t := c.token(); t != "" {
		return t
	}
	return DefaultToken
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
