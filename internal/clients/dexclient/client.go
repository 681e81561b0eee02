package dexclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/MaksimYurchanka/pump-monitor/internal/config"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
)

type Client struct {
	cfg        *config.DexscreenerConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

func New(cfg *config.DexscreenerConfig) *Client {
	// Strict minimum inter-request interval derived from the per-minute
	// budget; burst of 1 means a request issued too soon suspends until the
	// interval elapses.
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "DexscreenerAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		cfg:        cfg,
		limiter:    limiter,
		breaker:    breaker,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Ping issues a minimal listings request to verify the feed is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetNewPairs(ctx, time.Now())
	return err
}

func (c *Client) GetNewPairs(ctx context.Context, since time.Time) ([]Pair, error) {
	path := fmt.Sprintf("/latest/dex/pairs/new?since=%d", since.UnixMilli())
	body, err := c.doGET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch new pairs: %w", err)
	}

	var resp pairsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse new pairs response: %w", err)
	}
	return resp.Pairs, nil
}

func (c *Client) GetPair(ctx context.Context, pairAddress string) (*Pair, error) {
	body, err := c.doGET(ctx, "/latest/dex/pairs/"+pairAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pair %s: %w", pairAddress, err)
	}

	var resp pairsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse pair response for %s: %w", pairAddress, err)
	}
	if len(resp.Pairs) == 0 {
		return nil, fmt.Errorf("pair %s not found", pairAddress)
	}
	return &resp.Pairs[0], nil
}

func (c *Client) doGET(ctx context.Context, path string) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			return c.sendOnce(ctx, path)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.MaxRetries)+1),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
}

func (c *Client) sendOnce(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		metrics.RecordClientRequestDuration(http.MethodGet, resp.StatusCode, time.Since(start))

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("http error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("http error (%d): %s", e.StatusCode, string(e.Body))
}

// isTransient reports whether the request is worth retrying: rate limiting,
// upstream 5xx, or a transport-level failure. Cancellation and client errors
// are returned as-is.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	var he *HTTPError
	if errors.As(err, &he) {
		switch he.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}
