package sreality

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"sreality-agents/config"
	"sreality-agents/utils"
)

// Fetcher is the transport collaborator the crawl loop depends on. FetchJSON
// returns the decoded JSON object, or nil on any failure. The crawl never
// sees transport errors as Go errors, it only sees missing payloads.
type Fetcher interface {
	FetchJSON(rawURL string, query map[string]string) map[string]any
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Client talks to the Sreality API with browser-like headers, randomized
// politeness delays, internal retry on HTTP 429 and a circuit breaker that
// stops hammering the API once it starts refusing us.
type Client struct {
	httpClient *http.Client
	logger     *utils.Logger
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	rnd        *rand.Rand

	referer    string
	minDelay   time.Duration
	maxDelay   time.Duration
	maxRetries int
	started    bool
}

// NewClient creates a Client configured from cfg.
func NewClient(cfg *config.Config, logger *utils.Logger) *Client {
	minDelay := time.Duration(cfg.MinDelayMs) * time.Millisecond
	maxDelay := time.Duration(cfg.MaxDelayMs) * time.Millisecond
	if maxDelay < minDelay {
		maxDelay = minDelay
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "sreality-api",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[client] Circuit breaker %s: %s → %s", name, from, to)
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.HTTPTimeout) * time.Second},
		logger:     logger,
		breaker:    breaker,
		limiter:    rate.NewLimiter(rate.Every(minDelay), 1),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		referer:    cfg.BaseURL + "/",
		minDelay:   minDelay,
		maxDelay:   maxDelay,
		maxRetries: cfg.MaxRetries,
	}
}

// FetchJSON performs one paced GET and decodes the JSON object response.
// Any failure (transport error, non-2xx after retries, open breaker,
// undecodable body) yields nil.
func (c *Client) FetchJSON(rawURL string, query map[string]string) map[string]any {
	c.pause()

	result, err := c.breaker.Execute(func() (any, error) {
		return c.get(rawURL, query)
	})
	if err != nil {
		c.logger.Warn("[client] GET %s failed: %v", rawURL, err)
		return nil
	}
	payload, _ := result.(map[string]any)
	return payload
}

// pause spaces requests out: a hard floor from the rate limiter plus a
// randomized jitter within the configured delay window. The first request
// of a run goes out immediately.
func (c *Client) pause() {
	if !c.started {
		c.started = true
		return
	}
	_ = c.limiter.Wait(context.Background())
	if jitter := c.maxDelay - c.minDelay; jitter > 0 {
		time.Sleep(time.Duration(c.rnd.Int63n(int64(jitter))))
	}
}

func (c *Client) get(rawURL string, query map[string]string) (map[string]any, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		req, err := http.NewRequest(http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		if len(query) > 0 {
			q := url.Values{}
			for k, v := range query {
				q.Set(k, v)
			}
			req.URL.RawQuery = q.Encode()
		}
		req.Header.Set("User-Agent", userAgents[c.rnd.Intn(len(userAgents))])
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("Accept-Language", "cs-CZ,cs;q=0.9,en;q=0.8")
		req.Header.Set("Referer", c.referer)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(1<<attempt) * time.Second)
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var payload map[string]any
			err = json.NewDecoder(resp.Body).Decode(&payload)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("decode response: %w", err)
			}
			return payload, nil

		case http.StatusTooManyRequests:
			resp.Body.Close()
			wait := time.Duration(1<<attempt) * 5 * time.Second
			c.logger.Warn("[client] Rate limited (429) — backing off %v", wait)
			lastErr = fmt.Errorf("rate limited")
			time.Sleep(wait)

		default:
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("gave up after %d attempts: %w", c.maxRetries, lastErr)
}
