package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"f1weekendsim/pkg/logger"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://api.jolpi.ca/ergast/f1"
	DefaultTimeout = 10 * time.Second
	resultsLimit   = 100
)

// Fetcher returns the results of one driver or constructor in one season.
type Fetcher interface {
	Results(ctx context.Context, season int, kind Kind, id string) ([]RaceEntry, error)
}

// Client talks to an Ergast-compatible results API. Calls go through a
// circuit breaker: once the API has failed a few times in a row the client
// stops trying and fails fast for the rest of the run.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	threshold  uint32
	breaker    *gobreaker.CircuitBreaker
}

type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n uint32) ClientOption {
	return func(c *Client) {
		c.threshold = n
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		threshold:  2,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.OrDiscard(c.logger)

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "history-api",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

func (c *Client) resultsURL(season int, kind Kind, id string) string {
	return fmt.Sprintf("%s/%d/%s/%s/results.json?limit=%d", c.baseURL, season, kind.resource(), id, resultsLimit)
}

func (c *Client) Results(ctx context.Context, season int, kind Kind, id string) ([]RaceEntry, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, c.resultsURL(season, kind, id))
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s %s results for %d", kind, id, season)
	}
	return out.([]RaceEntry), nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]RaceEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("requesting results", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s (%s)", resp.Status, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rr resultsResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, errors.Wrap(err, "decoding results")
	}
	return rr.entries(), nil
}
