package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusevents/internal/models"
)

const eventsPath = "/events/"

var (
	// ErrTransport marks failures to reach the events endpoint.
	ErrTransport = errors.New("events endpoint unreachable")
	// ErrDecode marks a response body that is not a valid event list.
	ErrDecode = errors.New("malformed events response")
)

// Outcome is the result of a single fetch. Err is nil on success.
type Outcome struct {
	Catalog models.Catalog
	Err     error
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Fetcher performs one-shot GETs against the events endpoint.
type Fetcher struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// NewFetcher creates a Fetcher for the given base URL, e.g. "https://events.example.edu/api".
func NewFetcher(logger *slog.Logger, baseURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the events endpoint the fetcher queries.
func (f *Fetcher) URL() string {
	return f.baseURL + eventsPath
}

// Fetch issues exactly one GET and decodes the response. It never retries.
func (f *Fetcher) Fetch(ctx context.Context) Outcome {
	url := f.URL()
	f.logger.Debug("Fetching event catalog", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{Err: fmt.Errorf("%w: %w", ErrTransport, err)}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("Event catalog request failed", "url", url, "error", err)
		return Outcome{Err: fmt.Errorf("%w: %w", ErrTransport, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Error("Event catalog request rejected", "url", url, "status", resp.StatusCode)
		return Outcome{Err: fmt.Errorf("%w: unexpected status %s", ErrTransport, resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Err: fmt.Errorf("%w: reading body: %w", ErrTransport, err)}
	}

	events, err := Decode(body)
	if err != nil {
		f.logger.Error("Could not decode event catalog", "url", url, "error", err)
		return Outcome{Err: err}
	}

	f.logger.Info("Fetched event catalog.", "count", len(events))
	return Outcome{Catalog: events}
}

// FetchAsync runs Fetch on its own goroutine. Exactly one Outcome is delivered
// and the channel is then closed. Callers that lose interest may drop the channel.
func (f *Fetcher) FetchAsync(ctx context.Context) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- f.Fetch(ctx)
	}()
	return ch
}

type envelope struct {
	Events *models.Catalog `json:"events"`
}

// Decode parses an events response body. The "events" key is required.
func Decode(body []byte) (models.Catalog, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if env.Events == nil {
		return nil, fmt.Errorf("%w: missing \"events\" key", ErrDecode)
	}
	return *env.Events, nil
}
