package gtfsrt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/anish3343/transit-dashboard/config"
)

// Feed fetch error categories. Handlers map these to HTTP statuses.
var (
	// ErrUnknownFeed means the requested feed key is not configured.
	ErrUnknownFeed = errors.New("feed not configured")
	// ErrMissingAPIKey means a required API key env variable is unset.
	// The request is never attempted.
	ErrMissingAPIKey = errors.New("missing API key")
)

const maxFeedBytes = 25 * 1024 * 1024

// newFeedHTTPClient builds the shared client for feed fetching. The
// transport is cloned from http.DefaultTransport to keep proxy and dialer
// defaults while bounding the request.
func newFeedHTTPClient() *http.Client {
	var transport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConns = 50
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second

	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: transport,
	}
}

// Fetcher retrieves raw feed snapshots, attaching per-feed auth.
type Fetcher struct {
	feeds      map[string]config.FeedConfig
	httpClient *http.Client
	lookupEnv  func(string) (string, bool)
}

// NewFetcher creates a Fetcher over the given feed registry (normally
// config.Feeds).
func NewFetcher(feeds map[string]config.FeedConfig) *Fetcher {
	return &Fetcher{
		feeds:      feeds,
		httpClient: newFeedHTTPClient(),
		lookupEnv:  os.LookupEnv,
	}
}

// Fetch returns the raw bytes of the current snapshot for one feed. There is
// no retry: a failed fetch surfaces as an error for this feed only.
func (f *Fetcher) Fetch(ctx context.Context, feedKey string) ([]byte, error) {
	feed, ok := f.feeds[feedKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeed, feedKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, err
	}

	if feed.APIKeyEnv != "" {
		key, ok := f.lookupEnv(feed.APIKeyEnv)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w for %s: %s", ErrMissingAPIKey, feedKey, feed.APIKeyEnv)
		}
		switch feed.AuthType {
		case config.AuthHeader:
			req.Header.Set("x-api-key", key)
		case config.AuthQuery:
			q := req.URL.Query()
			q.Set("key", key)
			req.URL.RawQuery = q.Encode()
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", feedKey, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned HTTP %d", feedKey, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading feed %s: %w", feedKey, err)
	}
	if int64(len(body)) > maxFeedBytes {
		return nil, fmt.Errorf("feed %s exceeds size limit of %d bytes", feedKey, maxFeedBytes)
	}
	return body, nil
}
