package feedmeta

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"feedrebuild/internal/logging"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "feedrebuild/dev"
	maxBodyBytes     = 16 << 20
)

// Metadata is the subset of a feed document kept in the registry.
type Metadata struct {
	Title    string
	SiteLink string
	// Format is the detected document type (rss, atom, json).
	Format string
}

// Fetcher retrieves feed metadata.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Metadata, error)
}

// Client fetches feeds over HTTP(S) and file://.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each fetch, including reading the body. A client passed
// through WithHTTPClient is copied, never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "feedmeta")
	}
}

// NewClient constructs a Client with a 5 second timeout and file:// support.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout, Transport: newTransport()},
		userAgent:  defaultUserAgent,
		logger:     logging.NewComponentLogger(nil, "feedmeta"),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.timeout > 0 && client.httpClient.Timeout != client.timeout {
		hc := *client.httpClient
		hc.Timeout = client.timeout
		client.httpClient = &hc
	}
	return client
}

func newTransport() http.RoundTripper {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport
	}
	transport := base.Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	return transport
}

// Fetch downloads url and extracts its title and site link.
func (c *Client) Fetch(ctx context.Context, url string) (Metadata, error) {
	var empty Metadata
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return empty, fetchError(url, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fetchError(url, "request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return empty, fetchError(url, "read body", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return empty, fetchError(url, fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	meta, err := Parse(url, body)
	if err != nil {
		return empty, err
	}
	c.logger.Debug("feed fetched",
		logging.FeedURL(url),
		logging.String("title", meta.Title),
		logging.String("format", meta.Format),
		logging.Int("bytes", len(body)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return meta, nil
}

// Parse extracts metadata from a feed document fetched from url.
func Parse(url string, body []byte) (Metadata, error) {
	var empty Metadata
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return empty, &MalformedError{URL: url, Reason: "parse document", Err: err}
	}
	meta := Metadata{
		Title:    strings.TrimSpace(feed.Title),
		SiteLink: strings.TrimSpace(feed.Link),
		Format:   feed.FeedType,
	}
	switch {
	case meta.Title == "":
		return empty, &MalformedError{URL: url, Reason: "missing title"}
	case meta.SiteLink == "":
		return empty, &MalformedError{URL: url, Reason: "missing site link"}
	}
	return meta, nil
}
