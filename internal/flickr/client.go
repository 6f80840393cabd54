package flickr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"golang.org/x/sync/semaphore"

	"github.com/mmcdole/flickgrid/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.flickr.com/services"
	DefaultMethod       = "flickr.photos.search"
	DefaultTimeout      = 120 * time.Second
	DefaultImageWorkers = 6

	searchExtras = "tags,media,url_s,o_dims"
	userAgent    = "flickgrid/1.0"
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL             string
	APIKey              string
	Method              string
	Timeout             time.Duration
	MaxConcurrentImages int
	HTTPClient          *http.Client
}

// Client implements domain.FetchClient against the Flickr REST API
type Client struct {
	baseURL    string
	apiKey     string
	method     string
	httpClient *http.Client
	images     *semaphore.Weighted
	logger     *slog.Logger
}

// NewClient creates a new Flickr API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Method == "" {
		opts.Method = DefaultMethod
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxConcurrentImages <= 0 {
		opts.MaxConcurrentImages = DefaultImageWorkers
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	// Copy so the timeout does not leak into a caller-owned client
	hc := *httpClient
	hc.Timeout = opts.Timeout

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		method:     opts.Method,
		httpClient: &hc,
		images:     semaphore.NewWeighted(int64(opts.MaxConcurrentImages)),
		logger:     logger,
	}
}

// SearchURL builds the photos.search request URL for a tag
func (c *Client) SearchURL(tag string) string {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("nojsoncallback", "1")
	query.Set("api_key", c.apiKey)
	query.Set("method", c.method)
	query.Set("extras", searchExtras)
	query.Set("tags", tag)
	return fmt.Sprintf("%s/rest/?%s", c.baseURL, query.Encode())
}

// SearchByTag starts a tag search and returns its handle immediately
func (c *Client) SearchByTag(ctx context.Context, tag string, done domain.Completion) domain.RequestHandle {
	return c.start(ctx, domain.RequestKindSearch, tag, c.SearchURL(tag), done)
}

// FetchImage starts an image download and returns its handle immediately.
// Downloads wait for a free worker slot; a handle cancelled while waiting
// never touches the network.
func (c *Client) FetchImage(ctx context.Context, imageURL *url.URL, done domain.Completion) domain.RequestHandle {
	target := ""
	if imageURL != nil {
		target = imageURL.String()
	}
	return c.start(ctx, domain.RequestKindImage, target, target, done)
}

func (c *Client) start(parent context.Context, kind domain.RequestKind, target, reqURL string, done domain.Completion) *Request {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	req := newRequest(kind, target, cancel)

	go func() {
		data, err := c.run(ctx, kind, reqURL)
		if !req.finish(err) {
			c.logger.Debug("request cancelled", "kind", kind, "target", target)
			data, err = nil, domain.ErrRequestCancelled
		}
		if done != nil {
			done(data, err)
		}
	}()

	return req
}

func (c *Client) run(ctx context.Context, kind domain.RequestKind, reqURL string) ([]byte, error) {
	switch kind {
	case domain.RequestKindSearch:
		if c.apiKey == "" {
			return nil, domain.ErrMissingAPIKey
		}
	case domain.RequestKindImage:
		if reqURL == "" {
			return nil, platformerrors.New(platformerrors.CodeInvalidInput, "image URL is required")
		}
		if err := c.images.Acquire(ctx, 1); err != nil {
			return nil, domain.ErrRequestCancelled
		}
		defer c.images.Release(1)
	}

	return c.doRequest(ctx, reqURL)
}

// doRequest performs a GET and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "failed to create request")
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("flickr request", "url", redact(reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("flickr request error", "status", resp.StatusCode, "url", redact(reqURL))
		perr := platformerrors.Newf(platformerrors.CodeNetwork, "unexpected status code: %d", resp.StatusCode)
		return nil, platformerrors.WithContext(perr, "status", resp.StatusCode)
	}

	return body, nil
}

// classify maps a transport error to the fetch error taxonomy
func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return domain.ErrRequestCancelled
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		c.logger.Warn("flickr request timed out", "error", err)
		return platformerrors.Wrap(err, platformerrors.CodeTimeout, "request timed out")
	}

	c.logger.Error("flickr request failed", "error", err)
	return platformerrors.Wrap(err, platformerrors.CodeNetwork, "fetch failed")
}

// redact hides the API key in logged URLs
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
