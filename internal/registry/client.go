package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jekabs-s/urlookup/internal/logging"
	"github.com/jekabs-s/urlookup/pkg/version"
)

// DefaultTimeout bounds a single registry request when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxDrainBytes limits how much of a rejected response body is discarded so
// the connection can be reused.
const maxDrainBytes = 64 << 10

// Config configures a registry Client.
type Config struct {
	// BaseURL is the full datastore_search endpoint URL.
	BaseURL string
	// ResourceID identifies the dataset resource.
	ResourceID string
	// Timeout bounds each request.
	Timeout time.Duration
	// HTTPClient is used for requests when set.
	HTTPClient *http.Client
	// UserAgent overrides the default urlookup/<version> header.
	UserAgent string
}

// Client queries the register dataset.
type Client struct {
	endpoint   *url.URL
	resourceID string
	timeout    time.Duration
	http       *http.Client
	userAgent  string
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	if cfg.ResourceID == "" {
		return nil, ErrEmptyResourceID
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}

	return &Client{
		endpoint:   u,
		resourceID: cfg.ResourceID,
		timeout:    timeout,
		http:       httpClient,
		userAgent:  userAgent,
	}, nil
}

// Search issues one datastore_search query filtered by exact name and returns
// the records of a 200 response, which may be empty. Any other outcome is an
// *Error.
func (c *Client) Search(ctx context.Context, name string) ([]RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, name)
	if err != nil {
		return nil, NewError(ErrorInternal, name, "create request", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(name, err)
	}
	defer resp.Body.Close()

	log := logging.ComponentLogger(*logging.FromContext(ctx), "registry")
	log.Debug().Ctx(ctx).
		Str("entity_name", name).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("registry response")

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		rejected := NewError(ErrorRejected, name, "unexpected status: "+resp.Status, nil)
		rejected.StatusCode = resp.StatusCode
		return nil, rejected
	}

	var body searchResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err = dec.Decode(&body); err != nil {
		// A deadline hit while streaming the body surfaces here as well.
		if isTimeout(err) {
			return nil, NewError(ErrorTimeout, name, "read response", err)
		}
		return nil, NewError(ErrorBadData, name, "decode response", err)
	}
	if body.Result == nil || body.Result.Records == nil {
		return nil, NewError(ErrorBadData, name, "response has no result.records", nil)
	}
	records := *body.Result.Records
	for i, rec := range records {
		if rec == nil {
			return nil, NewError(ErrorBadData, name, fmt.Sprintf("result.records[%d] is not an object", i), nil)
		}
	}

	return records, nil
}

func (c *Client) newRequest(ctx context.Context, name string) (*http.Request, error) {
	filters, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("encode filters: %w", err)
	}

	u := *c.endpoint
	q := u.Query()
	q.Set("resource_id", c.resourceID)
	q.Set("filters", string(filters))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func classifyTransport(name string, err error) *Error {
	if isTimeout(err) {
		return NewError(ErrorTimeout, name, "request timed out", err)
	}
	return NewError(ErrorTransport, name, "do request", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
