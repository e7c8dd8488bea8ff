package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/tabula/internal/metrics"
	"github.com/five82/tabula/internal/paging"
)

// Backend is the REST contract the loaders and the mutation façade rely on.
// It is implemented by *Client and by test stubs.
type Backend interface {
	List(ctx context.Context, page paging.Page) (ListPage, error)
	Get(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, draft Draft) (Record, error)
	Update(ctx context.Context, id int64, draft Draft) (Record, error)
	Delete(ctx context.Context, id int64) error
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

const (
	// DefaultURL is the collection used when nothing is configured.
	DefaultURL       = "https://jsonplaceholder.typicode.com/posts"
	defaultUserAgent = "tabula/0.1"

	totalCountHeader = "X-Total-Count"
)

// Request describes one REST call against the collection.
type Request struct {
	Method string
	// ID addresses {base}/{id}; zero addresses the collection itself.
	ID    int64
	Query url.Values
	Body  any
}

// ListRequest is GET {base}?_page={n}&_limit={size}.
func ListRequest(page paging.Page) Request {
	q := url.Values{}
	q.Set("_page", strconv.Itoa(page.Index))
	q.Set("_limit", strconv.Itoa(page.Size))
	return Request{Method: http.MethodGet, Query: q}
}

// Client talks to a JSON REST collection such as jsonplaceholder's /posts.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the transport client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l.With().Str("component", "rest-client").Logger() }
}

// NewClient builds a Client for the collection at rawURL.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(rawURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the collection URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List fetches one page and the total item count reported by the server.
// When the server omits x-total-count the count is inferred from the items
// seen so far.
func (c *Client) List(ctx context.Context, page paging.Page) (ListPage, error) {
	if c == nil {
		return ListPage{}, fmt.Errorf("client is nil")
	}
	var items []Record
	header, err := c.Do(ctx, ListRequest(page), &items)
	if err != nil {
		return ListPage{}, err
	}
	total, ok, err := paging.ParseTotalCount(header.Get(totalCountHeader))
	if err != nil {
		return ListPage{}, err
	}
	if !ok {
		total = page.Offset() + len(items)
	}
	return ListPage{Items: items, TotalCount: total}, nil
}

// Get fetches a single record.
func (c *Client) Get(ctx context.Context, id int64) (Record, error) {
	if c == nil {
		return Record{}, fmt.Errorf("client is nil")
	}
	var rec Record
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, ID: id}, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Create posts a draft and returns the record with its server-assigned id.
func (c *Client) Create(ctx context.Context, draft Draft) (Record, error) {
	if c == nil {
		return Record{}, fmt.Errorf("client is nil")
	}
	var rec Record
	if _, err := c.Do(ctx, Request{Method: http.MethodPost, Body: draft}, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Update puts a draft and returns the canonical updated record.
func (c *Client) Update(ctx context.Context, id int64, draft Draft) (Record, error) {
	if c == nil {
		return Record{}, fmt.Errorf("client is nil")
	}
	var rec Record
	if _, err := c.Do(ctx, Request{Method: http.MethodPut, ID: id, Body: draft}, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, ID: id}, nil)
	return err
}

// Do performs one request and decodes the JSON response into dest when dest
// is non-nil. It returns the response headers on success.
func (c *Client) Do(ctx context.Context, r Request, dest any) (http.Header, error) {
	reqURL := c.resolve(r)
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		class := Classify(err)
		metrics.RequestsTotal.WithLabelValues(method, string(class)).Inc()
		c.logger.Debug().Err(err).Str("method", method).Str("url", reqURL).Str("class", string(class)).Msg("request did not complete")
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &APIError{Method: method, URL: reqURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if dest == nil {
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.Header, nil
}

func (c *Client) resolve(r Request) string {
	u := *c.baseURL
	if r.ID != 0 {
		u = *u.JoinPath(strconv.FormatInt(r.ID, 10))
	}
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}
	return u.String()
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
