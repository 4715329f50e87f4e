// Package wp is a client for the WordPress REST API used as the site's
// content source and record store.
package wp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kaarshe/core/internal/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	maxErrorBody   = 4096
	defaultTimeout = 15 * time.Second
)

var (
	// ErrNoBaseURL means the API base address is not configured.
	ErrNoBaseURL = errors.New("wordpress api base is not configured")
	// ErrNoCredentials means the application user or password is not configured.
	ErrNoCredentials = errors.New("wordpress application credentials are not configured")
)

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wordpress %s %s failed (%d): %s", e.Method, e.Path, e.Status, e.Body)
}

// Config configures a Client.
type Config struct {
	BaseURL  string
	User     string
	Password string
	Timeout  time.Duration
}

// Client talks to one WordPress REST API root, e.g. https://cms/wp-json/wp/v2.
type Client struct {
	base     string
	user     string
	password string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*result]
	logger   *zap.Logger
}

type Option func(*Client)

// WithLogger sets the logger used for breaker transitions.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

type result struct {
	status int
	header http.Header
	body   []byte
}

// New builds a Client. An empty BaseURL is allowed; calls then fail with ErrNoBaseURL.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		base:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		user:     strings.TrimSpace(cfg.User),
		password: strings.TrimSpace(cfg.Password),
		http:     &http.Client{Timeout: timeout},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*result](gobreaker.Settings{
		Name:        "wordpress",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors are answers, not outages.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.ContentBreakerState.Set(breakerStateValue(to))
			c.logger.Warn("content source breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// CanRead reports whether read calls can be made.
func (c *Client) CanRead() error {
	if c.base == "" {
		return ErrNoBaseURL
	}
	return nil
}

// Configured reports whether authenticated writes can be made.
func (c *Client) Configured() error {
	if c.base == "" {
		return ErrNoBaseURL
	}
	if c.user == "" || c.password == "" {
		return ErrNoCredentials
	}
	return nil
}

// ListItems fetches one page of a collection such as "posts", "pages" or a custom post type.
func (c *Client) ListItems(ctx context.Context, collection string, p ListParams) (*ListResult, error) {
	res, err := c.do(ctx, "list", http.MethodGet, "/"+collection, p.values(), nil)
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(res.body, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	out := &ListResult{Items: items, Total: len(items), TotalPages: 1}
	if v, err := strconv.Atoi(res.header.Get("X-WP-Total")); err == nil {
		out.Total = v
	}
	if v, err := strconv.Atoi(res.header.Get("X-WP-TotalPages")); err == nil {
		out.TotalPages = v
	}
	return out, nil
}

// GetItemBySlug returns the first item of collection with slug, or nil when none matches.
func (c *Client) GetItemBySlug(ctx context.Context, collection, slug string) (*Item, error) {
	list, err := c.ListItems(ctx, collection, ListParams{Slug: slug, Embed: true})
	if err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		return nil, nil
	}
	return &list.Items[0], nil
}

// CreateItem creates one record in collection. The returned item is zero
// when the CMS answers 2xx with a body that is not an item.
func (c *Client) CreateItem(ctx context.Context, collection string, p CreateParams) (*Item, error) {
	if err := c.Configured(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	res, err := c.do(ctx, "create", http.MethodPost, "/"+collection, nil, payload)
	if err != nil {
		return nil, err
	}
	// Any 2xx means the record exists; the body is informational.
	var item Item
	if err := json.Unmarshal(res.body, &item); err != nil {
		c.logger.Debug("created item body not decoded", zap.String("collection", collection), zap.Error(err))
	}
	return &item, nil
}

// DeleteItem permanently deletes one record, bypassing the trash.
func (c *Client) DeleteItem(ctx context.Context, collection string, id int64) error {
	if err := c.Configured(); err != nil {
		return err
	}
	q := url.Values{"force": {"true"}}
	_, err := c.do(ctx, "delete", http.MethodDelete, "/"+collection+"/"+strconv.FormatInt(id, 10), q, nil)
	return err
}

// Categories lists non-empty categories.
func (c *Client) Categories(ctx context.Context, perPage int) ([]Term, error) {
	if perPage <= 0 {
		perPage = 100
	}
	p := ListParams{PerPage: perPage, HideEmpty: true}
	res, err := c.do(ctx, "categories", http.MethodGet, "/categories", p.values(), nil)
	if err != nil {
		return nil, err
	}
	var terms []Term
	if err := json.Unmarshal(res.body, &terms); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return terms, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body []byte) (*result, error) {
	if c.base == "" {
		return nil, ErrNoBaseURL
	}
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	res, err := c.breaker.Execute(func() (*result, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.user != "" && c.password != "" {
			req.SetBasicAuth(c.user, c.password)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		r := &result{status: resp.StatusCode, header: resp.Header, body: data}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return r, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: truncate(string(data), maxErrorBody)}
		}
		return r, nil
	})
	metrics.ContentRequestsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Slug != "" {
		q.Set("slug", p.Slug)
	}
	if p.Categories > 0 {
		q.Set("categories", strconv.FormatInt(p.Categories, 10))
	}
	if len(p.Exclude) > 0 {
		ids := make([]string, 0, len(p.Exclude))
		for _, id := range p.Exclude {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		q.Set("exclude", strings.Join(ids, ","))
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	if p.OrderBy != "" {
		q.Set("orderby", p.OrderBy)
	}
	if p.Embed {
		q.Set("_embed", "true")
	}
	if p.HideEmpty {
		q.Set("hide_empty", "true")
	}
	return q
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
