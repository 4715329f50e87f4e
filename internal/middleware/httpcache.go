package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/kaarshe/core/internal/pkg/metrics"
	"github.com/kaarshe/core/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	APICachePrefix            = "kaarshe:http-cache:"
	pathIndexPrefix           = APICachePrefix + "path:"
	tagIndexPrefix            = APICachePrefix + "tag:"
	entryPrefix               = APICachePrefix + "entry:"
	cacheTagsKey              = "cache_tags"
	cachePagesKey             = "cache_pages"
	defaultHTTPCacheTTL       = 60 * time.Second
	defaultHTTPCacheMaxBody   = 1 << 20 // 1 MiB
	staleWhileRevalidateValue = 60
)

type HTTPCacheOptions struct {
	TTL             time.Duration
	EnableCDNHeader bool
	Disable         bool
	SkipPaths       []string
	MaxBodyBytes    int
}

type cachedHTTPResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	BodyBase64  string `json:"body_base64"`
	Body        []byte `json:"-"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body         []byte
	maxBodyBytes int
	overflow     bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.maxBodyBytes <= 0 || w.overflow || len(data) == 0 {
		return
	}
	remaining := w.maxBodyBytes - len(w.body)
	if remaining <= 0 {
		w.overflow = true
		return
	}
	if len(data) > remaining {
		w.body = append(w.body, data[:remaining]...)
		w.overflow = true
		return
	}
	w.body = append(w.body, data...)
}

// TagResponse attaches invalidation tags to the response being built.
func TagResponse(c *gin.Context, tags ...string) {
	appendContextList(c, cacheTagsKey, tags)
}

// TagPages records the public site pages the response renders, so a purge of
// "/blog/{slug}" also drops the API response behind it.
func TagPages(c *gin.Context, pages ...string) {
	appendContextList(c, cachePagesKey, pages)
}

func appendContextList(c *gin.Context, key string, values []string) {
	existing, _ := c.Get(key)
	list, _ := existing.([]string)
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	c.Set(key, list)
}

// HTTPCache stores successful GET responses in redis and indexes each entry
// by request path, by the site pages and by the tags its handler attached.
type HTTPCache struct {
	rdb    *redis.Client
	opts   HTTPCacheOptions
	logger *zap.Logger
}

// NewHTTPCache returns a cache; a nil client disables it.
func NewHTTPCache(rdb *redis.Client, opts HTTPCacheOptions, logger *zap.Logger) *HTTPCache {
	if opts.TTL <= 0 {
		opts.TTL = defaultHTTPCacheTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultHTTPCacheMaxBody
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPCache{rdb: rdb, opts: opts, logger: logger}
}

func (h *HTTPCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.opts.Disable || h.rdb == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		if shouldSkipCachePath(path, h.opts.SkipPaths) || hasBypassTimestamp(c) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := entryPrefix + c.Request.URL.RequestURI()
		if payload, ok := h.read(ctx, cacheKey); ok {
			c.Header("x-kaarshe-cache", "hit")
			h.setCacheHeader(c.Writer, payload.Status)
			c.Data(payload.Status, payload.ContentType, payload.Body)
			c.Abort()
			return
		}

		buffer := &cacheBodyWriter{ResponseWriter: c.Writer, maxBodyBytes: h.opts.MaxBodyBytes}
		c.Writer = buffer
		c.Header("x-kaarshe-cache", "miss")
		c.Next()

		status := c.Writer.Status()
		if !isCacheableResponse(status, c.Writer.Header()) {
			return
		}
		h.setCacheHeader(c.Writer, status)
		if buffer.overflow || len(buffer.body) == 0 {
			return
		}

		raw, err := json.Marshal(cachedHTTPResponse{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			BodyBase64:  base64.StdEncoding.EncodeToString(buffer.body),
		})
		if err != nil {
			return
		}
		if err := h.rdb.Set(ctx, cacheKey, raw, h.opts.TTL); err != nil {
			h.logger.Debug("http cache store failed", zap.String("key", cacheKey), zap.Error(err))
			return
		}
		// Index sets outlive entries slightly so a purge always finds them.
		indexTTL := h.opts.TTL + time.Minute
		_ = h.rdb.Index(ctx, pathIndexPrefix+path, indexTTL, cacheKey)
		if pages, ok := c.Get(cachePagesKey); ok {
			for _, page := range pages.([]string) {
				_ = h.rdb.Index(ctx, pathIndexPrefix+page, indexTTL, cacheKey)
			}
		}
		if tags, ok := c.Get(cacheTagsKey); ok {
			for _, tag := range tags.([]string) {
				_ = h.rdb.Index(ctx, tagIndexPrefix+tag, indexTTL, cacheKey)
			}
		}
	}
}

// Invalidate drops every entry indexed under the given paths or tags and
// returns how many entries were removed.
func (h *HTTPCache) Invalidate(ctx context.Context, paths, tags []string) (int64, error) {
	if h.rdb == nil {
		return 0, nil
	}
	indexes := make([]string, 0, len(paths)+len(tags))
	for _, p := range paths {
		indexes = append(indexes, pathIndexPrefix+p)
	}
	for _, t := range tags {
		indexes = append(indexes, tagIndexPrefix+t)
	}

	seen := make(map[string]struct{})
	var entries []string
	for _, idx := range indexes {
		members, err := h.rdb.Members(ctx, idx)
		if err != nil {
			return 0, err
		}
		for _, m := range members {
			if _, dup := seen[m]; !dup {
				seen[m] = struct{}{}
				entries = append(entries, m)
			}
		}
	}

	var purged int64
	if len(entries) > 0 {
		n, err := h.rdb.Del(ctx, entries...)
		if err != nil {
			return 0, err
		}
		purged = n
	}
	if len(indexes) > 0 {
		if _, err := h.rdb.Del(ctx, indexes...); err != nil {
			return purged, err
		}
	}
	metrics.CachePurgedTotal.Add(float64(purged))
	return purged, nil
}

func (h *HTTPCache) read(ctx context.Context, cacheKey string) (cachedHTTPResponse, bool) {
	raw, err := h.rdb.Get(ctx, cacheKey)
	if err != nil || raw == "" {
		return cachedHTTPResponse{}, false
	}
	var payload cachedHTTPResponse
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return cachedHTTPResponse{}, false
	}
	if payload.Status <= 0 {
		payload.Status = http.StatusOK
	}
	if payload.ContentType == "" {
		payload.ContentType = "application/json; charset=utf-8"
	}
	body, err := base64.StdEncoding.DecodeString(payload.BodyBase64)
	if err != nil {
		return cachedHTTPResponse{}, false
	}
	payload.Body = body
	return payload, true
}

func shouldSkipCachePath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		p := strings.TrimSpace(pattern)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func hasBypassTimestamp(c *gin.Context) bool {
	query := c.Request.URL.Query()
	for _, key := range []string{"ts", "timestamp", "_t", "t"} {
		if strings.TrimSpace(query.Get(key)) != "" {
			return true
		}
	}
	return false
}

func isCacheableResponse(status int, headers http.Header) bool {
	if status != http.StatusOK {
		return false
	}
	cacheControl := strings.ToLower(headers.Get("Cache-Control"))
	return !strings.Contains(cacheControl, "no-cache") &&
		!strings.Contains(cacheControl, "no-store") &&
		!strings.Contains(cacheControl, "private")
}

func (h *HTTPCache) setCacheHeader(w gin.ResponseWriter, status int) {
	if status != http.StatusOK || w.Header().Get("cache-control") != "" {
		return
	}
	ttl := strconv.Itoa(int(h.opts.TTL / time.Second))
	value := "public, max-age=" + ttl
	if h.opts.EnableCDNHeader {
		value += ", s-maxage=" + ttl + ", stale-while-revalidate=" + strconv.Itoa(staleWhileRevalidateValue)
		w.Header().Set("cdn-cache-control", "max-age="+ttl)
	}
	w.Header().Set("cache-control", value)
}
