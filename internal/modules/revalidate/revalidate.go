// Package revalidate purges cached site responses when content changes.
package revalidate

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/pkg/reqbody"
	"go.uber.org/zap"
)

const SecretHeader = "x-revalidate-secret"

// Broad tags are purged on every revalidation.
var broadTags = []string{"wp:posts", "wp:categories"}

// Invalidator drops cached entries by path and tag.
type Invalidator interface {
	Invalidate(ctx context.Context, paths, tags []string) (int64, error)
}

// Request names what changed. A slug expands to its post page, the blog
// index and the post tag.
type Request struct {
	Slug  string
	Paths []string
	Tags  []string
}

func (r Request) empty() bool {
	return r.Slug == "" && len(r.Paths) == 0 && len(r.Tags) == 0
}

// Targets returns the paths and tags to purge, in order, without duplicates.
func (r Request) Targets() (paths, tags []string) {
	seenPath := map[string]struct{}{}
	seenTag := map[string]struct{}{}
	addPath := func(p string) {
		if _, ok := seenPath[p]; !ok {
			seenPath[p] = struct{}{}
			paths = append(paths, p)
		}
	}
	addTag := func(t string) {
		if _, ok := seenTag[t]; !ok {
			seenTag[t] = struct{}{}
			tags = append(tags, t)
		}
	}

	if r.Slug != "" {
		addPath("/blog/" + r.Slug)
		addPath("/blog")
		addTag("wp:post:" + r.Slug)
	}
	for _, p := range r.Paths {
		addPath(p)
	}
	for _, t := range r.Tags {
		addTag(t)
	}
	for _, t := range broadTags {
		addTag(t)
	}
	return paths, tags
}

type Handler struct {
	secret string
	cache  Invalidator
	logger *zap.Logger
}

func NewHandler(secret string, cache Invalidator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{secret: secret, cache: cache, logger: logger.Named("revalidate")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/revalidate", h.revalidate)
}

func (h *Handler) revalidate(c *gin.Context) {
	if h.secret == "" {
		fail(c, http.StatusInternalServerError, "Missing REVALIDATE_SECRET")
		return
	}
	provided := c.GetHeader(SecretHeader)
	if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		fail(c, http.StatusUnauthorized, "Invalid secret")
		return
	}

	body := reqbody.Read(c)
	req := Request{
		Slug:  body.String("slug"),
		Paths: body.Strings("paths"),
		Tags:  body.Strings("tags"),
	}
	if req.empty() {
		fail(c, http.StatusBadRequest, "Missing slug, paths, or tags")
		return
	}

	paths, tags := req.Targets()
	purged, err := h.cache.Invalidate(c.Request.Context(), paths, tags)
	if err != nil {
		h.logger.Error("invalidate cache", zap.Strings("paths", paths), zap.Strings("tags", tags), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Error revalidating")
		return
	}
	h.logger.Info("revalidated", zap.String("slug", req.Slug), zap.Int64("purged", purged))

	var slug any
	if req.Slug != "" {
		slug = req.Slug
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"revalidated": true,
		"slug":        slug,
		"paths":       nonNil(req.Paths),
		"tags":        nonNil(req.Tags),
		"purged":      purged,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "message": message})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
