package site

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/middleware"
	"github.com/kaarshe/core/internal/pkg/pagination"
	"github.com/kaarshe/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the read API under /site. cacheMW, when given, wraps
// every route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, cacheMW ...gin.HandlerFunc) {
	g := rg.Group("/site", cacheMW...)
	g.GET("/posts", h.posts)
	g.GET("/posts/:slug", h.post)
	g.GET("/categories", h.categories)
	g.GET("/pages/:slug", h.page)
	g.GET("/items/:type", h.items)
	g.GET("/home", h.home)
	g.GET("/settings", h.settings)
}

func (h *Handler) posts(c *gin.Context) {
	q := pagination.FromContext(c, pagination.DefaultSize)
	category, _ := strconv.ParseInt(c.Query("category"), 10, 64)
	cards, meta, err := h.svc.Posts(c.Request.Context(), q, strings.TrimSpace(c.Query("search")), category)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.TagResponse(c, "wp:posts")
	middleware.TagPages(c, "/blog")
	response.Paged(c, cards, meta)
}

func (h *Handler) post(c *gin.Context) {
	slug := c.Param("slug")
	post, err := h.svc.Post(c.Request.Context(), slug)
	if err != nil {
		response.Error(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}
	middleware.TagResponse(c, "wp:post:"+slug)
	middleware.TagPages(c, "/blog/"+slug)
	response.Data(c, post)
}

func (h *Handler) categories(c *gin.Context) {
	terms, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.TagResponse(c, "wp:categories")
	response.Data(c, terms)
}

func (h *Handler) page(c *gin.Context) {
	slug := c.Param("slug")
	page, err := h.svc.Page(c.Request.Context(), slug)
	if err != nil {
		response.Error(c, err)
		return
	}
	if page == nil {
		response.NotFound(c)
		return
	}
	middleware.TagResponse(c, "wp:page:"+slug)
	middleware.TagPages(c, "/"+slug)
	response.Data(c, page)
}

func (h *Handler) items(c *gin.Context) {
	postType := c.Param("type")
	q := pagination.FromContext(c, defaultItemsSize)
	items, meta, err := h.svc.Items(c.Request.Context(), postType, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.TagResponse(c, "wp:cpt:"+postType)
	response.Paged(c, items, meta)
}

func (h *Handler) home(c *gin.Context) {
	middleware.TagResponse(c, "wp:page:"+h.svc.settings.HomePageSlug, "wp:posts")
	middleware.TagPages(c, "/")
	response.Data(c, h.svc.Home(c.Request.Context()))
}

func (h *Handler) settings(c *gin.Context) {
	middleware.TagResponse(c, "wp:page:"+h.svc.settings.SettingsPageSlug)
	response.Data(c, h.svc.Settings(c.Request.Context()))
}
