package crontask

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pkgcron "github.com/kaarshe/core/internal/pkg/cron"
	"github.com/kaarshe/core/internal/pkg/response"
)

// Handler wraps the scheduler for HTTP access.
type Handler struct {
	sched *pkgcron.Scheduler
}

func NewHandler(sched *pkgcron.Scheduler) *Handler {
	return &Handler{sched: sched}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/admin/cron", authMW)
	g.GET("", h.list)
	g.GET("/:name", h.get)
	g.POST("/:name/run", h.run)
}

// GET /admin/cron
func (h *Handler) list(c *gin.Context) {
	response.Data(c, h.sched.List())
}

// GET /admin/cron/:name
func (h *Handler) get(c *gin.Context) {
	result, err := h.sched.GetTask(c.Param("name"))
	if err != nil {
		notFound(c, err)
		return
	}
	response.Data(c, result)
}

// POST /admin/cron/:name/run
func (h *Handler) run(c *gin.Context) {
	if err := h.sched.Run(c.Param("name")); err != nil {
		notFound(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ok": true, "message": "job triggered"})
}

func notFound(c *gin.Context, err error) {
	if errors.Is(err, pkgcron.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, "Cron job not found")
		return
	}
	response.Error(c, err)
}
