package newsletter

import (
	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/pkg/reqbody"
	"github.com/kaarshe/core/internal/pkg/response"
)

// BroadcastSecretHeader carries the shared broadcast secret.
const BroadcastSecretHeader = "x-broadcast-secret"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the public newsletter endpoints behind formMW and the
// admin count behind authMW.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, formMW ...gin.HandlerFunc) {
	g := rg.Group("/newsletter", formMW...)
	g.POST("/subscribe", h.subscribe)
	g.POST("/unsubscribe", h.unsubscribe)
	rg.POST("/newsletter/broadcast", h.broadcast)

	rg.GET("/admin/newsletter/subscribers", authMW, h.count)
}

func (h *Handler) subscribe(c *gin.Context) {
	body := reqbody.Read(c)
	out, err := h.svc.Subscribe(c.Request.Context(), body.String("email"), body.String("source"))
	if err != nil {
		response.Error(c, err)
		return
	}
	setWarnings(c, out)
	response.OK(c, nil)
}

func (h *Handler) unsubscribe(c *gin.Context) {
	body := reqbody.Read(c)
	out, err := h.svc.Unsubscribe(c.Request.Context(), body.String("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	setWarnings(c, out)
	response.OK(c, gin.H{"removed": out.Removed})
}

func (h *Handler) broadcast(c *gin.Context) {
	if err := h.svc.CheckSecret(c.GetHeader(BroadcastSecretHeader)); err != nil {
		response.Error(c, err)
		return
	}
	body := reqbody.Read(c)
	msg := BroadcastMessage{
		Kind:    ParseKind(body.String("type")),
		Title:   body.String("title"),
		URL:     body.String("url"),
		Excerpt: body.String("excerpt"),
	}
	out, err := h.svc.Broadcast(c.Request.Context(), c.GetHeader(BroadcastSecretHeader), msg)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"sent": out.Sent})
}

func (h *Handler) count(c *gin.Context) {
	n, err := h.svc.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"total": n})
}

// setWarnings exposes skipped best-effort steps to the request logger.
func setWarnings(c *gin.Context, out Outcome) {
	if len(out.Warnings) > 0 {
		c.Set("warnings", out.Warnings)
	}
}
