package intake

import (
	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/pkg/reqbody"
	"github.com/kaarshe/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, formMW ...gin.HandlerFunc) {
	g := rg.Group("", formMW...)
	g.POST("/contact", h.contact)
	g.POST("/book-speaking", h.bookSpeaking)
}

// POST /contact
func (h *Handler) contact(c *gin.Context) {
	body := reqbody.Read(c)
	out, err := h.svc.SubmitContact(c.Request.Context(), ContactForm{
		FirstName: body.String("firstName"),
		LastName:  body.String("lastName"),
		Email:     body.String("email"),
		Phone:     body.String("phone"),
		Subject:   body.String("subject"),
		Message:   body.String("message"),
	})
	h.reply(c, out, err)
}

// POST /book-speaking
func (h *Handler) bookSpeaking(c *gin.Context) {
	body := reqbody.Read(c)
	out, err := h.svc.SubmitSpeaking(c.Request.Context(), SpeakingForm{
		Organization: body.String("organization"),
		Email:        body.String("email"),
		Date:         body.String("date"),
		Format:       body.String("format"),
		Notes:        body.String("notes"),
	})
	h.reply(c, out, err)
}

func (h *Handler) reply(c *gin.Context, out Outcome, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(out.Warnings) > 0 {
		c.Set("warnings", out.Warnings)
	}
	response.OK(c, nil)
}
