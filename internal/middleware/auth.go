package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/pkg/jwt"
	"github.com/kaarshe/core/internal/pkg/response"
)

const (
	ContextKeySubject = "subject"
	RoleAdmin         = "admin"
)

// AdminAuth accepts only bearer tokens signed by signer with the admin role.
// Without a signing secret every request is rejected.
func AdminAuth(signer *jwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" || signer == nil {
			response.Unauthorized(c)
			return
		}
		claims, err := signer.Parse(token)
		if err != nil || claims.Role != RoleAdmin {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// CurrentSubject returns the authenticated token subject.
func CurrentSubject(c *gin.Context) string {
	v, _ := c.Get(ContextKeySubject)
	s, _ := v.(string)
	return s
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
