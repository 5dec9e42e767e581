package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/pkg/jwt"
	"storefront/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxActorKey    = "actor"
	ctxTenantIDKey = "tenant_id"

	headerTenantID  = "X-Tenant-ID"
	headerSessionID = "X-Session-ID"
)

type IdentityMiddleware struct {
	tokens *jwt.Service
}

func NewIdentityMiddleware(tokens *jwt.Service) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens}
}

// Identify resolves the acting principal for storefront routes. A valid
// Bearer token yields a user actor whose tenant comes from the token
// claims. Otherwise X-Session-ID plus X-Tenant-ID yields a guest actor.
// Requests that present neither are rejected.
func (m *IdentityMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			claims, err := m.tokens.ValidateToken(token)
			if err != nil {
				slog.Warn("Token validation failed in identity middleware", "error", err.Error())
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid or expired token",
				})
				c.Abort()
				return
			}

			actor := shared.NewUserActor(claims.TenantID, claims.UserID)
			c.Set(ctxActorKey, actor)
			c.Set(ctxTenantIDKey, claims.TenantID)
			c.Next()
			return
		}

		sessionID := strings.TrimSpace(c.GetHeader(headerSessionID))
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer token or session header required",
			})
			c.Abort()
			return
		}

		tenantID, err := uuid.Parse(c.GetHeader(headerTenantID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Valid " + headerTenantID + " header required",
			})
			c.Abort()
			return
		}

		actor := shared.NewGuestActor(tenantID, sessionID)
		c.Set(ctxActorKey, actor)
		c.Set(ctxTenantIDKey, tenantID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}

func GetActor(c *gin.Context) (shared.Actor, bool) {
	v, exists := c.Get(ctxActorKey)
	if !exists {
		return shared.Actor{}, false
	}

	actor, ok := v.(shared.Actor)
	return actor, ok
}

func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxTenantIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := v.(uuid.UUID)
	return id, ok
}
