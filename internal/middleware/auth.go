package middleware

import (
	"strings"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionCookie holds the signed session token for browser clients.
const SessionCookie = "aarogyam_session"

const (
	principalKey = "principal"
	userRoleKey  = "userRole"
)

// TokenParser turns a session token back into the signed-in user.
type TokenParser interface {
	ParseToken(token string) (*models.Principal, error)
}

// LoadSession resolves the Bearer header or the session cookie. Requests
// without a valid token continue anonymously.
func LoadSession(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}
		if token != "" {
			if p, err := parser.ParseToken(token); err == nil {
				c.Set(principalKey, p)
				c.Set(userRoleKey, p.Role)
			}
		}
		c.Next()
	}
}

// AuthMiddleware stops anonymous requests; onMissing writes the response.
func AuthMiddleware(onMissing gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentPrincipal(c); !ok {
			onMissing(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RoleAuthMiddleware allows only the given roles. Use it after AuthMiddleware.
func RoleAuthMiddleware(onDenied gin.HandlerFunc, allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if ok {
			for _, role := range allowedRoles {
				if p.Role == role {
					c.Next()
					return
				}
			}
		}
		onDenied(c)
		c.Abort()
	}
}

func CurrentPrincipal(c *gin.Context) (*models.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*models.Principal)
	return p, ok && p != nil
}

// GetUserIDFromContext returns the signed-in user's id.
func GetUserIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	p, ok := CurrentPrincipal(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	return p.ID, true
}

func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	role, ok := c.Get(userRoleKey)
	if !ok {
		return "", false
	}
	r, ok := role.(models.Role)
	return r, ok
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
