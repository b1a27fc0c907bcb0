package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"bibliomaniacs.org/bookreviews/internal/entity"
	userService "bibliomaniacs.org/bookreviews/internal/modules/user/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	auth   userService.AuthService
	secret string
}

func NewAuthMiddleware(auth userService.AuthService, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		secret: secret,
	}
}

// tokenFromRequest pulls the bearer token from the Authorization header,
// falling back to the "token" query parameter (needed for WebSockets).
func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Query("token")
}

func (m *AuthMiddleware) parseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Subject, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		userID, err := m.parseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// Gate is the role-based access gate. Deny rules are checked before allow
// rules. The caller's role is re-resolved on every request, never cached, so
// a promotion to admin takes effect on the next request.
type Gate struct {
	Allow []string
	Deny  []string
}

func (m *AuthMiddleware) AccessGate(gate Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.RoleNoAccount

		if tokenString := tokenFromRequest(c); tokenString != "" {
			userIDStr, err := m.parseToken(tokenString)
			if err == nil {
				if userID, parseErr := uuid.Parse(userIDStr); parseErr == nil {
					user, resolved, resolveErr := m.auth.ResolveRole(c.Request.Context(), userID)
					if resolveErr == nil {
						role = resolved
						c.Set("user_id", userIDStr)
						c.Set("user_email", user.Email)
					}
				}
			}
		}

		c.Set("user_role", role)

		for _, denied := range gate.Deny {
			if role == denied {
				c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
				c.Abort()
				return
			}
		}

		if len(gate.Allow) > 0 {
			for _, allowed := range gate.Allow {
				if role == allowed {
					c.Next()
					return
				}
			}
			status := http.StatusForbidden
			if role == entity.RoleNoAccount {
				status = http.StatusUnauthorized
			}
			c.JSON(status, gin.H{"error": "access denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin gates a route group to the admin role.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.AccessGate(Gate{Allow: []string{entity.RoleAdmin}})
}

// RequireUser gates a route group to any signed-in account.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return m.AccessGate(Gate{Allow: []string{entity.RoleUser, entity.RoleAdmin}})
}
