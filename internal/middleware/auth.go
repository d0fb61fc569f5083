package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"renovirt-backend/internal/config"
	"renovirt-backend/internal/models"
)

const (
	UserIDKey = "user_id"
	EmailKey  = "email"
	RoleKey   = "role"

	RoleAdmin = "admin"
)

// AuthMiddleware verifies the Supabase access token (HS256) and stores the
// user id, email and application role in the gin context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header", "")
			return
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || scheme != "Bearer" {
			abortUnauthorized(c, "invalid authorization header format", "")
			return
		}

		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			abortUnauthorized(c, "empty token", "")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			var msg string
			switch {
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				msg = "token signature is invalid - check JWT secret"
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "token has expired"
			case errors.Is(err, jwt.ErrTokenMalformed):
				msg = "token is malformed - ensure you're using a valid Supabase JWT token"
			default:
				msg = err.Error()
			}
			abortUnauthorized(c, "invalid token", msg)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			abortUnauthorized(c, "invalid token claims", "")
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			abortUnauthorized(c, "missing user id in token", "")
			return
		}

		c.Set(UserIDKey, sub)
		if email, ok := claims["email"].(string); ok {
			c.Set(EmailKey, email)
		}
		c.Set(RoleKey, appRole(claims))
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through. A request that does carry a
// token must still present a valid one.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	auth := AuthMiddleware(cfg)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		auth(c)
	}
}

// appRole reads app_metadata.role. Only the service can write app_metadata,
// unlike user_metadata.
func appRole(claims jwt.MapClaims) string {
	meta, ok := claims["app_metadata"].(map[string]interface{})
	if !ok {
		return ""
	}
	role, _ := meta["role"].(string)
	return role
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: "admin role required"})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, errMsg, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: errMsg, Message: message})
}
