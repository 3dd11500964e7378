package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GunarsK-portfolio/user-service/internal/service"
)

// Context keys set by BearerAuth.
const (
	UserIDKey      = "user_id"
	TokenClaimsKey = "token_claims"
	TokenKey       = "token"
)

// TokenAuthenticator resolves a raw bearer token to its claims.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Claims, error)
}

// BearerConfig selects where the token is read from.
type BearerConfig struct {
	// Header is the request header carrying the token. For "Authorization"
	// the value must be "Bearer <token>"; any other header holds the raw token.
	// Defaults to "Authorization".
	Header string
}

// BearerAuth admits requests carrying a valid token and stores the subject
// id under UserIDKey. Every failure gets the same response so callers cannot
// tell an expired token from a forged one.
func BearerAuth(tokens TokenAuthenticator, config BearerConfig) gin.HandlerFunc {
	header := config.Header
	if header == "" {
		header = "Authorization"
	}

	return func(c *gin.Context) {
		token := ExtractToken(c.GetHeader(header), header)
		if token == "" {
			rejectBearer(c)
			return
		}

		claims, err := tokens.Authenticate(c.Request.Context(), token)
		if err != nil {
			rejectBearer(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TokenClaimsKey, claims)
		c.Set(TokenKey, token)
		c.Next()
	}
}

// ExtractToken pulls the token out of a header value read from header.
func ExtractToken(value, header string) string {
	if !strings.EqualFold(header, "Authorization") {
		return strings.TrimSpace(value)
	}

	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserIDFromContext returns the subject id set by BearerAuth.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// ClaimsFromContext returns the token claims set by BearerAuth.
func ClaimsFromContext(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(TokenClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}

// TokenFromContext returns the raw token admitted by BearerAuth.
func TokenFromContext(c *gin.Context) string {
	return c.GetString(TokenKey)
}

func rejectBearer(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
}
