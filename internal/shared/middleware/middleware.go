package middleware

import (
	"net/http"
	"strings"

	"showtix/internal/shared/config"
	"showtix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// BearerAuth validates machine-to-machine bearer tokens issued by the external
// identity service. Only signature and claim shape are checked here; credential
// issuance lives outside this service.
func BearerAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			c.Set("client_id", claims["sub"])
			if scopes, ok := claims["scopes"].(string); ok {
				c.Set("scopes", scopes)
			}
		}

		c.Next()
	}
}

// RequireScope checks that the authenticated caller carries the given scope.
// Must run after BearerAuth.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopesVal, exists := c.Get("scopes")
		if !exists {
			response.RespondJSON(c, "error", http.StatusForbidden, "token carries no scopes", nil, nil)
			c.Abort()
			return
		}

		scopes, _ := scopesVal.(string)
		for _, s := range strings.Fields(scopes) {
			if s == scope {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "missing required scope: "+scope, nil, nil)
		c.Abort()
	}
}
