package middleware

import (
	"net/http"
	"strings"

	jwtsvc "vidstream/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const accessCookie = "accessToken"

// Auth verifies the access token and puts user_id on the context. The token
// comes from the Authorization header, with the accessToken cookie as
// fallback. Validity is purely cryptographic plus expiry; nothing is checked
// against stored state.
func Auth(codec *jwtsvc.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			tokenStr, _ = c.Cookie(accessCookie)
		}
		if tokenStr == "" {
			abortUnauthorized(c, "Missing access token")
			return
		}

		claims, err := codec.VerifyAccessToken(tokenStr)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
