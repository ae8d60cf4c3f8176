package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtsvc "vidstream/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(codec *jwtsvc.Codec) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(codec), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("user_id")})
	})
	return r
}

func TestAuth_MissingToken(t *testing.T) {
	codec := jwtsvc.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	r := newAuthRouter(codec)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	codec := jwtsvc.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	r := newAuthRouter(codec)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RefreshTokenRejected(t *testing.T) {
	codec := jwtsvc.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	r := newAuthRouter(codec)

	// A refresh token must never grant resource access.
	refresh, err := codec.IssueRefreshToken(7)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_BearerHeader(t *testing.T) {
	codec := jwtsvc.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	r := newAuthRouter(codec)

	access, err := codec.IssueAccessToken(7)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestAuth_CookieFallback(t *testing.T) {
	codec := jwtsvc.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	r := newAuthRouter(codec)

	access, err := codec.IssueAccessToken(7)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	expired := jwtsvc.NewCodec("access-secret", "refresh-secret", -time.Minute, time.Hour)
	codec := jwtsvc.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	r := newAuthRouter(codec)

	access, err := expired.IssueAccessToken(7)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
