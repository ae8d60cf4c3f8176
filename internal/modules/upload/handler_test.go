package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerRouter(svc *Service, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	NewHandler(svc).RegisterProtectedRoutes(v1)
	return r
}

func TestHandler_ListMine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, fileHeader(t, "a.png", pngBytes))
	require.NoError(t, err)
	_, err = svc.Save(ctx, 2, fileHeader(t, "b.png", pngBytes))
	require.NoError(t, err)

	r := newHandlerRouter(svc, 1)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"original_name":"a.png"`)
	assert.NotContains(t, w.Body.String(), `"original_name":"b.png"`)
}

func TestHandler_GetByID(t *testing.T) {
	svc, _ := newTestService(t)

	up, err := svc.Save(context.Background(), 1, fileHeader(t, "a.png", pngBytes))
	require.NoError(t, err)

	r := newHandlerRouter(svc, 1)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+up.ID, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), up.ID)
}

func TestHandler_GetByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	r := newHandlerRouter(svc, 1)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/no-such-id", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GetByID_OtherUsersUploadHidden(t *testing.T) {
	svc, _ := newTestService(t)

	up, err := svc.Save(context.Background(), 2, fileHeader(t, "b.png", pngBytes))
	require.NoError(t, err)

	// Requested as user 1; must be indistinguishable from a missing upload.
	r := newHandlerRouter(svc, 1)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+up.ID, nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
