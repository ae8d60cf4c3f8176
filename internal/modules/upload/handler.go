package upload

import (
	"errors"
	"net/http"

	"vidstream/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler serves upload metadata. The bytes themselves are served by the
// static route (local backend) or directly from S3.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	uploadGroup := protected.Group("/uploads")
	{
		uploadGroup.GET("", h.ListMine)
		uploadGroup.GET("/:id", h.GetByID)
	}
}

func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetInt64("user_id")

	uploads, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list uploads")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"uploads": uploads})
}

// GetByID returns metadata for one upload. Other users' uploads look the same
// as missing ones.
func (h *Handler) GetByID(c *gin.Context) {
	userID := c.GetInt64("user_id")

	up, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrUploadNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Upload not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch upload")
		return
	}
	if up.UserID != userID {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Upload not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"upload": up})
}
