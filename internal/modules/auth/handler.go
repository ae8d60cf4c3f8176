package auth

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"vidstream/internal/config"
	"vidstream/internal/domain"
	"vidstream/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// MediaStore is the external object-upload integration used for profile
// images. It plays no part in the token protocol.
type MediaStore interface {
	SaveImage(ctx context.Context, userID int64, fh *multipart.FileHeader) (url string, err error)
}

// Handler manages all HTTP interactions for authentication and profile.
type Handler struct {
	service *Service
	media   MediaStore
	cfg     *config.Config
}

func NewHandler(service *Service, media MediaStore, cfg *config.Config) *Handler {
	return &Handler{service: service, media: media, cfg: cfg}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	authGroup := protected.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/change-password", h.ChangePassword)
	}
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PATCH("/me", h.UpdateProfile)
		userGroup.PATCH("/me/avatar", h.UpdateAvatar)
		userGroup.PATCH("/me/cover", h.UpdateCoverImage)
	}
}

// Register creates an account from a multipart form. The avatar file is
// required, the cover image optional; both go through the media store and
// only their URLs land on the user record.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Avatar file is required")
		return
	}
	coverFile, _ := c.FormFile("cover_image")

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		if errors.Is(err, ErrUserExists) {
			response.Error(c, http.StatusConflict, "USER_EXISTS", "User with email or username already exists")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		return
	}

	avatarURL, err := h.media.SaveImage(c.Request.Context(), user.ID, avatarFile)
	if err != nil {
		h.rollbackRegistration(c, user.ID)
		response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store avatar")
		return
	}
	user, err = h.service.SetAvatarURL(c.Request.Context(), user.ID, avatarURL)
	if err != nil {
		h.rollbackRegistration(c, user.ID)
		response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store avatar")
		return
	}

	if coverFile != nil {
		coverURL, err := h.media.SaveImage(c.Request.Context(), user.ID, coverFile)
		if err == nil {
			if updated, uerr := h.service.SetCoverImageURL(c.Request.Context(), user.ID, coverURL); uerr == nil {
				user = updated
			}
		}
	}

	response.Success(c, http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

// rollbackRegistration removes a half-registered account so a retry does not
// fail the duplicate check. The avatar is required, so an account without one
// must not survive.
func (h *Handler) rollbackRegistration(c *gin.Context, userID int64) {
	if err := h.service.DeleteUser(c.Request.Context(), userID); err != nil {
		log.Printf("registration rollback failed user_id=%d error=%v", userID, err)
	}
}

// Login authenticates by username or email and sets the token pair as
// httpOnly cookies. Lookup and password failures are reported identically.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidCredentials) {
			log.Printf("login rejected identifier=%q reason=%v", req.Identifier, err)
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Username/email or password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	h.setAuthCookies(c, result.Tokens)
	response.Success(c, http.StatusOK, gin.H{
		"user":         toUserResponse(result.User),
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// Refresh rotates the token pair. The refresh token comes from the cookie,
// with a body field as fallback. Any failure forces a full re-login.
func (h *Handler) Refresh(c *gin.Context) {
	presented, _ := c.Cookie(refreshCookie)
	if presented == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token is missing")
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), presented)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshInvalid):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid or expired")
		case errors.Is(err, ErrRefreshUserNotFound):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not found")
		case errors.Is(err, ErrRefreshReused):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token revoked or already used")
		default:
			response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh session")
		}
		return
	}

	h.setAuthCookies(c, *pair)
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout clears the stored refresh token and both cookies. Reported as
// success even when there was no active session.
func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetInt64("user_id")

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to logout")
		return
	}

	h.clearAuthCookies(c)
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Old password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "PASSWORD_CHANGE_FAILED", "Failed to change password")
		return
	}

	h.clearAuthCookies(c)
	response.Success(c, http.StatusOK, gin.H{"message": "Password changed, please login again"})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Could not update profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.service.SetAvatarURL)
}

func (h *Handler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "cover_image", h.service.SetCoverImageURL)
}

func (h *Handler) updateImage(c *gin.Context, field string, set func(context.Context, int64, string) (*domain.User, error)) {
	userID := c.GetInt64("user_id")

	file, err := c.FormFile(field)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", field+" file is required")
		return
	}

	url, err := h.media.SaveImage(c.Request.Context(), userID, file)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store "+field)
		return
	}

	user, err := set(c.Request.Context(), userID, url)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Could not update "+field)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h *Handler) setAuthCookies(c *gin.Context, pair TokenPair) {
	c.SetSameSite(sameSiteMode(h.cfg.CookieSameSite))
	c.SetCookie(accessCookie, pair.AccessToken, int(h.cfg.AccessTTL.Seconds()), h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
	c.SetCookie(refreshCookie, pair.RefreshToken, int(h.cfg.RefreshTTL.Seconds()), h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(sameSiteMode(h.cfg.CookieSameSite))
	c.SetCookie(accessCookie, "", -1, h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
	c.SetCookie(refreshCookie, "", -1, h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
}

func sameSiteMode(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt.Format("2006-01-02"),
	}
}
