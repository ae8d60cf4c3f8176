package auth

type RegisterRequest struct {
	FullName string `form:"full_name" binding:"required" validate:"required"`
	Email    string `form:"email" binding:"required,email" validate:"required,email"`
	Username string `form:"username" binding:"required,min=3" validate:"required,min=3"`
	Password string `form:"password" binding:"required,min=6" validate:"required,min=6"`

	// Filled by the handler via the media store once the account exists;
	// upload keys are derived from the user ID.
	AvatarURL     string `form:"-"`
	CoverImageURL string `form:"-"`
}

type LoginRequest struct {
	// Username or email; either matching field resolves the account.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	// Body fallback when the refreshToken cookie is unavailable.
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty" binding:"omitempty,email"`
}

type UserResponse struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	CreatedAt     string `json:"created_at"`
}
