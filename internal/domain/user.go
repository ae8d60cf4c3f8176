package domain

import "time"

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`

	// Never serialized outward.
	PasswordHash string `json:"-"`

	// At most one valid refresh token per user; empty means logged out.
	// Refresh is accepted only when the presented token equals this value.
	RefreshToken string `json:"-"`

	AvatarURL     string    `json:"avatar_url,omitempty"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
