package auth

import (
	"context"

	"vidstream/internal/domain"
	"vidstream/internal/pkg/jwt"
)

// UserRepositoryInterface lists only the methods the session manager uses.
// The refresh-token slot lives on the user record; Rotate must be atomic
// per user (single conditional write at the storage layer).
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	SetRefreshToken(ctx context.Context, userID int64, token string) error
	ClearRefreshToken(ctx context.Context, userID int64) error
	RotateRefreshToken(ctx context.Context, userID int64, expected, next string) (bool, error)
}

// TokenCodec issues and verifies the signed token pair.
type TokenCodec interface {
	IssueAccessToken(userID int64) (string, error)
	IssueRefreshToken(userID int64) (string, error)
	VerifyRefreshToken(token string) (*jwt.Claims, error)
}
