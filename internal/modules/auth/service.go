package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vidstream/internal/domain"
	"vidstream/internal/pkg/validator"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service orchestrates the login/refresh/logout state machine. It holds no
// mutable state of its own; all session state is the refresh-token slot on
// the user record.
type Service struct {
	users UserRepositoryInterface
	codec TokenCodec
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResult struct {
	User   *domain.User
	Tokens TokenPair
}

func NewService(users UserRepositoryInterface, codec TokenCodec) *Service {
	return &Service{users: users, codec: codec}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, fields)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:      strings.ToLower(strings.TrimSpace(req.Username)),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:      req.FullName,
		PasswordHash:  hash,
		AvatarURL:     req.AvatarURL,
		CoverImageURL: req.CoverImageURL,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// DeleteUser removes an account. Registration uses it to roll back when the
// avatar upload fails, so a retry does not hit the duplicate check.
func (s *Service) DeleteUser(ctx context.Context, userID int64) error {
	return s.users.Delete(ctx, userID)
}

// Login verifies credentials and issues a fresh token pair. The refresh token
// is persisted onto the user record before anything is returned; a prior
// session for the account is silently superseded.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}

	// Issuance and persistence are one unit: if the write fails the caller
	// gets no tokens.
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	user.RefreshToken = ""
	return &LoginResult{User: user, Tokens: pair}, nil
}

// Refresh redeems a refresh token for a new pair, rotating the stored slot.
// A token can be redeemed at most once: the swap is conditional on the slot
// still holding the presented value, so a replayed or superseded token fails
// even under concurrent calls.
func (s *Service) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	claims, err := s.codec.VerifyRefreshToken(presented)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshUserNotFound
		}
		return nil, err
	}

	pair, err := s.issuePair(claims.UserID)
	if err != nil {
		return nil, err
	}

	swapped, err := s.users.RotateRefreshToken(ctx, claims.UserID, presented, pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, ErrRefreshReused
	}

	return &pair, nil
}

// Logout clears the refresh-token slot. It does not require a valid refresh
// token and clearing an already-empty slot succeeds.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.users.ClearRefreshToken(ctx, userID)
}

// ChangePassword verifies the old password before persisting the new hash.
// The refresh slot is cleared as well, so existing sessions must log in again.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	return s.users.ClearRefreshToken(ctx, userID)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	user.RefreshToken = ""
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	user.RefreshToken = ""
	return user, nil
}

// SetAvatarURL and SetCoverImageURL persist media-store URLs produced by the
// upload handler.
func (s *Service) SetAvatarURL(ctx context.Context, userID int64, url string) (*domain.User, error) {
	return s.setImageURL(ctx, userID, url, false)
}

func (s *Service) SetCoverImageURL(ctx context.Context, userID int64, url string) (*domain.User, error) {
	return s.setImageURL(ctx, userID, url, true)
}

func (s *Service) setImageURL(ctx context.Context, userID int64, url string, cover bool) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if cover {
		user.CoverImageURL = url
	} else {
		user.AvatarURL = url
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	user.RefreshToken = ""
	return user, nil
}

func (s *Service) issuePair(userID int64) (TokenPair, error) {
	access, err := s.codec.IssueAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.IssueRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
