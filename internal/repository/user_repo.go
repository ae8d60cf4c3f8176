package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"vidstream/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when a username or email is already taken.
var ErrDuplicate = errors.New("username or email already exists")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// AutoMigrate creates the users table for dev and test databases.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{})
}

type userModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	Username      string    `gorm:"column:username;uniqueIndex"`
	Email         string    `gorm:"column:email;uniqueIndex"`
	FullName      string    `gorm:"column:full_name"`
	PasswordHash  string    `gorm:"column:password_hash"`
	RefreshToken  string    `gorm:"column:refresh_token"`
	AvatarURL     *string   `gorm:"column:avatar_url"`
	CoverImageURL *string   `gorm:"column:cover_image_url"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var avatar, cover string
	if m.AvatarURL != nil {
		avatar = *m.AvatarURL
	}
	if m.CoverImageURL != nil {
		cover = *m.CoverImageURL
	}

	return &domain.User{
		ID:            m.ID,
		Username:      m.Username,
		Email:         m.Email,
		FullName:      m.FullName,
		PasswordHash:  m.PasswordHash,
		RefreshToken:  m.RefreshToken,
		AvatarURL:     avatar,
		CoverImageURL: cover,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	var avatar, cover *string
	if u.AvatarURL != "" {
		v := u.AvatarURL
		avatar = &v
	}
	if u.CoverImageURL != "" {
		v := u.CoverImageURL
		cover = &v
	}

	// Username and email are case-normalized at write time.
	return userModel{
		ID:            u.ID,
		Username:      strings.ToLower(strings.TrimSpace(u.Username)),
		Email:         strings.ToLower(strings.TrimSpace(u.Email)),
		FullName:      u.FullName,
		PasswordHash:  u.PasswordHash,
		RefreshToken:  u.RefreshToken,
		AvatarURL:     avatar,
		CoverImageURL: cover,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if isDuplicateErr(tx.Error) {
			return ErrDuplicate
		}
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

// GetByIdentifier resolves a user by username or email; either field matching
// is a hit. The identifier is lowercased before the lookup.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", ident, ident).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", u.ID).
		Updates(map[string]any{
			"username":        m.Username,
			"email":           m.Email,
			"full_name":       m.FullName,
			"avatar_url":      m.AvatarURL,
			"cover_image_url": m.CoverImageURL,
		})
	if tx.Error != nil {
		if isDuplicateErr(tx.Error) {
			return ErrDuplicate
		}
		return tx.Error
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&userModel{}, id).Error
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).
		Update("password_hash", hash).Error
}

// SetRefreshToken overwrites the refresh-token slot unconditionally. A prior
// session, if any, is superseded.
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID int64, token string) error {
	tx := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", userID).
		Update("refresh_token", token)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearRefreshToken empties the slot. Clearing an already-empty slot is a no-op.
func (r *UserRepository) ClearRefreshToken(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", userID).
		Update("refresh_token", "").Error
}

func (r *UserRepository) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Select("refresh_token").First(&m, userID)
	if tx.Error != nil {
		return "", tx.Error
	}
	return m.RefreshToken, nil
}

// RotateRefreshToken swaps the slot from expected to next in a single
// conditional UPDATE. Returns false when the stored value no longer matches
// expected, which means the presented token was already rotated or revoked.
// The conditional write keeps concurrent refreshes for the same user from
// both passing the replay check.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID int64, expected, next string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ? AND refresh_token = ?", userID, expected).
		Update("refresh_token", next)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func isDuplicateErr(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite (dev/tests) has no typed error to inspect here.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
