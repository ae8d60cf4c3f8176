package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid covers malformed tokens, bad signatures and expiry alike.
// Callers must not be able to tell the reasons apart.
var ErrTokenInvalid = errors.New("invalid token")

type Claims struct {
	UserID int64 `json:"user_id"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies access and refresh tokens. Access and refresh
// tokens use distinct secrets. Stateless and safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (c *Codec) IssueAccessToken(userID int64) (string, error) {
	return sign(userID, c.accessSecret, c.accessTTL)
}

func (c *Codec) IssueRefreshToken(userID int64) (string, error) {
	return sign(userID, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) VerifyAccessToken(tokenStr string) (*Claims, error) {
	return verify(tokenStr, c.accessSecret)
}

func (c *Codec) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	return verify(tokenStr, c.refreshSecret)
}

func sign(userID int64, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	// The jti keeps every issued token distinct even within the same
	// second; rotation and session supersession rely on token inequality.
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func verify(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		if t.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
