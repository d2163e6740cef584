package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AccessTokenTTL bounds how long a stolen access token stays usable.
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL matches the refresh cookie max age.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for any token that fails signature, expiry, or
// claim validation. Callers do not learn which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by both access and refresh tokens.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the two bearer token classes. Access and
// refresh tokens use separate HMAC secrets so one class can never stand in
// for the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     AccessTokenTTL,
		refreshTTL:    RefreshTokenTTL,
		now:           time.Now,
	}
}

// SignAccess mints a short-lived access token for the identity.
func (i *TokenIssuer) SignAccess(id Identity) (string, error) {
	return i.sign(id, i.accessSecret, i.accessTTL)
}

// SignRefresh mints a long-lived refresh token for the identity.
func (i *TokenIssuer) SignRefresh(id Identity) (string, error) {
	return i.sign(id, i.refreshSecret, i.refreshTTL)
}

func (i *TokenIssuer) sign(id Identity, secret []byte, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes every minted token distinct even within the same
			// second, so the stored-refresh-token exact match is meaningful.
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccess validates an access token and returns its claims.
func (i *TokenIssuer) VerifyAccess(tokenStr string) (*Claims, error) {
	return i.verify(tokenStr, i.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (i *TokenIssuer) VerifyRefresh(tokenStr string) (*Claims, error) {
	return i.verify(tokenStr, i.refreshSecret)
}

func (i *TokenIssuer) verify(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Identity extracts the identity triple from verified claims.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Username: c.Username, Role: c.Role}
}
