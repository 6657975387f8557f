package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopclip/backend/internal/domain"
)

// DefaultTTL is how long a session token stays valid
const DefaultTTL = 30 * 24 * time.Hour

type claims struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	AccountNumber int    `json:"accountNumber"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 session tokens
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates an issuer; a non-positive ttl uses DefaultTTL
func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for user
func (j *JWTIssuer) Issue(user *domain.User) (string, error) {
	now := j.now()
	c := claims{
		UserID:        user.ID,
		Email:         user.Email,
		AccountNumber: user.AccountNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns its claims
func (j *JWTIssuer) Parse(raw string) (*domain.TokenClaims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if c.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", domain.ErrTokenInvalid)
	}

	out := &domain.TokenClaims{
		UserID:        c.UserID,
		Email:         c.Email,
		AccountNumber: c.AccountNumber,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
