package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PlaceholderToken is the fixed credential handed out in placeholder mode.
// It proves nothing and is not verified anywhere.
const PlaceholderToken = "dummy-jwt-token"

// PlaceholderIssuer always returns PlaceholderToken.
type PlaceholderIssuer struct{}

func (PlaceholderIssuer) Issue(int64, string) (string, error) {
	return PlaceholderToken, nil
}

// JWTIssuer signs HS256 tokens carrying the user id and name.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt issuer: empty secret")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *JWTIssuer) Issue(userID int64, name string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"name":    name,
		"exp":     i.now().Add(i.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}
