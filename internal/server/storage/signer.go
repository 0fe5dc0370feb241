package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a download token can fail to verify,
// expiry included.
var ErrInvalidToken = errors.New("invalid download token")

// LinkSigner mints and verifies the time-limited tokens that back disk
// download URLs. S3 has presigning; the disk backend signs its own.
type LinkSigner struct {
	secret []byte
}

func NewLinkSigner(secret string) (*LinkSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	return &LinkSigner{secret: []byte(secret)}, nil
}

type linkClaims struct {
	jwt.RegisteredClaims
	Key string `json:"key"`
}

// Sign returns a token granting access to one object key until ttl passes.
func (s *LinkSigner) Sign(key string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := linkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Key: key,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the object key a token grants access to.
func (s *LinkSigner) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &linkClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*linkClaims)
	if !ok || claims.Key == "" {
		return "", ErrInvalidToken
	}
	return claims.Key, nil
}
