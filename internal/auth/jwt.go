// Package auth issues and verifies access tokens and checks passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/workflow"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "complaintdesk"

var (
	ErrInvalidToken = apperr.Unauthorized("auth.invalid_token", "invalid token")
	ErrExpiredToken = apperr.Unauthorized("auth.invalid_token", "token has expired")
)

type Claims struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the workflow identity carried by the token.
func (c *Claims) Actor() workflow.Actor {
	return workflow.Actor{ID: c.UserID, Role: c.Role}
}

// Tokens signs and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(cfg config.JWT) *Tokens {
	return &Tokens{secret: []byte(cfg.Secret), ttl: cfg.TTL, now: time.Now}
}

// Issue generates an access token for u and reports when it expires.
func (t *Tokens) Issue(u *models.User) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   fmt.Sprint(u.ID),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, apperr.Wrap(err, "failed to sign token")
	}
	return signed, expires, nil
}

// Verify checks the signature, expiry and issuer of tokenString.
func (t *Tokens) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
