package auth

import (
	"context"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePasswords reports a mismatch between a bcrypt hash and a plaintext password.
func ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// UserFinder looks accounts up by e-mail.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

var errInvalidCredentials = apperr.Unauthorized("auth.invalid_credentials", "invalid e-mail or password")

// Login checks the credentials and returns the user with a fresh token.
// Unknown e-mails and wrong passwords produce the same error.
func Login(ctx context.Context, users UserFinder, tokens *Tokens, email, password string) (*models.User, string, error) {
	u, err := users.GetUserByEmail(ctx, email)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil, "", errInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := ComparePasswords(u.PasswordHash, password); err != nil {
		return nil, "", errInvalidCredentials
	}
	token, _, err := tokens.Issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
