package auth

import (
	"context"
	"crypto/subtle"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = apperror.Unauthorized("invalid username or password")

// Authenticator checks the single admin account configured through
// ADMIN_USERNAME and ADMIN_PASSWORD_HASH.
type Authenticator struct {
	username     string
	passwordHash []byte
	tokens       *TokenManager
}

func NewAuthenticator(username, passwordHash string, tokens *TokenManager) *Authenticator {
	return &Authenticator{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
	}
}

// Login returns a signed admin token for valid credentials.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "auth"),
		zap.String("method", "Login"),
	)

	if username == "" || password == "" {
		return "", apperror.Invalid("username and password are required")
	}

	if len(a.passwordHash) == 0 {
		log.Error("admin password hash is not configured")
		return "", ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// compare the hash even on a username mismatch
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		log.Warn("admin login rejected", zap.String("username", username))
		return "", ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(a.username, RoleAdmin)
	if err != nil {
		log.Error("failed to sign admin token", zap.Error(err))
		return "", apperror.Infra("sign token", err)
	}

	log.Info("admin logged in")
	return token, nil
}
