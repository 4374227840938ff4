package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AuthService checks the credentials of the match executor, the only client
// allowed to report results.
type AuthService interface {
	Authenticate(ctx context.Context, input TokenInput) error
}

type TokenInput struct {
	ExecutorID string `json:"executor_id"`
	Secret     string `json:"secret"`
}

type authService struct {
	executorID string
	secretHash []byte
}

// NewAuthService expects a bcrypt hash of the executor secret.
func NewAuthService(executorID, secretHash string) AuthService {
	return &authService{executorID: executorID, secretHash: []byte(secretHash)}
}

func (s *authService) Authenticate(ctx context.Context, input TokenInput) error {
	if subtle.ConstantTimeCompare([]byte(input.ExecutorID), []byte(s.executorID)) != 1 {
		return ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword(s.secretHash, []byte(input.Secret))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to compare secret hash: %w", err)
	}
	return nil
}
