package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const claimsContextKey contextKey = "claims"

const (
	ClaimSubject = "sub"
	ClaimRole    = "role"

	RoleExecutor = "executor"
)

var ErrNoClaims = errors.New("token claims not found in context")

func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return nil, ErrNoClaims
	}
	return claims, nil
}

// SubjectFromContext returns the id of the authenticated executor.
func SubjectFromContext(ctx context.Context) (string, error) {
	return stringClaim(ctx, ClaimSubject)
}

func RoleFromContext(ctx context.Context) (string, error) {
	return stringClaim(ctx, ClaimRole)
}

func stringClaim(ctx context.Context, name string) (string, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	raw, ok := claims[name]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", name)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", name, raw)
	}
	return value, nil
}
