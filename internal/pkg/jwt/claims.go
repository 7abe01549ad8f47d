package jwt

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

var ErrMissingClaims = errors.New("authentication claims missing from context")

// ActorFromContext extracts the caller from the verified token in ctx
func ActorFromContext(ctx context.Context) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Actor{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if claims == nil {
		return user.Actor{}, ErrMissingClaims
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Actor{}, fmt.Errorf("user_id claim is missing or invalid: %w", ErrMissingClaims)
	}

	role, _ := claims["role"].(string)
	employeeID, _ := claims["employee_id"].(string)

	return user.Actor{
		UserID:     userID,
		EmployeeID: employeeID,
		Role:       user.Role(role),
	}, nil
}

// WithActor returns a context carrying a token for actor, as the Verifier
// middleware would. Used by background callers and tests.
func WithActor(ctx context.Context, ja *jwtauth.JWTAuth, actor user.Actor) (context.Context, error) {
	claims := map[string]interface{}{
		"user_id": actor.UserID,
		"role":    string(actor.Role),
		"type":    "access",
	}
	if actor.EmployeeID != "" {
		claims["employee_id"] = actor.EmployeeID
	}

	token, _, err := ja.Encode(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token: %w", err)
	}
	return jwtauth.NewContext(ctx, token, nil), nil
}
