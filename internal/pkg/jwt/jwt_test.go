package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestGenerateAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	employeeID := "0190a1b2-0000-7000-8000-000000000001"

	tokenString, expiresAt, err := svc.GenerateAccessToken("user-1", &employeeID, user.RoleManager)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, employeeID, claims["employee_id"])
	assert.Equal(t, "manager", claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestStreamToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	tokenString, expiresIn, err := svc.GenerateStreamToken("user-1", "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	employeeID, err := svc.ValidateStreamToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", employeeID)
}

func TestValidateStreamTokenRejectsAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	employeeID := "emp-1"

	access, _, err := svc.GenerateAccessToken("user-1", &employeeID, user.RoleEmployee)
	require.NoError(t, err)

	_, err = svc.ValidateStreamToken(access)
	assert.Error(t, err)
}

func TestValidateStreamTokenRejectsForeignSignature(t *testing.T) {
	other := NewJWTService("another-secret", time.Hour)
	tokenString, _, err := other.GenerateStreamToken("user-1", "emp-1")
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).ValidateStreamToken(tokenString)
	assert.Error(t, err)
}

func TestActorFromContext(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	ctx, err := WithActor(context.Background(), svc.JWTAuth(), user.Actor{
		UserID: "user-9", EmployeeID: "emp-9", Role: user.RoleOwner,
	})
	require.NoError(t, err)

	actor, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.Actor{UserID: "user-9", EmployeeID: "emp-9", Role: user.RoleOwner}, actor)
}

func TestActorFromContextWithoutToken(t *testing.T) {
	_, err := ActorFromContext(context.Background())
	assert.Error(t, err)
}
