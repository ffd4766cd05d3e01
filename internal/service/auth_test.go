package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libman/internal/auth"
	"libman/internal/domain"
	"libman/internal/model"
	"libman/internal/service"
)

func TestRegisterHashesPassword(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	svc := service.NewAuthService(db, tokens)
	user, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpw")
	require.NoError(t, err)

	assert.Equal(t, model.RoleBorrower, user.Role)
	assert.NotEqual(t, "s3cretpw", user.Password)
	assert.True(t, auth.VerifyPassword("s3cretpw", user.Password))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := service.NewAuthService(db, auth.NewTokenIssuer("test-secret", time.Hour))

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Imposter", "alice@example.com", "otherpw")
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := service.NewAuthService(db, tokens)

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpw")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "alice@example.com", "s3cretpw")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, model.RoleBorrower, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := service.NewAuthService(db, auth.NewTokenIssuer("test-secret", time.Hour))

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpw")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cretpw")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	_, _, err = svc.Login(ctx, "alice@example.com", "wrongpw")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestCreateAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewAuthService(db, auth.NewTokenIssuer("test-secret", time.Hour))

	admin, err := svc.CreateAdmin(context.Background(), "Root", "root@example.com", "adminpw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
}
