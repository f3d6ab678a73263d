package services

import (
	"context"
	"testing"

	"pos-storefront-backend/pkg/auth"
	"pos-storefront-backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthFixture(t *testing.T) (*AuthService, *stubAdminRepo) {
	t.Helper()
	repo := newStubAdminRepo()
	svc := NewAuthService(repo, auth.NewJWTManager("test-secret", 1, 7), cache.NewMemoryCache(), zap.NewNop())
	require.NoError(t, svc.EnsureAdmin(context.Background(), "", "Admin@Example.com", "s3cret-pass"))
	return svc, repo
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	svc, repo := newAuthFixture(t)
	require.Len(t, repo.users, 1)

	for _, u := range repo.users {
		assert.Equal(t, "admin@example.com", u.Email)
		assert.Equal(t, RoleAdmin, u.Role)
		assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	}

	require.NoError(t, svc.EnsureAdmin(context.Background(), "Other", "other@example.com", "x"))
	assert.Len(t, repo.users, 1)
}

func TestLoginAndRefresh(t *testing.T) {
	svc, repo := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, &LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.NotNil(t, repo.users[resp.User.ID].LastLoginAt)

	refreshed, err := svc.RefreshAccessToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, resp.RefreshToken, refreshed.RefreshToken)

	_, err = svc.RefreshAccessToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.User.ID.String()))
	_, err = svc.RefreshAccessToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestInactiveAdminCannotLogin(t *testing.T) {
	svc, repo := newAuthFixture(t)
	for _, u := range repo.users {
		u.IsActive = false
	}

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
