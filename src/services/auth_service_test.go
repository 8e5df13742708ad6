package services

import (
	"context"
	"testing"
	"time"

	"assetmanager/src/cache"
	"assetmanager/src/clients/oauth"
	"assetmanager/src/config"
	"assetmanager/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenExpiry = time.Hour
	cfg.Auth.RefreshTokenExpiry = 24 * time.Hour

	users := newFakeUserRepo()
	tokens := cache.NewNamespace[string](cache.NewMemoryStore(), cache.RefreshTokenPrefix, cfg.Auth.RefreshTokenExpiry)
	provider := &fakeOAuth{identities: map[string]oauth.Identity{
		"kakao-token": {SocialID: "3141592653", Provider: models.KakaoProvider},
	}}
	return NewAuthService(cfg, users, tokens, provider), users
}

func TestLoginCreatesUserOnce(t *testing.T) {
	service, users := newAuthFixture()
	ctx := context.Background()

	first, err := service.Login(ctx, models.KakaoProvider, "kakao-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", first.TokenType)
	assert.Equal(t, 3600, first.ExpiresIn)
	assert.NotEmpty(t, first.RefreshToken)

	_, err = service.Login(ctx, models.KakaoProvider, "kakao-token")
	require.NoError(t, err)
	assert.Len(t, users.users, 1)

	userID, err := service.ValidateAccessToken(first.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
}

func TestLoginRejectsProviderToken(t *testing.T) {
	service, _ := newAuthFixture()

	_, err := service.Login(context.Background(), models.KakaoProvider, "forged")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = service.Login(context.Background(), models.GoogleProvider, "kakao-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshOnlyAcceptsLatestToken(t *testing.T) {
	service, _ := newAuthFixture()
	ctx := context.Background()

	first, err := service.Login(ctx, models.KakaoProvider, "kakao-token")
	require.NoError(t, err)
	second, err := service.Login(ctx, models.KakaoProvider, "kakao-token")
	require.NoError(t, err)

	refreshed, err := service.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken)

	_, err = service.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	service, _ := newAuthFixture()
	ctx := context.Background()

	tokens, err := service.Login(ctx, models.KakaoProvider, "kakao-token")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = service.Refresh(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestExpiredAccessToken(t *testing.T) {
	service, _ := newAuthFixture()
	tokens, err := service.Login(context.Background(), models.KakaoProvider, "kakao-token")
	require.NoError(t, err)

	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = service.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
