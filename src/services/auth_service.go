package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"assetmanager/src/cache"
	"assetmanager/src/clients/oauth"
	"assetmanager/src/config"
	"assetmanager/src/models"
	"assetmanager/src/repositories"
	"assetmanager/src/schemas"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

var ErrUnauthorized = errors.New("unauthorized")

// Claims are the claims of both token kinds; Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

type AuthServiceI interface {
	Login(ctx context.Context, provider models.ProviderType, providerToken string) (*schemas.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*schemas.TokenResponse, error)
	ValidateAccessToken(token string) (int64, error)
}

// AuthService turns a provider token into a signed-in user. Only the last
// refresh token issued to a user is accepted.
type AuthService struct {
	userRepo      repositories.UserRepository
	refreshTokens *cache.Namespace[string]
	oauthClient   oauth.OAuthClientI

	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

func NewAuthService(cfg *config.Config, userRepo repositories.UserRepository, refreshTokens *cache.Namespace[string], oauthClient oauth.OAuthClientI) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		refreshTokens: refreshTokens,
		oauthClient:   oauthClient,
		secret:        []byte(cfg.Auth.JWTSecret),
		accessExpiry:  cfg.Auth.AccessTokenExpiry,
		refreshExpiry: cfg.Auth.RefreshTokenExpiry,
		now:           time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, provider models.ProviderType, providerToken string) (*schemas.TokenResponse, error) {
	identity, err := s.oauthClient.Verify(ctx, provider, providerToken)
	if errors.Is(err, oauth.ErrInvalidToken) {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetBySocialID(ctx, identity.SocialID, identity.Provider)
	if errors.Is(err, repositories.ErrNotFound) {
		user = &models.User{SocialID: identity.SocialID, Provider: identity.Provider}
		err = s.userRepo.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	access, err := s.sign(user.ID, accessTokenType, s.accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.ID, refreshTokenType, s.refreshExpiry)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokens.Put(ctx, strconv.FormatInt(user.ID, 10), refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return s.response(access, refresh), nil
}

// Refresh issues a new access token when refreshToken is the one stored
// for its user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*schemas.TokenResponse, error) {
	userID, err := s.parse(refreshToken, refreshTokenType)
	if err != nil {
		return nil, err
	}
	stored, ok, err := s.refreshTokens.Get(ctx, strconv.FormatInt(userID, 10))
	if err != nil {
		return nil, err
	}
	if !ok || stored != refreshToken {
		return nil, fmt.Errorf("%w: refresh token revoked", ErrUnauthorized)
	}

	access, err := s.sign(userID, accessTokenType, s.accessExpiry)
	if err != nil {
		return nil, err
	}
	return s.response(access, ""), nil
}

func (s *AuthService) ValidateAccessToken(token string) (int64, error) {
	return s.parse(token, accessTokenType)
}

func (s *AuthService) response(access, refresh string) *schemas.TokenResponse {
	return &schemas.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.accessExpiry.Seconds()),
	}
}

func (s *AuthService) sign(userID int64, tokenType string, expiry time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		TokenType: tokenType,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) parse(token, tokenType string) (int64, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.TokenType != tokenType {
		return 0, fmt.Errorf("%w: expected a %s token", ErrUnauthorized, tokenType)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}
	return userID, nil
}
