package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"assetmanager/src/config"
	"assetmanager/src/models"
	"assetmanager/src/utils"
	"assetmanager/src/utils/requests"

	"golang.org/x/oauth2"
)

var (
	ErrUnknownProvider = errors.New("unknown identity provider")
	ErrInvalidToken    = errors.New("identity provider rejected the token")
)

// Identity is a user as verified by a provider.
type Identity struct {
	SocialID string
	Provider models.ProviderType
}

type OAuthClientI interface {
	Verify(ctx context.Context, provider models.ProviderType, accessToken string) (*Identity, error)
}

// OAuthClient resolves provider access tokens through each provider's
// userinfo endpoint.
type OAuthClient struct {
	userInfoURLs map[models.ProviderType]string
	timeout      time.Duration
}

func NewClient(cfg *config.Config) *OAuthClient {
	urls := make(map[models.ProviderType]string, len(cfg.Auth.Providers))
	for name, provider := range cfg.Auth.Providers {
		urls[models.ProviderType(name)] = provider.UserInfoURL
	}
	return &OAuthClient{
		userInfoURLs: urls,
		timeout:      10 * time.Second,
	}
}

func (c *OAuthClient) Verify(ctx context.Context, provider models.ProviderType, accessToken string) (*Identity, error) {
	endpoint, ok := c.userInfoURLs[provider]
	if !ok || !provider.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = c.timeout
	api := requests.NewExternalAPIService(c.timeout, 0).WithHTTPClient(httpClient)

	socialID, err := fetchSocialID(ctx, api, provider, endpoint)
	if err != nil {
		return nil, err
	}
	if socialID == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{SocialID: socialID, Provider: provider}, nil
}

func fetchSocialID(ctx context.Context, api *requests.ExternalAPIService, provider models.ProviderType, endpoint string) (string, error) {
	var err error
	switch provider {
	case models.GoogleProvider:
		var info googleUserInfo
		if err = api.GetJSON(ctx, endpoint, "", nil, &info); err == nil {
			return info.Sub, nil
		}
	case models.KakaoProvider:
		var info kakaoUserInfo
		if err = api.GetJSON(ctx, endpoint, "", nil, &info); err == nil {
			return info.ID.String(), nil
		}
	case models.NaverProvider:
		var info naverUserInfo
		if err = api.GetJSON(ctx, endpoint, "", nil, &info); err == nil {
			if info.ResultCode != "00" {
				return "", fmt.Errorf("%w: %s", ErrInvalidToken, info.Message)
			}
			return info.Response.ID, nil
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return "", classify(err)
}

// classify turns a rejected token into ErrInvalidToken and leaves
// transport failures as they are.
func classify(err error) error {
	var httpErr *utils.HTTPError
	if errors.As(err, &httpErr) && (httpErr.Code == http.StatusUnauthorized || httpErr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: %s", ErrInvalidToken, httpErr.Message)
	}
	return fmt.Errorf("failed to reach identity provider: %w", err)
}
