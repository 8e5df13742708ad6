package controllers

import (
	"context"
	"errors"

	"assetmanager/src/clients/oauth"
	"assetmanager/src/models"
	"assetmanager/src/schemas"
	"assetmanager/src/services"
	"assetmanager/src/utils"
)

type AuthControllerI interface {
	Login(ctx context.Context, provider string, req *schemas.TokenRequest) (*schemas.TokenResponse, error)
	Refresh(ctx context.Context, req *schemas.RefreshRequest) (*schemas.TokenResponse, error)
	Authenticate(token string) (int64, error)
}

type AuthController struct {
	AuthService services.AuthServiceI
}

func NewAuthController(authService services.AuthServiceI) *AuthController {
	return &AuthController{AuthService: authService}
}

func (c *AuthController) Login(ctx context.Context, provider string, req *schemas.TokenRequest) (*schemas.TokenResponse, error) {
	providerType := models.ProviderType(provider)
	if !providerType.Valid() {
		return nil, utils.NotFound("unknown provider: " + provider)
	}
	if req.AccessToken == "" {
		return nil, utils.BadRequest("access_token is required")
	}
	tokens, err := c.AuthService.Login(ctx, providerType, req.AccessToken)
	return tokens, translateAuthError(err)
}

func (c *AuthController) Refresh(ctx context.Context, req *schemas.RefreshRequest) (*schemas.TokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, utils.BadRequest("refresh_token is required")
	}
	tokens, err := c.AuthService.Refresh(ctx, req.RefreshToken)
	return tokens, translateAuthError(err)
}

func (c *AuthController) Authenticate(token string) (int64, error) {
	if token == "" {
		return 0, utils.Unauthorized("missing bearer token")
	}
	userID, err := c.AuthService.ValidateAccessToken(token)
	return userID, translateAuthError(err)
}

func translateAuthError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrUnauthorized):
		return utils.Unauthorized(err.Error())
	case errors.Is(err, oauth.ErrUnknownProvider):
		return utils.NotFound(err.Error())
	default:
		return err
	}
}
