package controllers

import (
	"assetmanager/src/services"
)

type Controller struct {
	AssetsController AssetsControllerI
	AuthController   AuthControllerI
}

func NewController(assetService services.AssetServiceI, authService services.AuthServiceI) *Controller {
	return &Controller{
		AssetsController: NewAssetsController(assetService),
		AuthController:   NewAuthController(authService),
	}
}
