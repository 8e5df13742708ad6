package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"assetmanager/src/models"
	"assetmanager/src/repositories"
	"assetmanager/src/schemas"
	"assetmanager/src/services"
	"assetmanager/src/utils"
	"assetmanager/src/valuation"
)

type AssetsControllerI interface {
	GetBankAccounts(ctx context.Context) *schemas.BankAccountResponse
	GetStocks(ctx context.Context) (*schemas.StockListResponse, error)
	GetStockAssets(ctx context.Context, userID int64, baseCurrency bool) (*schemas.StockAssetResponse, error)
	CreateStockAssets(ctx context.Context, userID int64, requests []schemas.StockAssetRequest) error
	UpdateStockAssets(ctx context.Context, userID int64, requests []schemas.StockAssetRequest) error
	DeleteStockAsset(ctx context.Context, userID, assetID int64) error
}

type AssetsController struct {
	AssetService services.AssetServiceI
}

func NewAssetsController(assetService services.AssetServiceI) *AssetsController {
	return &AssetsController{AssetService: assetService}
}

func (c *AssetsController) GetBankAccounts(_ context.Context) *schemas.BankAccountResponse {
	return &schemas.BankAccountResponse{
		InvestmentBankList: models.InvestmentBanks,
		AccountList:        models.AccountTypes,
	}
}

func (c *AssetsController) GetStocks(ctx context.Context) (*schemas.StockListResponse, error) {
	stocks, err := c.AssetService.GetStocks(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]schemas.StockListValue, len(stocks))
	for i, stock := range stocks {
		list[i] = schemas.StockListValue{Name: stock.Name, Code: stock.Code}
	}
	return &schemas.StockListResponse{StockList: list}, nil
}

func (c *AssetsController) GetStockAssets(ctx context.Context, userID int64, baseCurrency bool) (*schemas.StockAssetResponse, error) {
	portfolio, err := c.AssetService.GetPortfolio(ctx, userID, baseCurrency)
	if err != nil {
		return nil, translateError(err)
	}

	assets := make([]schemas.StockAsset, len(portfolio.Assets))
	for i, v := range portfolio.Assets {
		h := v.Holding
		assets[i] = schemas.StockAsset{
			ID:                   h.ID,
			StockCode:            h.Stock.Code,
			StockName:            h.Stock.Name,
			Quantity:             h.Quantity,
			BuyDate:              schemas.NewDate(h.PurchaseDate),
			InvestmentBank:       h.InvestmentBank,
			AccountType:          h.AccountType,
			PurchaseCurrencyType: h.PurchaseCurrency,
			Currency:             v.Currency,
			PurchasePrice:        v.PurchasePrice,
			CurrentPrice:         v.CurrentPrice,
			PurchaseAmount:       v.InvestedAmount,
			CurrentAmount:        v.CurrentValue,
			ProfitAmount:         v.ProfitAmount,
			ProfitRate:           v.ProfitRate,
			Dividend:             v.Dividend,
		}
	}
	return &schemas.StockAssetResponse{
		StockAssets:         assets,
		Currency:            portfolio.Currency,
		TotalAssetAmount:    portfolio.TotalAssetAmount,
		TotalInvestAmount:   portfolio.TotalInvestAmount,
		TotalProfitAmount:   portfolio.TotalProfitAmount,
		TotalProfitRate:     portfolio.TotalProfitRate,
		TotalDividendAmount: portfolio.TotalDividendAmount,
	}, nil
}

func (c *AssetsController) CreateStockAssets(ctx context.Context, userID int64, requests []schemas.StockAssetRequest) error {
	holdings, err := toHoldings(requests, false)
	if err != nil {
		return err
	}
	return translateError(c.AssetService.CreateHoldings(ctx, userID, holdings))
}

func (c *AssetsController) UpdateStockAssets(ctx context.Context, userID int64, requests []schemas.StockAssetRequest) error {
	holdings, err := toHoldings(requests, true)
	if err != nil {
		return err
	}
	return translateError(c.AssetService.UpdateHoldings(ctx, userID, holdings))
}

func (c *AssetsController) DeleteStockAsset(ctx context.Context, userID, assetID int64) error {
	return translateError(c.AssetService.DeleteHolding(ctx, userID, assetID))
}

// toHoldings validates a request body. Updates must carry an id on every
// item and creates must not.
func toHoldings(requests []schemas.StockAssetRequest, update bool) ([]*models.Holding, error) {
	if len(requests) == 0 {
		return nil, utils.BadRequest("at least one stock asset is required")
	}
	holdings := make([]*models.Holding, 0, len(requests))
	for i, req := range requests {
		switch {
		case update && req.ID == nil:
			return nil, utils.BadRequest(fmt.Sprintf("item %d: id is required", i))
		case !update && req.ID != nil:
			return nil, utils.BadRequest(fmt.Sprintf("item %d: id must not be set", i))
		case req.StockCode == "":
			return nil, utils.BadRequest(fmt.Sprintf("item %d: stock_code is required", i))
		case !req.Quantity.IsPositive():
			return nil, utils.BadRequest(fmt.Sprintf("item %d: quantity must be positive", i))
		case req.BuyDate.IsZero():
			return nil, utils.BadRequest(fmt.Sprintf("item %d: buy_date is required", i))
		case req.PurchasePrice.Valid && req.PurchasePrice.Decimal.IsNegative():
			return nil, utils.BadRequest(fmt.Sprintf("item %d: purchase_price must not be negative", i))
		case !req.InvestmentBank.Valid():
			return nil, utils.BadRequest(fmt.Sprintf("item %d: unknown investment_bank %q", i, req.InvestmentBank))
		case !req.AccountType.Valid():
			return nil, utils.BadRequest(fmt.Sprintf("item %d: unknown account_type %q", i, req.AccountType))
		}

		h := &models.Holding{
			Stock:            models.Stock{Code: req.StockCode},
			InvestmentBank:   req.InvestmentBank,
			AccountType:      req.AccountType,
			PurchaseDate:     req.BuyDate.ToTime(),
			PurchasePrice:    req.PurchasePrice,
			PurchaseCurrency: req.PurchaseCurrencyType,
			Quantity:         req.Quantity,
		}
		if req.ID != nil {
			h.ID = *req.ID
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// translateError maps service errors to HTTP errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var missing *valuation.MissingDataError
	switch {
	case errors.As(err, &missing):
		return utils.NewHTTPErrorWithDetail(http.StatusBadRequest, err.Error(), schemas.NotFoundStockResponse{
			NotFoundStockCodes:    nonNil(missing.Codes),
			NotFoundExchangeRates: missing.Rates,
		})
	case errors.Is(err, services.ErrStockNotFound), errors.Is(err, repositories.ErrNotFound):
		return utils.NotFound(err.Error())
	case errors.Is(err, services.ErrInvalidCurrency):
		return utils.BadRequest(err.Error())
	default:
		return err
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
