package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assetmanager/src/api"
	"assetmanager/src/api/controllers"
	"assetmanager/src/api/handlers"
	"assetmanager/src/config"
	"assetmanager/src/models"
	"assetmanager/src/repositories"
	"assetmanager/src/schemas"
	"assetmanager/src/services"
	"assetmanager/src/valuation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "valid-access-token"

type fakeAssets struct {
	portfolios map[int64]*valuation.Portfolio
	err        error
	created    []*models.Holding
}

func (f *fakeAssets) GetStocks(context.Context) ([]models.Stock, error) {
	return []models.Stock{{Code: "005930", Name: "Samsung Electronics"}, {Code: "AAPL", Name: "Apple"}}, nil
}

func (f *fakeAssets) GetPortfolio(_ context.Context, userID int64, _ bool) (*valuation.Portfolio, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.portfolios[userID]; ok {
		return p, nil
	}
	return valuation.Empty("KRW"), nil
}

func (f *fakeAssets) CreateHoldings(_ context.Context, _ int64, holdings []*models.Holding) error {
	for _, h := range holdings {
		if h.Stock.Code == "NOPE" {
			return fmt.Errorf("%w: NOPE", services.ErrStockNotFound)
		}
	}
	f.created = append(f.created, holdings...)
	return nil
}

func (f *fakeAssets) UpdateHoldings(context.Context, int64, []*models.Holding) error {
	return nil
}

func (f *fakeAssets) DeleteHolding(_ context.Context, _, holdingID int64) error {
	if holdingID != 10 {
		return repositories.ErrNotFound
	}
	return nil
}

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, _ models.ProviderType, token string) (*schemas.TokenResponse, error) {
	if token != "provider-token" {
		return nil, services.ErrUnauthorized
	}
	return &schemas.TokenResponse{AccessToken: validToken, RefreshToken: "r", TokenType: "Bearer", ExpiresIn: 3600}, nil
}

func (fakeAuth) Refresh(context.Context, string) (*schemas.TokenResponse, error) {
	return nil, fmt.Errorf("%w: refresh token revoked", services.ErrUnauthorized)
}

func (fakeAuth) ValidateAccessToken(token string) (int64, error) {
	if token != validToken {
		return 0, services.ErrUnauthorized
	}
	return 7, nil
}

func newTestServer(t *testing.T, assets *fakeAssets) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Service.AllowedOrigins = []string{"http://localhost:3000"}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	controller := controllers.NewController(assets, fakeAuth{})
	server := httptest.NewServer(api.NewServer(handlers.NewHandler(controller, 1, logger), cfg))
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, method, url, token, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func TestAlive(t *testing.T) {
	server := newTestServer(t, &fakeAssets{})
	resp, err := http.Get(server.URL + "/alive")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Im alive!", string(body))
}

func TestBankAccountsAndStocks(t *testing.T) {
	server := newTestServer(t, &fakeAssets{})

	resp, body := do(t, http.MethodGet, server.URL+"/api/v1/bank-accounts", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["investment_bank_list"], len(models.InvestmentBanks))
	assert.Contains(t, body["account_list"], "ISA")

	resp, body = do(t, http.MethodGet, server.URL+"/api/v1/stocks", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["stock_list"], 2)
}

func TestDummyAssetStockUsesDemoUser(t *testing.T) {
	portfolio := valuation.Empty("KRW")
	portfolio.TotalAssetAmount = decimal.NewFromInt(1000)
	portfolio.Assets = []valuation.StockAssetValue{{
		Holding: models.Holding{
			ID:           3,
			Stock:        models.Stock{Code: "005930", Name: "Samsung Electronics"},
			PurchaseDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			Quantity:     decimal.NewFromInt(10),
		},
		Currency:     "KRW",
		CurrentValue: decimal.NewFromInt(1000),
		ProfitRate:   decimal.NewFromInt(25),
	}}
	server := newTestServer(t, &fakeAssets{portfolios: map[int64]*valuation.Portfolio{1: portfolio}})

	resp, body := do(t, http.MethodGet, server.URL+"/api/v1/dummy/assetstock", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1000", body["total_asset_amount"])
	items := body["stock_assets"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "2024-03-04", item["buy_date"])
	assert.Equal(t, "25", item["profit_rate"])
}

func TestAssetStockRequiresToken(t *testing.T) {
	server := newTestServer(t, &fakeAssets{})

	resp, _ := do(t, http.MethodGet, server.URL+"/api/v1/assetstock", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, server.URL+"/api/v1/assetstock", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, server.URL+"/api/v1/assetstock?base_currency=false", validToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, server.URL+"/api/v1/assetstock?base_currency=maybe", validToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssetStockReportsMissingCodes(t *testing.T) {
	server := newTestServer(t, &fakeAssets{err: &valuation.MissingDataError{Codes: []string{"AAPL"}}})

	resp, body := do(t, http.MethodGet, server.URL+"/api/v1/assetstock", validToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []interface{}{"AAPL"}, body["not_found_stock_codes"])
	assert.NotContains(t, body, "not_found_exchange_rates")
}

func TestCreateAssetStock(t *testing.T) {
	assets := &fakeAssets{}
	server := newTestServer(t, assets)
	url := server.URL + "/api/v1/assetstock"

	valid := `[{"stock_code":"AAPL","buy_date":"2024-05-06","quantity":"2","purchase_price":"190.5",` +
		`"purchase_currency_type":"USD","investment_bank":"TOSS_SECURITIES","account_type":"REGULAR"}]`
	resp, body := do(t, http.MethodPost, url, validToken, valid)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["detail"])
	require.Len(t, assets.created, 1)
	assert.True(t, assets.created[0].PurchasePrice.Decimal.Equal(decimal.RequireFromString("190.5")))
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), assets.created[0].PurchaseDate)

	withID := strings.Replace(valid, `{"stock_code"`, `{"id":4,"stock_code"`, 1)
	resp, _ = do(t, http.MethodPost, url, validToken, withID)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	unknownBank := strings.Replace(valid, "TOSS_SECURITIES", "PIGGY_BANK", 1)
	resp, _ = do(t, http.MethodPost, url, validToken, unknownBank)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	unknownStock := strings.Replace(valid, `"AAPL"`, `"NOPE"`, 1)
	resp, _ = do(t, http.MethodPost, url, validToken, unknownStock)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, url, validToken, `{"not":"a list"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateAssetStockRequiresIDs(t *testing.T) {
	server := newTestServer(t, &fakeAssets{})
	body := `[{"stock_code":"AAPL","buy_date":"2024-05-06","quantity":"2",` +
		`"investment_bank":"TOSS_SECURITIES","account_type":"REGULAR"}]`

	resp, _ := do(t, http.MethodPut, server.URL+"/api/v1/assetstock", validToken, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	withID := strings.Replace(body, `{"stock_code"`, `{"id":10,"stock_code"`, 1)
	resp, _ = do(t, http.MethodPut, server.URL+"/api/v1/assetstock", validToken, withID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteAssetStock(t *testing.T) {
	server := newTestServer(t, &fakeAssets{})

	resp, _ := do(t, http.MethodDelete, server.URL+"/api/v1/assetstock/10", validToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, server.URL+"/api/v1/assetstock/11", validToken, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, server.URL+"/api/v1/assetstock/abc", validToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthRoutes(t *testing.T) {
	server := newTestServer(t, &fakeAssets{})

	resp, body := do(t, http.MethodPost, server.URL+"/api/auth/v1/kakao", "", `{"access_token":"provider-token"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, validToken, body["access_token"])

	resp, _ = do(t, http.MethodPost, server.URL+"/api/auth/v1/kakao", "", `{"access_token":"forged"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, server.URL+"/api/auth/v1/github", "", `{"access_token":"provider-token"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodPost, server.URL+"/api/auth/v1/refresh", "", `{"refresh_token":"old"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body["detail"], "revoked")
}
