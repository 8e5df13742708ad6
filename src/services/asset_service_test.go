package services

import (
	"context"
	"testing"
	"time"

	"assetmanager/src/models"
	"assetmanager/src/repositories"
	"assetmanager/src/valuation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	samsung = models.Stock{ID: 1, Code: "005930", Name: "Samsung Electronics", Country: "KOREA"}
	apple   = models.Stock{ID: 2, Code: "AAPL", Name: "Apple", Country: "USA"}
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type assetFixture struct {
	stocks    *mockStockRepo
	holdings  *mockHoldingRepo
	snapshots *fakeSnapshotRepo
	prices    fixedPrices
	service   *AssetService
}

func newAssetFixture() *assetFixture {
	f := &assetFixture{
		stocks:    &mockStockRepo{},
		holdings:  &mockHoldingRepo{},
		snapshots: newFakeSnapshotRepo(),
		prices:    fixedPrices{"005930": d("100"), "AAPL": d("200")},
	}
	dividends := &fakeDividendRepo{dividends: map[string]decimal.Decimal{"AAPL": d("1")}}
	rates := fixedRates{"USD_KRW": d("1300")}
	f.service = NewAssetService(f.stocks, f.holdings, f.snapshots, dividends, f.prices, rates, "KRW")
	return f
}

func portfolioHoldings() []models.Holding {
	return []models.Holding{
		{
			ID:               10,
			UserID:           7,
			Stock:            samsung,
			PurchaseDate:     time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			PurchasePrice:    decimal.NewNullDecimal(d("80")),
			PurchaseCurrency: "KRW",
			Quantity:         d("10"),
		},
		{
			ID:           11,
			UserID:       7,
			Stock:        apple,
			PurchaseDate: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
			Quantity:     d("2"),
		},
	}
}

func TestGetPortfolio(t *testing.T) {
	f := newAssetFixture()
	ctx := context.Background()
	require.NoError(t, f.snapshots.BulkUpsert(ctx, models.Daily, []models.PriceSnapshot{
		{Code: "005930", Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), ClosePrice: d("79")},
		{Code: "AAPL", Date: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), ClosePrice: d("150")},
	}))
	f.holdings.On("GetByUserID", mock.Anything, int64(7)).Return(portfolioHoldings(), nil)

	portfolio, err := f.service.GetPortfolio(ctx, 7, true)
	require.NoError(t, err)

	require.Len(t, portfolio.Assets, 2)
	assert.True(t, portfolio.Assets[0].CurrentValue.Equal(d("1000")))
	assert.True(t, portfolio.Assets[0].InvestedAmount.Equal(d("800")))
	assert.True(t, portfolio.Assets[1].CurrentValue.Equal(d("520000")))
	assert.True(t, portfolio.Assets[1].InvestedAmount.Equal(d("390000")))

	assert.Equal(t, "KRW", portfolio.Currency)
	assert.True(t, portfolio.TotalAssetAmount.Equal(d("521000")))
	assert.True(t, portfolio.TotalInvestAmount.Equal(d("390800")))
	assert.True(t, portfolio.TotalProfitAmount.Equal(d("130200")))
	assert.True(t, portfolio.TotalDividendAmount.Equal(d("2600")))
}

func TestGetPortfolioRefusesMissingPrice(t *testing.T) {
	f := newAssetFixture()
	delete(f.prices, "AAPL")
	ctx := context.Background()
	require.NoError(t, f.snapshots.BulkUpsert(ctx, models.Daily, []models.PriceSnapshot{
		{Code: "005930", Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), ClosePrice: d("79")},
		{Code: "AAPL", Date: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), ClosePrice: d("150")},
	}))
	f.holdings.On("GetByUserID", mock.Anything, int64(7)).Return(portfolioHoldings(), nil)

	portfolio, err := f.service.GetPortfolio(ctx, 7, true)
	assert.Nil(t, portfolio)
	var missing *valuation.MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"AAPL"}, missing.Codes)
}

func TestGetPortfolioWithoutHoldings(t *testing.T) {
	f := newAssetFixture()
	f.holdings.On("GetByUserID", mock.Anything, int64(7)).Return([]models.Holding{}, nil)

	portfolio, err := f.service.GetPortfolio(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Empty(t, portfolio.Assets)
	assert.True(t, portfolio.TotalAssetAmount.IsZero())
}

func TestCreateHoldingsResolvesStocks(t *testing.T) {
	f := newAssetFixture()
	f.stocks.On("GetByCodes", mock.Anything, []string{"AAPL"}).Return(map[string]models.Stock{"AAPL": apple}, nil)
	f.holdings.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	holding := &models.Holding{Stock: models.Stock{Code: "AAPL"}, Quantity: d("3"), PurchaseDate: time.Now()}
	require.NoError(t, f.service.CreateHoldings(context.Background(), 7, []*models.Holding{holding}))

	assert.Equal(t, int64(7), holding.UserID)
	assert.Equal(t, apple.ID, holding.StockID)
	assert.Equal(t, "USD", holding.PurchaseCurrency)
	f.holdings.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateHoldingsRejectsUnknownStock(t *testing.T) {
	f := newAssetFixture()
	f.stocks.On("GetByCodes", mock.Anything, []string{"AAPL", "NOPE"}).Return(map[string]models.Stock{"AAPL": apple}, nil)

	err := f.service.CreateHoldings(context.Background(), 7, []*models.Holding{
		{Stock: models.Stock{Code: "AAPL"}},
		{Stock: models.Stock{Code: "NOPE"}},
	})
	assert.ErrorIs(t, err, ErrStockNotFound)
	assert.ErrorContains(t, err, "NOPE")
	f.holdings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateHoldingsRejectsUnknownCurrency(t *testing.T) {
	f := newAssetFixture()
	f.stocks.On("GetByCodes", mock.Anything, []string{"AAPL"}).Return(map[string]models.Stock{"AAPL": apple}, nil)

	err := f.service.CreateHoldings(context.Background(), 7, []*models.Holding{
		{Stock: models.Stock{Code: "AAPL"}, PurchaseCurrency: "QQQ"},
	})
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestUpdateHoldingsRequiresOwnership(t *testing.T) {
	f := newAssetFixture()
	f.holdings.On("GetByIDs", mock.Anything, int64(7), []int64{10, 99}).
		Return(map[int64]models.Holding{10: portfolioHoldings()[0]}, nil)

	err := f.service.UpdateHoldings(context.Background(), 7, []*models.Holding{
		{ID: 10, Stock: models.Stock{Code: "005930"}},
		{ID: 99, Stock: models.Stock{Code: "005930"}},
	})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	f.holdings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteHolding(t *testing.T) {
	f := newAssetFixture()
	f.holdings.On("Delete", mock.Anything, int64(7), int64(10)).Return(nil)
	f.holdings.On("Delete", mock.Anything, int64(7), int64(11)).Return(repositories.ErrNotFound)

	assert.NoError(t, f.service.DeleteHolding(context.Background(), 7, 10))
	assert.ErrorIs(t, f.service.DeleteHolding(context.Background(), 7, 11), repositories.ErrNotFound)
}
