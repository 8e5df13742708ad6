package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"assetmanager/src/models"
	"assetmanager/src/repositories"
	"assetmanager/src/valuation"

	"github.com/Rhymond/go-money"
)

var (
	ErrStockNotFound   = errors.New("stock not found")
	ErrInvalidCurrency = errors.New("unknown currency")
)

type AssetServiceI interface {
	GetStocks(ctx context.Context) ([]models.Stock, error)
	GetPortfolio(ctx context.Context, userID int64, baseCurrency bool) (*valuation.Portfolio, error)
	CreateHoldings(ctx context.Context, userID int64, holdings []*models.Holding) error
	UpdateHoldings(ctx context.Context, userID int64, holdings []*models.Holding) error
	DeleteHolding(ctx context.Context, userID, holdingID int64) error
}

type AssetService struct {
	stockRepo    repositories.StockRepository
	holdingRepo  repositories.HoldingRepository
	snapshotRepo repositories.PriceSnapshotRepository
	dividendRepo repositories.DividendRepository

	priceService        PriceServiceI
	exchangeRateService ExchangeRateServiceI

	reportingCurrency string
}

func NewAssetService(
	stockRepo repositories.StockRepository,
	holdingRepo repositories.HoldingRepository,
	snapshotRepo repositories.PriceSnapshotRepository,
	dividendRepo repositories.DividendRepository,
	priceService PriceServiceI,
	exchangeRateService ExchangeRateServiceI,
	reportingCurrency string,
) *AssetService {
	return &AssetService{
		stockRepo:           stockRepo,
		holdingRepo:         holdingRepo,
		snapshotRepo:        snapshotRepo,
		dividendRepo:        dividendRepo,
		priceService:        priceService,
		exchangeRateService: exchangeRateService,
		reportingCurrency:   reportingCurrency,
	}
}

func (s *AssetService) GetStocks(ctx context.Context) ([]models.Stock, error) {
	return s.stockRepo.GetAll(ctx)
}

// GetPortfolio gathers everything the valuation needs for the user's
// holdings and values them. Missing prices, cost bases or rates come back
// as a *valuation.MissingDataError.
func (s *AssetService) GetPortfolio(ctx context.Context, userID int64, baseCurrency bool) (*valuation.Portfolio, error) {
	holdings, err := s.holdingRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return valuation.Empty(s.reportingCurrency), nil
	}

	codeSet := map[string]struct{}{}
	keySet := map[models.SnapshotKey]struct{}{}
	for _, h := range holdings {
		codeSet[h.Stock.Code] = struct{}{}
		keySet[models.NewSnapshotKey(h.Stock.Code, h.PurchaseDate)] = struct{}{}
	}
	codes := make([]string, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	keys := make([]models.SnapshotKey, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}

	costBasis, err := s.snapshotRepo.GetByKeys(ctx, models.Daily, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to load cost basis: %w", err)
	}
	prices, err := s.priceService.GetCurrentPrices(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load current prices: %w", err)
	}
	dividends, err := s.dividendRepo.GetByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load dividends: %w", err)
	}
	rates, err := s.exchangeRateService.GetRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}

	return valuation.Valuate(valuation.Inputs{
		Holdings:          holdings,
		CostBasis:         costBasis,
		CurrentPrices:     prices,
		Dividends:         dividends,
		Rates:             rates,
		ReportingCurrency: s.reportingCurrency,
	}, baseCurrency)
}

// resolve attaches the stored stock to every holding by its Stock.Code and
// checks the purchase currency.
func (s *AssetService) resolve(ctx context.Context, userID int64, holdings []*models.Holding) error {
	codes := make([]string, 0, len(holdings))
	for _, h := range holdings {
		codes = append(codes, h.Stock.Code)
	}
	stocks, err := s.stockRepo.GetByCodes(ctx, codes)
	if err != nil {
		return err
	}

	var unknown []string
	for _, h := range holdings {
		stock, ok := stocks[h.Stock.Code]
		if !ok {
			unknown = append(unknown, h.Stock.Code)
			continue
		}
		h.UserID = userID
		h.StockID = stock.ID
		h.Stock = stock
		if h.PurchaseCurrency == "" {
			h.PurchaseCurrency = stock.Currency()
		}
		if money.GetCurrency(h.PurchaseCurrency) == nil {
			return fmt.Errorf("%w: %s", ErrInvalidCurrency, h.PurchaseCurrency)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrStockNotFound, strings.Join(unknown, ", "))
	}
	return nil
}

func (s *AssetService) CreateHoldings(ctx context.Context, userID int64, holdings []*models.Holding) error {
	if err := s.resolve(ctx, userID, holdings); err != nil {
		return err
	}
	return s.holdingRepo.Create(ctx, holdings, nil)
}

// UpdateHoldings only touches holdings owned by userID; any other id fails
// the whole request with repositories.ErrNotFound.
func (s *AssetService) UpdateHoldings(ctx context.Context, userID int64, holdings []*models.Holding) error {
	ids := make([]int64, 0, len(holdings))
	for _, h := range holdings {
		ids = append(ids, h.ID)
	}
	owned, err := s.holdingRepo.GetByIDs(ctx, userID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			return fmt.Errorf("holding %d: %w", id, repositories.ErrNotFound)
		}
	}
	if err := s.resolve(ctx, userID, holdings); err != nil {
		return err
	}
	return s.holdingRepo.Update(ctx, holdings, nil)
}

func (s *AssetService) DeleteHolding(ctx context.Context, userID, holdingID int64) error {
	return s.holdingRepo.Delete(ctx, userID, holdingID)
}
