package services

import (
	"context"
	"fmt"
	"time"

	"assetmanager/src/cache"
	"assetmanager/src/clients/naver"
	"assetmanager/src/repositories"
	"assetmanager/src/utils"
	"assetmanager/src/valuation"

	"github.com/shopspring/decimal"
)

const ratesMemoTTL = time.Minute

type ExchangeRateServiceI interface {
	GetRates(ctx context.Context) (valuation.ExchangeRates, error)
	Refresh(ctx context.Context) (int, error)
}

// ExchangeRateService serves the stored rates, overlaid with fresher
// cached ones, and refreshes both from the market index page.
type ExchangeRateService struct {
	repo   repositories.ExchangeRateRepository
	rates  *cache.Namespace[decimal.Decimal]
	client naver.NaverServiceClientI
	memo   *utils.Memo[valuation.ExchangeRates]
}

func NewExchangeRateService(repo repositories.ExchangeRateRepository, rates *cache.Namespace[decimal.Decimal], client naver.NaverServiceClientI) *ExchangeRateService {
	return &ExchangeRateService{
		repo:   repo,
		rates:  rates,
		client: client,
		memo:   utils.NewMemo[valuation.ExchangeRates](ratesMemoTTL),
	}
}

func (s *ExchangeRateService) GetRates(ctx context.Context) (valuation.ExchangeRates, error) {
	memoized, gen, ok := s.memo.Load(time.Now())
	if ok {
		return memoized, nil
	}

	stored, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	rates := make(valuation.ExchangeRates, len(stored))
	keys := make([]string, 0, len(stored))
	for _, r := range stored {
		key := cache.ExchangeRateKey(r.SourceCurrency, r.TargetCurrency)
		rates[key] = r.Rate
		keys = append(keys, key)
	}

	cached, err := s.rates.GetMany(ctx, keys)
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("exchange rate cache unavailable, using stored rates")
	}
	for key, rate := range cached {
		rates[key] = rate
	}

	s.memo.Store(rates, gen, time.Now())
	return rates, nil
}

// Refresh scrapes the current rates into the store and the cache and
// returns how many were written.
func (s *ExchangeRateService) Refresh(ctx context.Context) (int, error) {
	fetched, err := s.client.GetExchangeRates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	if err := s.repo.Upsert(ctx, fetched); err != nil {
		return 0, fmt.Errorf("failed to store exchange rates: %w", err)
	}

	values := make(map[string]decimal.Decimal, len(fetched))
	for _, r := range fetched {
		values[cache.ExchangeRateKey(r.SourceCurrency, r.TargetCurrency)] = r.Rate
	}
	if err := s.rates.PutMany(ctx, values); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("failed to cache exchange rates")
	}
	s.memo.Invalidate()
	return len(fetched), nil
}
