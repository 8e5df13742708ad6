package services

import (
	"context"

	"assetmanager/src/cache"
	"assetmanager/src/models"
	"assetmanager/src/repositories"
	"assetmanager/src/utils"

	"github.com/shopspring/decimal"
)

type PriceServiceI interface {
	GetCurrentPrices(ctx context.Context, codes []string) (map[string]decimal.Decimal, error)
}

// PriceService resolves current prices from the realtime cache and falls
// back to the latest stored daily close. Codes found in neither are left
// out of the result.
type PriceService struct {
	stocks       *cache.Namespace[models.Observation]
	snapshotRepo repositories.PriceSnapshotRepository
}

func NewPriceService(stocks *cache.Namespace[models.Observation], snapshotRepo repositories.PriceSnapshotRepository) *PriceService {
	return &PriceService{
		stocks:       stocks,
		snapshotRepo: snapshotRepo,
	}
}

func (s *PriceService) GetCurrentPrices(ctx context.Context, codes []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(codes))
	if len(codes) == 0 {
		return prices, nil
	}

	cached, err := s.stocks.GetMany(ctx, codes)
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("price cache unavailable, reading stored closes")
		cached = nil
	}
	var missing []string
	for _, code := range codes {
		if obs, ok := cached[code]; ok {
			prices[code] = obs.Value
			continue
		}
		missing = append(missing, code)
	}
	if len(missing) == 0 {
		return prices, nil
	}

	latest, err := s.snapshotRepo.QueryLatest(ctx, models.Daily, missing)
	if err != nil {
		return nil, err
	}
	for code, snapshot := range latest {
		prices[code] = snapshot.ClosePrice
	}
	return prices, nil
}
