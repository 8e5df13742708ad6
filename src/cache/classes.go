package cache

import (
	"assetmanager/src/config"
	"assetmanager/src/models"

	"github.com/shopspring/decimal"
)

const (
	StockPrefix        = "stock:"
	MarketIndexPrefix  = "market_index:"
	ExchangeRatePrefix = "exchange_rate:"
	RefreshTokenPrefix = "refresh_token:"
)

// Caches groups the cache classes of the system over one Store.
type Caches struct {
	Stocks        *Namespace[models.Observation]
	MarketIndices *Namespace[models.MarketIndex]
	// ExchangeRates is keyed by "<SOURCE>_<TARGET>", e.g. "USD_KRW".
	ExchangeRates *Namespace[decimal.Decimal]
	// RefreshTokens is keyed by user id.
	RefreshTokens *Namespace[string]
}

func New(store Store, cfg *config.Config) *Caches {
	return &Caches{
		Stocks:        NewNamespace[models.Observation](store, StockPrefix, cfg.Ingestion.StockCacheTTL),
		MarketIndices: NewNamespace[models.MarketIndex](store, MarketIndexPrefix, cfg.Ingestion.MarketIndexCacheTTL),
		ExchangeRates: NewNamespace[decimal.Decimal](store, ExchangeRatePrefix, cfg.Ingestion.ExchangeRateCacheTTL),
		RefreshTokens: NewNamespace[string](store, RefreshTokenPrefix, cfg.Auth.RefreshTokenExpiry),
	}
}

// ExchangeRateKey builds the ExchangeRates key for a currency pair.
func ExchangeRateKey(source, target string) string {
	return source + "_" + target
}
