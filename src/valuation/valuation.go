package valuation

import (
	"assetmanager/src/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Inputs gathers everything a valuation reads. CurrentPrices and
// CostBasis are quoted in the stock's own currency.
type Inputs struct {
	Holdings      []models.Holding
	CostBasis     map[models.SnapshotKey]models.PriceSnapshot
	CurrentPrices map[string]decimal.Decimal
	Dividends     map[string]decimal.Decimal
	Rates         ExchangeRates
	// ReportingCurrency is the currency of portfolio totals.
	ReportingCurrency string
}

// StockAssetValue is the valuation of one holding in Currency.
type StockAssetValue struct {
	Holding        models.Holding
	Currency       string
	PurchasePrice  decimal.Decimal
	CurrentPrice   decimal.Decimal
	InvestedAmount decimal.Decimal
	CurrentValue   decimal.Decimal
	ProfitAmount   decimal.Decimal
	ProfitRate     decimal.Decimal
	Dividend       decimal.Decimal
}

type Portfolio struct {
	Assets              []StockAssetValue
	Currency            string
	TotalAssetAmount    decimal.Decimal
	TotalInvestAmount   decimal.Decimal
	TotalProfitAmount   decimal.Decimal
	TotalProfitRate     decimal.Decimal
	TotalDividendAmount decimal.Decimal
}

// ProfitRate is profit / invested as a percentage rounded to two places,
// and zero when nothing was invested.
func ProfitRate(profit, invested decimal.Decimal) decimal.Decimal {
	if invested.IsZero() {
		return decimal.Zero
	}
	return profit.Div(invested).Mul(hundred).Round(2)
}

func costBasisKey(h models.Holding) models.SnapshotKey {
	return models.NewSnapshotKey(h.Stock.Code, h.PurchaseDate)
}

// CheckNotFoundStock returns, sorted and without duplicates, the codes of
// holdings lacking a current price or a cost-basis snapshot on their
// purchase date.
func CheckNotFoundStock(holdings []models.Holding, costBasis map[models.SnapshotKey]models.PriceSnapshot, currentPrices map[string]decimal.Decimal) []string {
	missing := map[string]struct{}{}
	for _, h := range holdings {
		if _, ok := costBasis[costBasisKey(h)]; !ok {
			missing[h.Stock.Code] = struct{}{}
		}
		if _, ok := currentPrices[h.Stock.Code]; !ok {
			missing[h.Stock.Code] = struct{}{}
		}
	}
	return sortedKeys(missing)
}

// CheckMissingRates returns the currency pairs a valuation would need but
// rates does not provide. Line items are converted into the reporting
// currency when baseCurrency is set and into the stock's currency otherwise.
func CheckMissingRates(holdings []models.Holding, rates ExchangeRates, reporting string, baseCurrency bool) []string {
	missing := map[string]struct{}{}
	need := func(source, target string) {
		if _, ok := rates.Rate(source, target); !ok {
			missing[pairKey(source, target)] = struct{}{}
		}
	}
	for _, h := range holdings {
		stockCurrency := h.Stock.Currency()
		need(stockCurrency, reporting)
		if h.PurchasePrice.Valid {
			need(purchaseCurrency(h), reporting)
			if !baseCurrency {
				need(purchaseCurrency(h), stockCurrency)
			}
		}
	}
	return sortedKeys(missing)
}

// Precheck refuses inputs with any missing price, cost basis or rate.
func Precheck(in Inputs, baseCurrency bool) error {
	codes := CheckNotFoundStock(in.Holdings, in.CostBasis, in.CurrentPrices)
	rates := CheckMissingRates(in.Holdings, in.Rates, in.ReportingCurrency, baseCurrency)
	if len(codes) > 0 || len(rates) > 0 {
		return &MissingDataError{Codes: codes, Rates: rates}
	}
	return nil
}

func purchaseCurrency(h models.Holding) string {
	if h.PurchaseCurrency == "" {
		return h.Stock.Currency()
	}
	return h.PurchaseCurrency
}

// purchasePrice is the recorded purchase price in its purchase currency,
// or the cost-basis close in the stock's currency when none was recorded.
func purchasePrice(h models.Holding, costBasis map[models.SnapshotKey]models.PriceSnapshot) (decimal.Decimal, string) {
	if h.PurchasePrice.Valid {
		return h.PurchasePrice.Decimal, purchaseCurrency(h)
	}
	return costBasis[costBasisKey(h)].ClosePrice, h.Stock.Currency()
}

func rate(rates ExchangeRates, source, target string) (decimal.Decimal, error) {
	r, ok := rates.Rate(source, target)
	if !ok {
		return decimal.Zero, &MissingDataError{Rates: []string{pairKey(source, target)}}
	}
	return r, nil
}

// valueHolding values h in currency. Purchase amounts are converted at the
// current rate, not the rate on the purchase date.
func valueHolding(h models.Holding, in Inputs, currency string) (StockAssetValue, error) {
	stockCurrency := h.Stock.Currency()
	price, ok := in.CurrentPrices[h.Stock.Code]
	if !ok {
		return StockAssetValue{}, &MissingDataError{Codes: []string{h.Stock.Code}}
	}
	if _, ok := in.CostBasis[costBasisKey(h)]; !ok {
		return StockAssetValue{}, &MissingDataError{Codes: []string{h.Stock.Code}}
	}
	stockRate, err := rate(in.Rates, stockCurrency, currency)
	if err != nil {
		return StockAssetValue{}, err
	}
	buyPrice, buyCurrency := purchasePrice(h, in.CostBasis)
	buyRate, err := rate(in.Rates, buyCurrency, currency)
	if err != nil {
		return StockAssetValue{}, err
	}

	v := StockAssetValue{
		Holding:       h,
		Currency:      currency,
		CurrentPrice:  price.Mul(stockRate),
		PurchasePrice: buyPrice.Mul(buyRate),
	}
	v.CurrentValue = h.Quantity.Mul(price).Mul(stockRate)
	v.InvestedAmount = h.Quantity.Mul(buyPrice).Mul(buyRate)
	v.ProfitAmount = v.CurrentValue.Sub(v.InvestedAmount)
	v.ProfitRate = ProfitRate(v.ProfitAmount, v.InvestedAmount)
	v.Dividend = h.Quantity.Mul(in.Dividends[h.Stock.Code]).Mul(stockRate)
	return v, nil
}

// GetStockAssets values every holding as its own line item, in the
// reporting currency when baseCurrency is set and in the stock's currency
// otherwise.
func GetStockAssets(in Inputs, baseCurrency bool) ([]StockAssetValue, error) {
	assets := make([]StockAssetValue, 0, len(in.Holdings))
	for _, h := range in.Holdings {
		currency := in.ReportingCurrency
		if !baseCurrency {
			currency = h.Stock.Currency()
		}
		v, err := valueHolding(h, in, currency)
		if err != nil {
			return nil, err
		}
		assets = append(assets, v)
	}
	return assets, nil
}

// GetTotalAssetAmount sums quantity * current price in the reporting currency.
func GetTotalAssetAmount(holdings []models.Holding, currentPrices map[string]decimal.Decimal, rates ExchangeRates, reporting string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, h := range holdings {
		price, ok := currentPrices[h.Stock.Code]
		if !ok {
			return decimal.Zero, &MissingDataError{Codes: []string{h.Stock.Code}}
		}
		r, err := rate(rates, h.Stock.Currency(), reporting)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(h.Quantity.Mul(price).Mul(r))
	}
	return total, nil
}

// GetTotalInvestmentAmount sums quantity * purchase price in the reporting
// currency, using the cost-basis close where no price was recorded.
func GetTotalInvestmentAmount(holdings []models.Holding, costBasis map[models.SnapshotKey]models.PriceSnapshot, rates ExchangeRates, reporting string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, h := range holdings {
		if _, ok := costBasis[costBasisKey(h)]; !ok && !h.PurchasePrice.Valid {
			return decimal.Zero, &MissingDataError{Codes: []string{h.Stock.Code}}
		}
		price, currency := purchasePrice(h, costBasis)
		r, err := rate(rates, currency, reporting)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(h.Quantity.Mul(price).Mul(r))
	}
	return total, nil
}

// GetTotalDividend sums quantity * dividend per share in the reporting
// currency. Stocks without a dividend record contribute nothing.
func GetTotalDividend(holdings []models.Holding, dividends map[string]decimal.Decimal, rates ExchangeRates, reporting string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, h := range holdings {
		dividend, ok := dividends[h.Stock.Code]
		if !ok {
			continue
		}
		r, err := rate(rates, h.Stock.Currency(), reporting)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(h.Quantity.Mul(dividend).Mul(r))
	}
	return total, nil
}

// Valuate checks the inputs and values the whole portfolio. Totals are
// always in the reporting currency. Nothing is returned alongside a
// MissingDataError.
func Valuate(in Inputs, baseCurrency bool) (*Portfolio, error) {
	if err := Precheck(in, baseCurrency); err != nil {
		return nil, err
	}
	assets, err := GetStockAssets(in, baseCurrency)
	if err != nil {
		return nil, err
	}
	totalAsset, err := GetTotalAssetAmount(in.Holdings, in.CurrentPrices, in.Rates, in.ReportingCurrency)
	if err != nil {
		return nil, err
	}
	totalInvest, err := GetTotalInvestmentAmount(in.Holdings, in.CostBasis, in.Rates, in.ReportingCurrency)
	if err != nil {
		return nil, err
	}
	totalDividend, err := GetTotalDividend(in.Holdings, in.Dividends, in.Rates, in.ReportingCurrency)
	if err != nil {
		return nil, err
	}
	profit := totalAsset.Sub(totalInvest)
	return &Portfolio{
		Assets:              assets,
		Currency:            in.ReportingCurrency,
		TotalAssetAmount:    totalAsset,
		TotalInvestAmount:   totalInvest,
		TotalProfitAmount:   profit,
		TotalProfitRate:     ProfitRate(profit, totalInvest),
		TotalDividendAmount: totalDividend,
	}, nil
}

// Empty is the valuation of a user with no holdings.
func Empty(reporting string) *Portfolio {
	return &Portfolio{
		Assets:              []StockAssetValue{},
		Currency:            reporting,
		TotalAssetAmount:    decimal.Zero,
		TotalInvestAmount:   decimal.Zero,
		TotalProfitAmount:   decimal.Zero,
		TotalProfitRate:     decimal.Zero,
		TotalDividendAmount: decimal.Zero,
	}
}
