package valuation

import (
	"github.com/shopspring/decimal"
)

// ExchangeRates maps "<SOURCE>_<TARGET>" to the units of TARGET bought by
// one unit of SOURCE.
type ExchangeRates map[string]decimal.Decimal

func pairKey(source, target string) string {
	return source + "_" + target
}

// Rate converts source into target. The identity pair is always 1 and a
// missing pair falls back to the inverse of its reverse.
func (r ExchangeRates) Rate(source, target string) (decimal.Decimal, bool) {
	if source == target {
		return decimal.NewFromInt(1), true
	}
	if rate, ok := r[pairKey(source, target)]; ok && rate.IsPositive() {
		return rate, true
	}
	if rate, ok := r[pairKey(target, source)]; ok && rate.IsPositive() {
		return decimal.NewFromInt(1).Div(rate), true
	}
	return decimal.Zero, false
}
