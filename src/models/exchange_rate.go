package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate converts one unit of SourceCurrency into TargetCurrency.
type ExchangeRate struct {
	ID             int64           `db:"id"`
	SourceCurrency string          `db:"source_currency"`
	TargetCurrency string          `db:"target_currency"`
	Rate           decimal.Decimal `db:"rate"`
	UpdatedAt      time.Time       `db:"updated_at"`
}
