package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dividend is the most recent known per-share dividend of a stock.
type Dividend struct {
	ID        int64           `db:"id"`
	StockCode string          `db:"stock_code"`
	Dividend  decimal.Decimal `db:"dividend"`
	UpdatedAt time.Time       `db:"updated_at"`
}
