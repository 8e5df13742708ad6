package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinutelyQuote is a stock price or market index value truncated to the
// minute. (Code, Datetime) is unique per table.
type MinutelyQuote struct {
	ID           int64           `db:"id"`
	Code         string          `db:"code"`
	Datetime     time.Time       `db:"datetime"`
	CurrentPrice decimal.Decimal `db:"current_price"`
}
