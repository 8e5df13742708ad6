package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a user's recorded position in one stock. Quantity and
// PurchasePrice are inputs to valuation and never recomputed.
type Holding struct {
	ID               int64               `db:"id"`
	UserID           int64               `db:"user_id"`
	StockID          int64               `db:"stock_id"`
	InvestmentBank   InvestmentBankType  `db:"investment_bank"`
	AccountType      AccountType         `db:"account_type"`
	PurchaseDate     time.Time           `db:"purchase_date"`
	PurchasePrice    decimal.NullDecimal `db:"purchase_price"`
	PurchaseCurrency string              `db:"purchase_currency"`
	Quantity         decimal.Decimal     `db:"quantity"`
	CreatedAt        time.Time           `db:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at"`

	// Stock is loaded eagerly by the repository.
	Stock Stock `db:"-"`
}
