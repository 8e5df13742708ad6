package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is one timestamped reading of a price or index value.
type Observation struct {
	Symbol    string          `json:"symbol"`
	Value     decimal.Decimal `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
}

// MarketIndex is the cached payload of a world market index reading.
type MarketIndex struct {
	Country       string          `json:"country"`
	IndexName     string          `json:"index_name"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	ChangeValue   decimal.Decimal `json:"change_value"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	UpdateTime    string          `json:"update_time"`
}
