package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity selects the time bucket of a PriceSnapshot table.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Table returns the table holding snapshots of this granularity.
func (g Granularity) Table() string {
	switch g {
	case Weekly:
		return "stock_weekly"
	case Monthly:
		return "stock_monthly"
	default:
		return "stock_daily"
	}
}

// Bucket truncates t to the start of the granularity's bucket: the day,
// the Monday of the week, or the first day of the month.
func (g Granularity) Bucket(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch g {
	case Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// PriceSnapshot is one OHLC observation of a stock. (Code, Date) is unique
// per granularity.
type PriceSnapshot struct {
	ID            int64           `db:"id"`
	Code          string          `db:"code"`
	Date          time.Time       `db:"date"`
	OpeningPrice  decimal.Decimal `db:"opening_price"`
	HighestPrice  decimal.Decimal `db:"highest_price"`
	LowestPrice   decimal.Decimal `db:"lowest_price"`
	ClosePrice    decimal.Decimal `db:"close_price"`
	AdjClosePrice decimal.Decimal `db:"adj_close_price"`
	TradeVolume   int64           `db:"trade_volume"`
}

// SnapshotKey identifies one snapshot: a code and the start of its bucket.
type SnapshotKey struct {
	Code string
	Date time.Time
}

// NewSnapshotKey normalizes date to a UTC calendar day so that keys built
// from holdings and from scanned rows compare equal.
func NewSnapshotKey(code string, date time.Time) SnapshotKey {
	return SnapshotKey{Code: code, Date: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)}
}
