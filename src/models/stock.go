package models

import (
	"time"
	_ "time/tzdata"
)

// Stock is a tradable instrument. Code is unique.
type Stock struct {
	ID          int64     `db:"id"`
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	MarketIndex string    `db:"market_index"`
	Country     string    `db:"country"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Currency returns the currency the instrument is quoted in.
func (s Stock) Currency() string {
	return CountryCurrency(s.Country)
}

var countryCurrencies = map[string]string{
	"KOREA":       "KRW",
	"USA":         "USD",
	"JAPAN":       "JPY",
	"CHINA":       "CNY",
	"HONG KONG":   "HKD",
	"UK":          "GBP",
	"GERMANY":     "EUR",
	"FRANCE":      "EUR",
	"EURO ZONE":   "EUR",
	"TAIWAN":      "TWD",
	"INDIA":       "INR",
	"SWITZERLAND": "CHF",
}

// CountryCurrency maps a stock country to its trading currency, defaulting to USD.
func CountryCurrency(country string) string {
	if currency, ok := countryCurrencies[country]; ok {
		return currency
	}
	return "USD"
}

var countryMarkets = map[string]string{
	"KOREA":       "Asia/Seoul",
	"USA":         "America/New_York",
	"JAPAN":       "Asia/Tokyo",
	"CHINA":       "Asia/Shanghai",
	"HONG KONG":   "Asia/Hong_Kong",
	"UK":          "Europe/London",
	"GERMANY":     "Europe/Berlin",
	"FRANCE":      "Europe/Paris",
	"EURO ZONE":   "Europe/Berlin",
	"TAIWAN":      "Asia/Taipei",
	"INDIA":       "Asia/Kolkata",
	"SWITZERLAND": "Europe/Zurich",
}

// MarketLocation is the time zone a stock country's exchange trades in.
// Unknown countries trade in New York, matching the USD default.
func MarketLocation(country string) *time.Location {
	name, ok := countryMarkets[country]
	if !ok {
		name = countryMarkets["USA"]
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TradingDate is the calendar day of t on the exchange in loc, as a UTC
// midnight so it keys snapshots the same way NewSnapshotKey does.
func TradingDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
