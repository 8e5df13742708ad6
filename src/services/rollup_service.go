package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"assetmanager/src/models"
	"assetmanager/src/repositories"
	"assetmanager/src/utils"
)

type RollupServiceI interface {
	RollupDay(ctx context.Context, day time.Time) (int, error)
	Backfill(ctx context.Context, startDate, endDate time.Time) (int, error)
}

// RollupService builds daily snapshots from minutely stock quotes, then
// the weekly and monthly snapshots containing that day from the daily ones.
// A quote belongs to the trading date of its exchange, so a New York
// session is filed under its own date whatever zone the worker runs in.
type RollupService struct {
	stockRepo    repositories.StockRepository
	minutelyRepo repositories.MinutelyRepository
	snapshotRepo repositories.PriceSnapshotRepository
}

func NewRollupService(stockRepo repositories.StockRepository, minutelyRepo repositories.MinutelyRepository, snapshotRepo repositories.PriceSnapshotRepository) *RollupService {
	return &RollupService{
		stockRepo:    stockRepo,
		minutelyRepo: minutelyRepo,
		snapshotRepo: snapshotRepo,
	}
}

// RollupDay returns the number of daily snapshots written for the
// calendar date of day.
func (s *RollupService) RollupDay(ctx context.Context, day time.Time) (int, error) {
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	markets, err := s.marketsByCode(ctx)
	if err != nil {
		return 0, err
	}

	// Exchange offsets run from UTC-12 to UTC+14.
	quotes, err := s.minutelyRepo.QueryRange(ctx, date.Add(-14*time.Hour), date.Add(36*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("failed to read minutely quotes: %w", err)
	}
	var session []models.MinutelyQuote
	for _, q := range quotes {
		if models.TradingDate(q.Datetime, markets.location(q.Code)).Equal(date) {
			session = append(session, q)
		}
	}
	daily := AggregateQuotes(session, date)
	if len(daily) == 0 {
		return 0, nil
	}
	if err := s.snapshotRepo.BulkUpsert(ctx, models.Daily, daily); err != nil {
		return 0, fmt.Errorf("failed to store daily snapshots: %w", err)
	}

	for _, g := range []models.Granularity{models.Weekly, models.Monthly} {
		bucket := g.Bucket(date)
		rows, err := s.snapshotRepo.QueryRangeAll(ctx, models.Daily, bucket, nextBucket(g, bucket).AddDate(0, 0, -1))
		if err != nil {
			return 0, fmt.Errorf("failed to read daily snapshots: %w", err)
		}
		if err := s.snapshotRepo.BulkUpsert(ctx, g, AggregateSnapshots(rows, bucket)); err != nil {
			return 0, fmt.Errorf("failed to store %s snapshots: %w", g, err)
		}
	}
	return len(daily), nil
}

// Backfill rolls up every day in [startDate, endDate] and returns the
// number of days processed.
func (s *RollupService) Backfill(ctx context.Context, startDate, endDate time.Time) (int, error) {
	days, err := tradingDays(startDate, endDate)
	if err != nil {
		return 0, err
	}
	for _, day := range days {
		if _, err := s.RollupDay(ctx, day); err != nil {
			return 0, fmt.Errorf("rollup of %s: %w", day.Format(utils.ShortDashDateLayout), err)
		}
	}
	return len(days), nil
}

// tradingDays lists the calendar dates from startDate to endDate inclusive.
func tradingDays(startDate, endDate time.Time) ([]time.Time, error) {
	first := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, time.UTC)
	if last.Before(first) {
		return nil, fmt.Errorf("endDate must not be before startDate")
	}
	var days []time.Time
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days, nil
}

type marketIndex struct {
	countries map[string]string
	locations map[string]*time.Location
}

func (s *RollupService) marketsByCode(ctx context.Context) (*marketIndex, error) {
	stocks, err := s.stockRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stocks: %w", err)
	}
	m := &marketIndex{
		countries: make(map[string]string, len(stocks)),
		locations: map[string]*time.Location{},
	}
	for _, stock := range stocks {
		m.countries[stock.Code] = stock.Country
	}
	return m, nil
}

// location resolves a code's exchange zone. Codes missing from the stock
// table fall back on their shape: six-digit codes are KRX listings.
func (m *marketIndex) location(code string) *time.Location {
	country, ok := m.countries[code]
	if !ok {
		country = "USA"
		if isKRXCode(code) {
			country = "KOREA"
		}
	}
	if loc, ok := m.locations[country]; ok {
		return loc
	}
	loc := models.MarketLocation(country)
	m.locations[country] = loc
	return loc
}

func isKRXCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func nextBucket(g models.Granularity, bucket time.Time) time.Time {
	switch g {
	case models.Weekly:
		return bucket.AddDate(0, 0, 7)
	case models.Monthly:
		return bucket.AddDate(0, 1, 0)
	default:
		return bucket.AddDate(0, 0, 1)
	}
}

// AggregateQuotes builds one OHLC snapshot per code dated date. Quotes
// must be ordered by code then time.
func AggregateQuotes(quotes []models.MinutelyQuote, date time.Time) []models.PriceSnapshot {
	byCode := map[string]*models.PriceSnapshot{}
	var codes []string
	for _, q := range quotes {
		snap, ok := byCode[q.Code]
		if !ok {
			snap = &models.PriceSnapshot{
				Code:         q.Code,
				Date:         date,
				OpeningPrice: q.CurrentPrice,
				HighestPrice: q.CurrentPrice,
				LowestPrice:  q.CurrentPrice,
			}
			byCode[q.Code] = snap
			codes = append(codes, q.Code)
		}
		if q.CurrentPrice.GreaterThan(snap.HighestPrice) {
			snap.HighestPrice = q.CurrentPrice
		}
		if q.CurrentPrice.LessThan(snap.LowestPrice) {
			snap.LowestPrice = q.CurrentPrice
		}
		snap.ClosePrice = q.CurrentPrice
		snap.AdjClosePrice = q.CurrentPrice
	}
	return collect(byCode, codes)
}

// AggregateSnapshots merges daily snapshots into one snapshot per code
// dated bucket, summing volumes.
func AggregateSnapshots(rows []models.PriceSnapshot, bucket time.Time) []models.PriceSnapshot {
	sorted := make([]models.PriceSnapshot, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Code != sorted[j].Code {
			return sorted[i].Code < sorted[j].Code
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	byCode := map[string]*models.PriceSnapshot{}
	var codes []string
	for _, row := range sorted {
		snap, ok := byCode[row.Code]
		if !ok {
			snap = &models.PriceSnapshot{
				Code:         row.Code,
				Date:         bucket,
				OpeningPrice: row.OpeningPrice,
				HighestPrice: row.HighestPrice,
				LowestPrice:  row.LowestPrice,
			}
			byCode[row.Code] = snap
			codes = append(codes, row.Code)
		}
		if row.HighestPrice.GreaterThan(snap.HighestPrice) {
			snap.HighestPrice = row.HighestPrice
		}
		if row.LowestPrice.LessThan(snap.LowestPrice) {
			snap.LowestPrice = row.LowestPrice
		}
		snap.ClosePrice = row.ClosePrice
		snap.AdjClosePrice = row.AdjClosePrice
		snap.TradeVolume += row.TradeVolume
	}
	return collect(byCode, codes)
}

func collect(byCode map[string]*models.PriceSnapshot, codes []string) []models.PriceSnapshot {
	out := make([]models.PriceSnapshot, 0, len(codes))
	for _, code := range codes {
		out = append(out, *byCode[code])
	}
	return out
}
