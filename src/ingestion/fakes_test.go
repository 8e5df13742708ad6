package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"assetmanager/src/models"

	"github.com/shopspring/decimal"
)

type fakeNaver struct {
	mu           sync.Mutex
	prices       map[string]string
	failing      map[string]error
	indices      []models.MarketIndex
	domesticReqs [][]string
}

func (f *fakeNaver) GetWorldIndices(context.Context) ([]models.MarketIndex, error) {
	return f.indices, nil
}

func (f *fakeNaver) GetWorldStock(_ context.Context, code string) (models.Observation, error) {
	if err, ok := f.failing[code]; ok {
		return models.Observation{}, err
	}
	return models.Observation{Symbol: code, Value: decimal.RequireFromString(f.prices[code])}, nil
}

func (f *fakeNaver) GetDomesticStocks(_ context.Context, codes []string) ([]models.Observation, error) {
	f.mu.Lock()
	f.domesticReqs = append(f.domesticReqs, codes)
	f.mu.Unlock()
	var out []models.Observation
	for _, code := range codes {
		if err, ok := f.failing[code]; ok {
			if errors.Is(err, errWholeRequest) {
				return nil, err
			}
			continue
		}
		if price, ok := f.prices[code]; ok {
			out = append(out, models.Observation{Symbol: code, Value: decimal.RequireFromString(price)})
		}
	}
	return out, nil
}

func (f *fakeNaver) GetExchangeRates(context.Context) ([]models.ExchangeRate, error) {
	return nil, nil
}

var errWholeRequest = errors.New("upstream returned 503")

type fakeMinutelyRepo struct {
	mu   sync.Mutex
	rows map[string]models.MinutelyQuote
	err  error
}

func newFakeMinutelyRepo() *fakeMinutelyRepo {
	return &fakeMinutelyRepo{rows: map[string]models.MinutelyQuote{}}
}

func (r *fakeMinutelyRepo) BulkUpsert(_ context.Context, quotes []models.MinutelyQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, q := range quotes {
		r.rows[q.Code+"@"+q.Datetime.UTC().Truncate(time.Minute).Format(time.RFC3339)] = q
	}
	return nil
}

func (r *fakeMinutelyRepo) QueryRange(context.Context, time.Time, time.Time) ([]models.MinutelyQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.MinutelyQuote, 0, len(r.rows))
	for _, q := range r.rows {
		out = append(out, q)
	}
	return out, nil
}

func (r *fakeMinutelyRepo) codes() map[string]decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, q := range r.rows {
		out[q.Code] = q.CurrentPrice
	}
	return out
}

type panicSource struct{}

func (panicSource) Name() string { return "broken" }

func (panicSource) Universe(context.Context) ([]string, error) { return []string{"X"}, nil }

func (panicSource) Fetch(context.Context, []string) (*Batch, error) {
	panic("unexpected markup")
}

type fakeStream struct {
	events  chan models.Observation
	dropped uint64
}

func (s *fakeStream) Events() <-chan models.Observation { return s.events }

func (s *fakeStream) Dropped() uint64 { return s.dropped }
