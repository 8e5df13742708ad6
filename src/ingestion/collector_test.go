package ingestion

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"assetmanager/src/cache"
	"assetmanager/src/metrics"
	"assetmanager/src/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type pipeline struct {
	stocks  *cache.Namespace[models.Observation]
	indices *cache.Namespace[models.MarketIndex]
	store   *fakeMinutelyRepo
	metrics *metrics.Ingestion
}

func newPipeline() *pipeline {
	store := cache.NewMemoryStore()
	return &pipeline{
		stocks:  cache.NewNamespace[models.Observation](store, cache.StockPrefix, time.Minute),
		indices: cache.NewNamespace[models.MarketIndex](store, cache.MarketIndexPrefix, time.Minute),
		store:   newFakeMinutelyRepo(),
		metrics: metrics.NewIngestion(),
	}
}

func (p *pipeline) collector(source Source, opts Options) *Collector {
	sinks := []Sink{NewObservationCacheSink(p.stocks), NewMinutelySink(p.store)}
	if source.Name() == WorldIndexSourceName {
		sinks = []Sink{NewIndexCacheSink(p.indices), NewMinutelySink(p.store)}
	}
	c := NewCollector(source, sinks, opts, p.metrics, quietLogger())
	c.now = func() time.Time { return time.Date(2024, 7, 1, 9, 30, 42, 0, time.UTC) }
	return c
}

func TestSymbolFailureDoesNotBlockSiblings(t *testing.T) {
	p := newPipeline()
	client := &fakeNaver{
		prices:  map[string]string{"005930": "81000", "035420": "182500"},
		failing: map[string]error{"000660": errors.New("timeout")},
	}
	universe := StaticUniverse([]string{"005930", "000660", "035420"})
	c := p.collector(NewDomesticStockSource(client, universe), Options{ChunkSize: 10})

	report, err := c.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Symbols)
	assert.Equal(t, 2, report.Stored)
	assert.Equal(t, []string{"000660"}, report.Failed)

	cached, err := p.stocks.GetMany(context.Background(), []string{"005930", "000660", "035420"})
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	assert.True(t, cached["005930"].Value.Equal(decimal.NewFromInt(81000)))
	_, ok := cached["000660"]
	assert.False(t, ok)

	stored := p.store.codes()
	assert.Len(t, stored, 2)
	assert.True(t, stored["035420"].Equal(decimal.NewFromInt(182500)))

	for _, q := range p.store.rows {
		assert.Equal(t, time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC), q.Datetime)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.FetchErrorsTotal.WithLabelValues(DomesticStockSourceName)))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.metrics.ObservationsTotal.WithLabelValues(DomesticStockSourceName)))
}

func TestChunkFailureOnlyAffectsItsChunk(t *testing.T) {
	p := newPipeline()
	client := &fakeNaver{
		prices:  map[string]string{"A": "1", "B": "2", "C": "3", "D": "4", "E": "5"},
		failing: map[string]error{"C": errWholeRequest},
	}
	universe := StaticUniverse([]string{"A", "B", "C", "D", "E"})
	c := p.collector(NewDomesticStockSource(client, universe), Options{ChunkSize: 2, Parallelism: 2})

	report, err := c.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, client.domesticReqs, 3)
	for _, req := range client.domesticReqs {
		assert.LessOrEqual(t, len(req), 2)
	}
	assert.Equal(t, []string{"C", "D"}, report.Failed)
	assert.Equal(t, 3, report.Stored)
	assert.ElementsMatch(t, []string{"A", "B", "E"}, keys(p.store.codes()))
}

func TestWorldStockSourceStoresTickers(t *testing.T) {
	p := newPipeline()
	client := &fakeNaver{
		prices:  map[string]string{"AAPL.O": "216.75", "MSFT.O": "456.73"},
		failing: map[string]error{"NVDA.O": errors.New("invalid close price")},
	}
	universe := StaticUniverse([]string{"AAPL.O", "MSFT.O", "NVDA.O"})
	c := p.collector(NewWorldStockSource(client, universe, 2), Options{ChunkSize: 20})

	report, err := c.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA.O"}, report.Failed)

	obs, ok, err := p.stocks.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, obs.Value.Equal(decimal.RequireFromString("216.75")))
	assert.False(t, obs.Timestamp.IsZero())
}

func TestWorldStockSourceRecordsPanickingSymbol(t *testing.T) {
	client := &fakeNaver{
		// An unparsable price makes the fake panic mid-fetch.
		prices: map[string]string{"AAPL.O": "216.75", "MSFT.O": "not-a-price", "NVDA.O": "125.83"},
	}
	source := NewWorldStockSource(client, StaticUniverse(nil), 2)

	batch, err := source.Fetch(context.Background(), []string{"AAPL.O", "MSFT.O", "NVDA.O"})
	require.NoError(t, err)
	require.Len(t, batch.Errors, 1)
	assert.Equal(t, "MSFT.O", batch.Errors[0].Symbol)
	assert.Contains(t, batch.Errors[0].Err.Error(), "panic")

	var stored []string
	for _, obs := range batch.Observations {
		stored = append(stored, obs.Symbol)
	}
	assert.ElementsMatch(t, []string{"AAPL", "NVDA"}, stored)
}

func TestWorldIndexSourceCachesPayload(t *testing.T) {
	p := newPipeline()
	client := &fakeNaver{indices: []models.MarketIndex{{
		Country:       "USA",
		IndexName:     "S&P 500",
		CurrentValue:  decimal.RequireFromString("5475.09"),
		ChangeValue:   decimal.RequireFromString("-7.78"),
		ChangePercent: decimal.RequireFromString("-0.14"),
		UpdateTime:    "2024.07.01",
	}}}
	c := p.collector(NewWorldIndexSource(client), Options{})

	report, err := c.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Symbols)
	assert.Equal(t, 1, report.Stored)

	index, ok, err := p.indices.Get(context.Background(), "S&P 500")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "USA", index.Country)
	assert.True(t, p.store.codes()["S&P 500"].Equal(decimal.RequireFromString("5475.09")))
}

func TestStoreFailureFailsCycle(t *testing.T) {
	p := newPipeline()
	p.store.err = errors.New("connection refused")
	client := &fakeNaver{prices: map[string]string{"A": "1"}}
	c := p.collector(NewDomesticStockSource(client, StaticUniverse([]string{"A"})), Options{})

	report, err := c.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, report.Error, "connection refused")
	assert.Equal(t, report, c.LastReport())
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.CyclesTotal.WithLabelValues(DomesticStockSourceName, "failure")))
}

func TestPanicIsRecoveredAtCycleBoundary(t *testing.T) {
	p := newPipeline()
	c := p.collector(panicSource{}, Options{})

	report, err := c.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, report.Failed)
	assert.Equal(t, 0, report.Stored)
}

func TestRunContinuesAfterFailedCycles(t *testing.T) {
	p := newPipeline()
	p.store.err = errors.New("connection refused")
	client := &fakeNaver{prices: map[string]string{"A": "1"}}
	c := p.collector(NewDomesticStockSource(client, StaticUniverse([]string{"A"})), Options{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	assert.Eventually(t, func() bool {
		report := c.LastReport()
		return report != nil && report.Cycle >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRunStopsWhenPolicySaysSo(t *testing.T) {
	p := newPipeline()
	p.store.err = errors.New("connection refused")
	client := &fakeNaver{prices: map[string]string{"A": "1"}}
	c := p.collector(NewDomesticStockSource(client, StaticUniverse([]string{"A"})), Options{Interval: time.Millisecond, Policy: StopOnFailure})

	err := c.Run(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, uint64(1), c.LastReport().Cycle)
}

func TestChunk(t *testing.T) {
	assert.Nil(t, Chunk(nil, 3))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, Chunk([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a", "b", "c"}}, Chunk([]string{"a", "b", "c"}, 0))
}

func TestTicker(t *testing.T) {
	assert.Equal(t, "AAPL", Ticker("AAPL.O"))
	assert.Equal(t, "005930", Ticker("005930"))
}

func keys(m map[string]decimal.Decimal) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
