package ingestion

import (
	"context"
	"fmt"
	"time"

	"assetmanager/src/cache"
	"assetmanager/src/models"
	"assetmanager/src/repositories"
)

// Sink receives the successful part of a cycle. bucket is the cycle start
// truncated to the minute.
type Sink interface {
	Name() string
	Write(ctx context.Context, bucket time.Time, batch *Batch) error
}

// ObservationCacheSink writes the latest observation of every symbol.
type ObservationCacheSink struct {
	ns *cache.Namespace[models.Observation]
}

func NewObservationCacheSink(ns *cache.Namespace[models.Observation]) *ObservationCacheSink {
	return &ObservationCacheSink{ns: ns}
}

func (s *ObservationCacheSink) Name() string {
	return "cache"
}

func (s *ObservationCacheSink) Write(ctx context.Context, bucket time.Time, batch *Batch) error {
	values := make(map[string]models.Observation, len(batch.Observations))
	for _, obs := range batch.Observations {
		if obs.Timestamp.IsZero() {
			obs.Timestamp = bucket
		}
		values[obs.Symbol] = obs
	}
	if err := s.ns.PutMany(ctx, values); err != nil {
		return fmt.Errorf("failed to cache observations: %w", err)
	}
	return nil
}

// IndexCacheSink writes market index payloads keyed by index name.
type IndexCacheSink struct {
	ns *cache.Namespace[models.MarketIndex]
}

func NewIndexCacheSink(ns *cache.Namespace[models.MarketIndex]) *IndexCacheSink {
	return &IndexCacheSink{ns: ns}
}

func (s *IndexCacheSink) Name() string {
	return "cache"
}

func (s *IndexCacheSink) Write(ctx context.Context, _ time.Time, batch *Batch) error {
	values := make(map[string]models.MarketIndex, len(batch.Indices))
	for _, index := range batch.Indices {
		values[index.IndexName] = index
	}
	if err := s.ns.PutMany(ctx, values); err != nil {
		return fmt.Errorf("failed to cache market indices: %w", err)
	}
	return nil
}

// MinutelySink upserts one row per symbol and minute bucket.
type MinutelySink struct {
	repo repositories.MinutelyRepository
}

func NewMinutelySink(repo repositories.MinutelyRepository) *MinutelySink {
	return &MinutelySink{repo: repo}
}

func (s *MinutelySink) Name() string {
	return "store"
}

func (s *MinutelySink) Write(ctx context.Context, bucket time.Time, batch *Batch) error {
	quotes := make([]models.MinutelyQuote, 0, len(batch.Observations))
	for _, obs := range batch.Observations {
		quotes = append(quotes, models.MinutelyQuote{
			Code:         obs.Symbol,
			Datetime:     bucket,
			CurrentPrice: obs.Value,
		})
	}
	if err := s.repo.BulkUpsert(ctx, quotes); err != nil {
		return fmt.Errorf("failed to store minutely quotes: %w", err)
	}
	return nil
}
