package ingestion

import (
	"context"

	"assetmanager/src/models"
)

// Source is one external market data feed polled by a Collector.
// Implementations keep no state between calls.
type Source interface {
	Name() string
	// Universe lists the symbols to poll. An empty universe means the
	// source decides what it returns, in a single Fetch call.
	Universe(ctx context.Context) ([]string, error)
	// Fetch polls one chunk. A returned error fails the whole chunk;
	// failures of single symbols go into Batch.Errors instead.
	Fetch(ctx context.Context, symbols []string) (*Batch, error)
}

// Batch is what a cycle, or a part of it, produced.
type Batch struct {
	Observations []models.Observation
	// Indices carries the full payload of market index sources.
	Indices []models.MarketIndex
	Errors  []*FetchError
}

func (b *Batch) merge(other *Batch) {
	if other == nil {
		return
	}
	b.Observations = append(b.Observations, other.Observations...)
	b.Indices = append(b.Indices, other.Indices...)
	b.Errors = append(b.Errors, other.Errors...)
}

// Chunk splits symbols into consecutive slices of at most size elements.
// A non-positive size keeps all symbols in one chunk.
func Chunk(symbols []string, size int) [][]string {
	if len(symbols) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(symbols)
	}
	chunks := make([][]string, 0, (len(symbols)+size-1)/size)
	for start := 0; start < len(symbols); start += size {
		end := min(start+size, len(symbols))
		chunks = append(chunks, symbols[start:end])
	}
	return chunks
}
