package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"assetmanager/src/clients/naver"
	"assetmanager/src/models"
	"assetmanager/src/repositories"

	"golang.org/x/sync/errgroup"
)

const (
	WorldIndexSourceName    = "world_index"
	WorldStockSourceName    = "world_stock"
	DomesticStockSourceName = "domestic_stock"
)

// ErrNoQuote reports a symbol the upstream answered without.
var ErrNoQuote = errors.New("no quote returned")

// UniverseFunc lists the symbols a source polls.
type UniverseFunc func(ctx context.Context) ([]string, error)

// StaticUniverse always returns codes.
func StaticUniverse(codes []string) UniverseFunc {
	return func(context.Context) ([]string, error) {
		return codes, nil
	}
}

// StockUniverse returns codes plus every stored stock of country, sorted
// and without duplicates.
func StockUniverse(repo repositories.StockRepository, country string, codes []string) UniverseFunc {
	return func(ctx context.Context) ([]string, error) {
		stocks, err := repo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(codes)+len(stocks))
		for _, code := range codes {
			seen[code] = struct{}{}
		}
		for _, s := range stocks {
			if s.Country == country {
				seen[s.Code] = struct{}{}
			}
		}
		universe := make([]string, 0, len(seen))
		for code := range seen {
			universe = append(universe, code)
		}
		sort.Strings(universe)
		return universe, nil
	}
}

// WorldIndexSource scrapes the world index page in one request.
type WorldIndexSource struct {
	client naver.NaverServiceClientI
}

func NewWorldIndexSource(client naver.NaverServiceClientI) *WorldIndexSource {
	return &WorldIndexSource{client: client}
}

func (s *WorldIndexSource) Name() string {
	return WorldIndexSourceName
}

func (s *WorldIndexSource) Universe(context.Context) ([]string, error) {
	return nil, nil
}

func (s *WorldIndexSource) Fetch(ctx context.Context, _ []string) (*Batch, error) {
	indices, err := s.client.GetWorldIndices(ctx)
	if err != nil {
		return nil, err
	}
	batch := &Batch{Indices: indices}
	for _, index := range indices {
		batch.Observations = append(batch.Observations, models.Observation{
			Symbol: index.IndexName,
			Value:  index.CurrentValue,
		})
	}
	return batch, nil
}

// WorldStockSource requests every symbol separately, at most parallelism
// at a time. Symbols are exchange qualified codes such as "AAPL.O" and
// are stored under the plain ticker.
type WorldStockSource struct {
	client      naver.NaverServiceClientI
	universe    UniverseFunc
	parallelism int
}

func NewWorldStockSource(client naver.NaverServiceClientI, universe UniverseFunc, parallelism int) *WorldStockSource {
	return &WorldStockSource{client: client, universe: universe, parallelism: parallelism}
}

func (s *WorldStockSource) Name() string {
	return WorldStockSourceName
}

func (s *WorldStockSource) Universe(ctx context.Context) ([]string, error) {
	return s.universe(ctx)
}

func (s *WorldStockSource) Fetch(ctx context.Context, symbols []string) (*Batch, error) {
	var (
		mu    sync.Mutex
		batch = &Batch{}
	)
	g, gctx := errgroup.WithContext(ctx)
	if s.parallelism > 0 {
		g.SetLimit(s.parallelism)
	}
	for _, symbol := range symbols {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					batch.Errors = append(batch.Errors, &FetchError{Symbol: symbol, Err: fmt.Errorf("panic: %v", r)})
					mu.Unlock()
				}
			}()
			obs, err := s.client.GetWorldStock(gctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				batch.Errors = append(batch.Errors, &FetchError{Symbol: symbol, Err: err})
				return nil
			}
			obs.Symbol = Ticker(symbol)
			batch.Observations = append(batch.Observations, obs)
			return nil
		})
	}
	_ = g.Wait()
	return batch, nil
}

// Ticker strips the exchange suffix of a qualified code.
func Ticker(code string) string {
	ticker, _, _ := strings.Cut(code, ".")
	return ticker
}

// DomesticStockSource polls a whole chunk in one request.
type DomesticStockSource struct {
	client   naver.NaverServiceClientI
	universe UniverseFunc
}

func NewDomesticStockSource(client naver.NaverServiceClientI, universe UniverseFunc) *DomesticStockSource {
	return &DomesticStockSource{client: client, universe: universe}
}

func (s *DomesticStockSource) Name() string {
	return DomesticStockSourceName
}

func (s *DomesticStockSource) Universe(ctx context.Context) ([]string, error) {
	return s.universe(ctx)
}

func (s *DomesticStockSource) Fetch(ctx context.Context, symbols []string) (*Batch, error) {
	observations, err := s.client.GetDomesticStocks(ctx, symbols)
	if err != nil {
		return nil, err
	}
	batch := &Batch{}
	returned := make(map[string]struct{}, len(observations))
	for _, obs := range observations {
		returned[obs.Symbol] = struct{}{}
		batch.Observations = append(batch.Observations, obs)
	}
	for _, symbol := range symbols {
		if _, ok := returned[symbol]; !ok {
			batch.Errors = append(batch.Errors, &FetchError{Symbol: symbol, Err: ErrNoQuote})
		}
	}
	return batch, nil
}
