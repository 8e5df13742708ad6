package ingestion

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"assetmanager/src/config"
	"assetmanager/src/metrics"
	"assetmanager/src/schemas"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Interval    time.Duration
	ChunkSize   int
	Parallelism int
	Policy      FailurePolicy
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Interval:    cfg.Ingestion.Interval,
		ChunkSize:   cfg.Ingestion.ChunkSize,
		Parallelism: cfg.Ingestion.Parallelism,
		Policy:      ContinueOnFailure,
	}
}

// Collector polls one Source and writes what it gets through every Sink
// in order, then sleeps for the interval. Sinks are expected to be the
// cache first and the durable store second.
type Collector struct {
	source  Source
	sinks   []Sink
	opts    Options
	metrics *metrics.Ingestion
	logger  *logrus.Logger
	now     func() time.Time

	mu     sync.RWMutex
	cycle  uint64
	report *schemas.CycleReport
}

func NewCollector(source Source, sinks []Sink, opts Options, m *metrics.Ingestion, logger *logrus.Logger) *Collector {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &Collector{
		source:  source,
		sinks:   sinks,
		opts:    opts,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Collector) Name() string {
	return c.source.Name()
}

// LastReport returns the report of the latest finished cycle, or nil.
func (c *Collector) LastReport() *schemas.CycleReport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil {
		return nil
	}
	report := *c.report
	return &report
}

// Run alternates between polling and sleeping until ctx is done. A failed
// cycle is handled according to the failure policy.
func (c *Collector) Run(ctx context.Context) error {
	log := c.logger.WithFields(logrus.Fields{"source": c.Name(), "policy": c.opts.Policy.String()})
	log.Info("ingestion started")
	for {
		_, err := c.RunCycle(ctx)
		if ctx.Err() != nil {
			log.Info("ingestion stopped")
			return nil
		}
		if err != nil {
			if c.opts.Policy == StopOnFailure {
				return err
			}
			log.WithError(err).Error("ingestion cycle failed, retrying after interval")
		}

		select {
		case <-ctx.Done():
			log.Info("ingestion stopped")
			return nil
		case <-time.After(c.opts.Interval):
		}
	}
}

// RunCycle polls the whole universe once. Symbols that fail are reported
// and skipped; the error is only set when the cycle as a whole failed.
func (c *Collector) RunCycle(ctx context.Context) (report *schemas.CycleReport, err error) {
	c.mu.Lock()
	c.cycle++
	cycle := c.cycle
	c.mu.Unlock()

	started := c.now()
	report = &schemas.CycleReport{Source: c.Name(), Cycle: cycle, StartedAt: started}
	log := c.logger.WithFields(logrus.Fields{"source": c.Name(), "cycle": cycle})

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ingestion cycle panicked: %v", r)
		}
		report.Duration = c.now().Sub(started)
		if err != nil {
			report.Error = err.Error()
		}
		c.record(report, err)
	}()

	universe, err := c.source.Universe(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list symbols: %w", err)
	}
	report.Symbols = len(universe)

	batch := c.fetch(ctx, universe)
	for _, fetchErr := range batch.Errors {
		log.WithField("symbol", fetchErr.Symbol).WithError(fetchErr.Err).Warn("failed to fetch symbol")
		report.Failed = append(report.Failed, fetchErr.Symbol)
	}
	sort.Strings(report.Failed)

	if len(batch.Observations) == 0 && len(batch.Indices) == 0 {
		log.Debug("nothing to store")
		return report, nil
	}

	bucket := started.Truncate(time.Minute)
	for _, sink := range c.sinks {
		if err := sink.Write(ctx, bucket, batch); err != nil {
			return report, fmt.Errorf("%s: %w", sink.Name(), err)
		}
	}
	report.Stored = len(batch.Observations)
	log.WithFields(logrus.Fields{"stored": report.Stored, "failed": len(report.Failed)}).Debug("ingestion cycle finished")
	return report, nil
}

// fetch polls every chunk with bounded parallelism. A chunk that fails as
// a whole turns into one FetchError per symbol of that chunk.
func (c *Collector) fetch(ctx context.Context, universe []string) *Batch {
	chunks := Chunk(universe, c.opts.ChunkSize)
	if len(universe) == 0 {
		chunks = [][]string{nil}
	}

	results := make([]*Batch, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Parallelism)
	for i, chunk := range chunks {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = chunkFailure(c.Name(), chunk, fmt.Errorf("panic: %v", r))
				}
			}()
			batch, fetchErr := c.source.Fetch(gctx, chunk)
			if fetchErr != nil {
				results[i] = chunkFailure(c.Name(), chunk, fetchErr)
				return nil
			}
			results[i] = batch
			return nil
		})
	}
	_ = g.Wait()

	merged := &Batch{}
	for _, batch := range results {
		merged.merge(batch)
	}
	return merged
}

func chunkFailure(source string, chunk []string, err error) *Batch {
	if len(chunk) == 0 {
		return &Batch{Errors: []*FetchError{{Symbol: source, Err: err}}}
	}
	batch := &Batch{Errors: make([]*FetchError, 0, len(chunk))}
	for _, symbol := range chunk {
		batch.Errors = append(batch.Errors, &FetchError{Symbol: symbol, Err: err})
	}
	return batch
}

func (c *Collector) record(report *schemas.CycleReport, err error) {
	c.mu.Lock()
	c.report = report
	c.mu.Unlock()

	if c.metrics == nil {
		return
	}
	source := c.Name()
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.metrics.CyclesTotal.WithLabelValues(source, outcome).Inc()
	c.metrics.CycleDuration.WithLabelValues(source).Observe(report.Duration.Seconds())
	c.metrics.FetchErrorsTotal.WithLabelValues(source).Add(float64(len(report.Failed)))
	if report.Stored > 0 {
		c.metrics.ObservationsTotal.WithLabelValues(source).Add(float64(report.Stored))
		c.metrics.LastSuccess.WithLabelValues(source).Set(float64(report.StartedAt.Unix()))
	}
}
