package ingestion

import (
	"context"
	"time"

	"assetmanager/src/metrics"
	"assetmanager/src/models"

	"github.com/sirupsen/logrus"
)

const StreamSourceName = "stream"

// Stream is a feed that pushes observations, such as polygon.Listener.
type Stream interface {
	Events() <-chan models.Observation
	Dropped() uint64
}

// StreamConsumer drains a Stream on its own goroutine, keeping the latest
// observation per symbol and flushing them through the sinks every
// flushInterval.
type StreamConsumer struct {
	stream        Stream
	sinks         []Sink
	flushInterval time.Duration
	metrics       *metrics.Ingestion
	logger        *logrus.Logger

	pending     map[string]models.Observation
	lastDropped uint64
}

func NewStreamConsumer(stream Stream, sinks []Sink, flushInterval time.Duration, m *metrics.Ingestion, logger *logrus.Logger) *StreamConsumer {
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &StreamConsumer{
		stream:        stream,
		sinks:         sinks,
		flushInterval: flushInterval,
		metrics:       m,
		logger:        logger,
		pending:       map[string]models.Observation{},
	}
}

// Run returns when ctx is done or the stream closes its channel, after a
// last flush.
func (s *StreamConsumer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	events := s.stream.Events()
	for {
		select {
		case obs, ok := <-events:
			if !ok {
				s.finalFlush()
				return nil
			}
			s.pending[obs.Symbol] = obs
		case <-ticker.C:
			s.flush(ctx)
		case <-ctx.Done():
			s.finalFlush()
			return nil
		}
	}
}

func (s *StreamConsumer) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(ctx)
}

func (s *StreamConsumer) flush(ctx context.Context) {
	s.countDropped()
	if len(s.pending) == 0 {
		return
	}
	batch := &Batch{Observations: make([]models.Observation, 0, len(s.pending))}
	for _, obs := range s.pending {
		batch.Observations = append(batch.Observations, obs)
	}
	s.pending = map[string]models.Observation{}

	bucket := time.Now().Truncate(time.Minute)
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, bucket, batch); err != nil {
			// The next flush carries newer prices, so the batch is not retried.
			s.logger.WithError(err).WithField("source", StreamSourceName).Error("failed to flush streamed observations")
			s.observe(0, "failure")
			return
		}
	}
	s.observe(len(batch.Observations), "success")
}

func (s *StreamConsumer) countDropped() {
	dropped := s.stream.Dropped()
	if dropped > s.lastDropped {
		if s.metrics != nil {
			s.metrics.StreamDropped.Add(float64(dropped - s.lastDropped))
		}
		s.logger.WithFields(logrus.Fields{"source": StreamSourceName, "dropped": dropped - s.lastDropped}).Warn("stream buffer overflowed")
		s.lastDropped = dropped
	}
}

func (s *StreamConsumer) observe(stored int, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.CyclesTotal.WithLabelValues(StreamSourceName, outcome).Inc()
	if stored > 0 {
		s.metrics.ObservationsTotal.WithLabelValues(StreamSourceName).Add(float64(stored))
		s.metrics.LastSuccess.WithLabelValues(StreamSourceName).SetToCurrentTime()
	}
}
