package polygon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"assetmanager/src/config"
	"assetmanager/src/models"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrAuthFailed reports a rejected API key. It is not retried.
var ErrAuthFailed = errors.New("polygon authentication failed")

// Listener receives trades from the streaming feed and hands them to a
// buffered channel without ever blocking the receive loop. Observations
// that do not fit in the buffer are dropped and counted.
type Listener struct {
	cfg     config.PolygonConfig
	dialer  *websocket.Dialer
	events  chan models.Observation
	dropped atomic.Uint64
	logger  *logrus.Logger
}

func NewListener(cfg *config.Config, logger *logrus.Logger) *Listener {
	size := cfg.ExternalClients.Polygon.BufferSize
	if size <= 0 {
		size = 1024
	}
	return &Listener{
		cfg:    cfg.ExternalClients.Polygon,
		dialer: websocket.DefaultDialer,
		events: make(chan models.Observation, size),
		logger: logger,
	}
}

// Events is closed when Run returns.
func (l *Listener) Events() <-chan models.Observation {
	return l.events
}

func (l *Listener) Dropped() uint64 {
	return l.dropped.Load()
}

// Symbols returns the tickers of the configured subscriptions.
func (l *Listener) Symbols() []string {
	symbols := make([]string, 0, len(l.cfg.Subscriptions))
	for _, s := range l.cfg.Subscriptions {
		if i := strings.Index(s, "."); i >= 0 {
			s = s[i+1:]
		}
		symbols = append(symbols, s)
	}
	return symbols
}

// Run keeps a connection open until ctx is done, reconnecting after
// retryInterval whenever the connection drops.
func (l *Listener) Run(ctx context.Context, retryInterval time.Duration) error {
	defer close(l.events)
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrAuthFailed) {
			return err
		}
		l.logger.WithError(err).WithField("source", "polygon").Warn("stream disconnected, reconnecting")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retryInterval):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.cfg.WSURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", l.cfg.WSURL, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	if err := conn.WriteJSON(action{Action: "auth", Params: l.cfg.APIKey}); err != nil {
		return err
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var events []Event
		if err := json.Unmarshal(data, &events); err != nil {
			l.logger.WithError(err).WithField("source", "polygon").Debug("skipping malformed message")
			continue
		}
		for _, ev := range events {
			switch ev.Ev {
			case "status":
				switch ev.Status {
				case "auth_success":
					params := strings.Join(l.cfg.Subscriptions, ",")
					if err := conn.WriteJSON(action{Action: "subscribe", Params: params}); err != nil {
						return err
					}
					l.logger.WithFields(logrus.Fields{"source": "polygon", "symbols": l.Symbols()}).Info("subscribed to stream")
				case "auth_failed":
					return fmt.Errorf("%w: %s", ErrAuthFailed, ev.Message)
				}
			case "T":
				l.dispatch(ev.Sym, ev.Price, ev.Timestamp)
			case "AM", "A":
				l.dispatch(ev.Sym, ev.Close, ev.End)
			}
		}
	}
}

func (l *Listener) dispatch(symbol string, price float64, millis int64) {
	if symbol == "" || price <= 0 {
		return
	}
	obs := models.Observation{
		Symbol:    symbol,
		Value:     decimal.NewFromFloat(price),
		Timestamp: time.UnixMilli(millis),
	}
	select {
	case l.events <- obs:
	default:
		l.dropped.Add(1)
	}
}
