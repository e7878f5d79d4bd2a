package monitor

import (
	"context"
	"time"

	"github.com/comporesano/curr-monitor-bot/pkg/core"
	"github.com/comporesano/curr-monitor-bot/pkg/logger"
	"github.com/comporesano/curr-monitor-bot/pkg/watchlist"
)

const (
	DefaultInterval     = 5 * time.Second
	DefaultFetchTimeout = 10 * time.Second
)

// Scheduler runs the perpetual fetch-evaluate-dispatch loop. A failed
// cycle is logged and skipped; only context cancellation stops the loop,
// so the next scheduled cycle is the only retry there is.
type Scheduler struct {
	book         *watchlist.Book
	quotes       core.QuoteSource
	notifier     core.Notifier
	log          logger.Logger
	interval     time.Duration
	fetchTimeout time.Duration
}

// SchedulerOption is a function that configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithInterval sets the delay between two poll cycles
func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.interval = interval
	}
}

// WithFetchTimeout bounds a single quote request. A fetch hitting the
// bound surfaces as an ordinary fetch failure for that cycle.
func WithFetchTimeout(timeout time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.fetchTimeout = timeout
	}
}

// NewScheduler creates a scheduler with the provided dependencies
func NewScheduler(
	book *watchlist.Book,
	quotes core.QuoteSource,
	notifier core.Notifier,
	log logger.Logger,
	options ...SchedulerOption,
) *Scheduler {
	scheduler := &Scheduler{
		book:         book,
		quotes:       quotes,
		notifier:     notifier,
		log:          log,
		interval:     DefaultInterval,
		fetchTimeout: DefaultFetchTimeout,
	}

	for _, option := range options {
		option(scheduler)
	}

	return scheduler
}

// Run blocks, alternating sleep and evaluation until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval.String()).Info("price monitor started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("price monitor stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle performs one evaluate-and-dispatch pass. Errors end the
// cycle, never the loop.
func (s *Scheduler) runCycle(ctx context.Context) {
	wl, err := s.book.Snapshot()
	if err != nil {
		s.log.WithError(err).Error("skipping cycle: watchlist unavailable")
		return
	}

	if len(wl) == 0 {
		return
	}

	prices, err := s.fetchPrices(ctx, wl.Symbols())
	if err != nil {
		s.log.WithError(err).Error("skipping cycle: quote fetch failed")
		return
	}

	for _, event := range Evaluate(wl, prices) {
		s.notifier.OnAlert(event)
	}
}

// fetchPrices issues one spot request per symbol. Any failure aborts the
// whole snapshot: a cycle dispatches from complete data or not at all.
func (s *Scheduler) fetchPrices(ctx context.Context, symbols []string) (core.PriceSnapshot, error) {
	prices := make(core.PriceSnapshot, len(symbols))

	for _, symbol := range symbols {
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		price, err := s.quotes.SpotPrice(fetchCtx, symbol)
		cancel()
		if err != nil {
			return nil, err
		}
		prices[symbol] = price
	}

	return prices, nil
}
