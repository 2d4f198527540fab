// Package scheduler drives the periodic refresh: it owns the current
// symbol list and interval, triggers aggregation runs on a timer or on
// demand, and publishes each completed set to the cache.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stockquote/internal/cache"
	"stockquote/internal/quote"
)

// Runner is the aggregation entry point the scheduler drives.
type Runner interface {
	Run(ctx context.Context, symbols []string) quote.Set
}

// State of the refresh loop.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

type Config struct {
	Interval    time.Duration // refresh interval, default 30s
	MinInterval time.Duration // SetInterval lower bound, default 5s
	MaxInterval time.Duration // SetInterval upper bound, default 300s
	Tick        time.Duration // control tick cadence, default 1s
}

func DefaultConfig() Config {
	return Config{
		Interval:    30 * time.Second,
		MinInterval: 5 * time.Second,
		MaxInterval: 300 * time.Second,
		Tick:        time.Second,
	}
}

// Scheduler is the single writer of the symbol list and the cache.
// The control loop never blocks on network I/O: runs execute on their
// own goroutine and at most one run is in flight at a time.
type Scheduler struct {
	cfg    Config
	runner Runner
	store  *cache.Store
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	interval time.Duration
	symbols  []string
	lastRun  time.Time
	inFlight bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config, runner Runner, store *cache.Store, logger *slog.Logger) *Scheduler {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = def.MinInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = cache.New()
	}
	return &Scheduler{
		cfg:      cfg,
		runner:   runner,
		store:    store,
		logger:   logger,
		interval: cfg.Interval,
	}
}

// Start moves Stopped -> Running: it triggers one run immediately and
// begins interval timing from now. Starting a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		return
	}
	s.state = Running
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("scheduler started", "interval", s.IntervalValue())
	s.trigger()

	s.wg.Add(1)
	go s.loop()
}

// Stop moves Running -> Stopped. Future scheduled ticks are suppressed;
// an in-flight run is not interrupted and still publishes its result.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	s.state = Stopped
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.onTick()
		}
	}
}

func (s *Scheduler) onTick() {
	s.mu.Lock()
	due := s.state == Running && time.Since(s.lastRun) >= s.interval
	s.mu.Unlock()
	if due {
		s.trigger()
	}
}

// ManualTrigger starts one run out of band, in either state. It does
// not change the Running/Stopped state; the completed run resets the
// interval clock. A trigger while a run is in flight is dropped.
func (s *Scheduler) ManualTrigger() { s.trigger() }

func (s *Scheduler) trigger() {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Debug("refresh already in flight, trigger dropped")
		return
	}
	s.inFlight = true
	symbols := make([]string, len(s.symbols))
	copy(symbols, s.symbols)
	s.mu.Unlock()

	// Runs outlive Stop on purpose: cancellation only suppresses
	// future ticks, so the run gets a background context.
	go func() {
		start := time.Now()
		set := s.runner.Run(context.Background(), symbols)
		s.store.Publish(set, time.Now())

		s.mu.Lock()
		s.lastRun = time.Now()
		s.inFlight = false
		s.mu.Unlock()

		ok := 0
		for _, o := range set {
			if o.OK() {
				ok++
			}
		}
		s.logger.Info("refresh complete",
			"symbols", len(symbols),
			"fetched", ok,
			"errors", len(set)-ok,
			"duration", time.Since(start),
		)
	}()
}

// SetInterval updates the refresh interval. Out-of-range values are
// rejected and the previous interval retained; no run is triggered.
func (s *Scheduler) SetInterval(d time.Duration) error {
	if d < s.cfg.MinInterval || d > s.cfg.MaxInterval {
		return fmt.Errorf("interval %s out of range [%s,%s]", d, s.cfg.MinInterval, s.cfg.MaxInterval)
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
	return nil
}

// IntervalValue returns the configured refresh interval.
func (s *Scheduler) IntervalValue() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetSymbols replaces the symbol list. An in-flight run completes and
// publishes under its own snapshot; the next run picks up this list.
func (s *Scheduler) SetSymbols(symbols []string) {
	cp := make([]string, len(symbols))
	copy(cp, symbols)
	s.mu.Lock()
	s.symbols = cp
	s.mu.Unlock()
}

// Symbols returns a copy of the current symbol list.
func (s *Scheduler) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]string, len(s.symbols))
	copy(cp, s.symbols)
	return cp
}

// State reports whether the scheduler is Running or Stopped.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining is the countdown until the next scheduled run, clamped at
// zero. Meaningful only while Running.
func (s *Scheduler) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	rem := s.interval - time.Since(s.lastRun)
	if rem < 0 {
		rem = 0
	}
	return rem
}

// Store exposes the cache the scheduler publishes to.
func (s *Scheduler) Store() *cache.Store { return s.store }
