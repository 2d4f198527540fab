// Package aggregate runs one fetch cycle: it routes every symbol to
// the adapter that owns it, fans out under a concurrency bound, and
// reassembles the outcomes in the caller's symbol order.
package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"stockquote/internal/quote"
	"stockquote/internal/source"
)

// DefaultConcurrency bounds in-flight requests per run, independent of
// symbol-set size.
const DefaultConcurrency = 10

type Config struct {
	// Concurrency caps simultaneous fetches. Defaults to
	// DefaultConcurrency when <= 0.
	Concurrency int
}

// Aggregator owns the classifier→adapter dispatch for one symbol set.
type Aggregator struct {
	cfg    Config
	equity source.Source
	forex  source.Source
	crypto source.Source
	logger *slog.Logger
}

func New(cfg Config, equity, forex, crypto source.Source, logger *slog.Logger) *Aggregator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, equity: equity, forex: forex, crypto: crypto, logger: logger}
}

// route picks the adapter that owns a symbol.
func (a *Aggregator) route(symbol string) source.Source {
	switch quote.Classify(symbol) {
	case quote.ClassCrypto:
		return a.crypto
	case quote.ClassForex:
		return a.forex
	default:
		return a.equity
	}
}

// Run fetches all symbols concurrently and returns one Outcome per
// input position, in input order. Symbols are fetched once each; a
// duplicate symbol shares the first occurrence's outcome at its own
// index. Per-symbol failures are captured, logged and never escalated.
func (a *Aggregator) Run(ctx context.Context, symbols []string) quote.Set {
	if len(symbols) == 0 {
		return quote.Set{}
	}

	// First occurrence wins the fetch; later duplicates reuse it.
	uniq := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if _, dup := seen[s]; !dup {
			seen[s] = struct{}{}
			uniq = append(uniq, s)
		}
	}

	outcomes := make(map[string]quote.Outcome, len(uniq))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, a.cfg.Concurrency)

	for _, sym := range uniq {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				outcomes[sym] = quote.Outcome{Symbol: sym, Err: quote.NewError(quote.ErrNetwork, sym, "", ctx.Err())}
				mu.Unlock()
				return
			}

			o := a.fetchOne(ctx, sym)
			mu.Lock()
			outcomes[sym] = o
			mu.Unlock()
		}(sym)
	}
	wg.Wait()

	set := make(quote.Set, len(symbols))
	for i, s := range symbols {
		set[i] = outcomes[strings.ToUpper(strings.TrimSpace(s))]
	}
	return set
}

func (a *Aggregator) fetchOne(ctx context.Context, sym string) quote.Outcome {
	src := a.route(sym)
	q, err := src.Fetch(ctx, sym)
	if err != nil {
		a.logError(sym, src.Name(), err)
		return quote.Outcome{Symbol: sym, Err: err}
	}
	return quote.Outcome{Symbol: sym, Quote: q}
}

func (a *Aggregator) logError(sym, src string, err error) {
	attrs := []any{
		"symbol", sym,
		"source", src,
		"kind", string(quote.KindOf(err)),
		"err", err,
	}
	var qe *quote.Error
	if errors.As(err, &qe) && qe.Raw != "" {
		attrs = append(attrs, "raw", qe.Raw)
	}
	a.logger.Warn("fetch failed", attrs...)
}
