package aggregate_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockquote/internal/aggregate"
	"stockquote/internal/quote"
)

// fakeSource records calls and returns canned quotes or errors, with an
// optional artificial delay to shake out ordering assumptions.
type fakeSource struct {
	name  string
	mu    sync.Mutex
	calls []string
	fetch func(symbol string) (*quote.Quote, error)
	delay func() time.Duration
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()
	if f.delay != nil {
		select {
		case <-time.After(f.delay()):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fetch != nil {
		return f.fetch(symbol)
	}
	return &quote.Quote{Symbol: symbol, Price: quote.Float(1)}, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newAggregator(equity, forex, crypto *fakeSource) *aggregate.Aggregator {
	return aggregate.New(aggregate.Config{}, equity, forex, crypto, nil)
}

func TestRunPreservesInputOrder(t *testing.T) {
	t.Parallel()

	equity := &fakeSource{
		name:  "equity",
		delay: func() time.Duration { return time.Duration(rand.Intn(20)) * time.Millisecond },
		fetch: func(symbol string) (*quote.Quote, error) {
			return &quote.Quote{Symbol: symbol, Price: quote.Float(float64(len(symbol)))}, nil
		},
	}
	agg := newAggregator(equity, &fakeSource{name: "forex"}, &fakeSource{name: "crypto"})

	symbols := []string{"SH600519", "SZ000001", "AAPL", "HK00700", "TSLA", ".DJI", "SH000001", "MSFT"}
	set := agg.Run(context.Background(), symbols)

	require.Len(t, set, len(symbols))
	for i, s := range symbols {
		require.Equal(t, s, set[i].Symbol)
		require.True(t, set[i].OK())
		require.Equal(t, s, set[i].Quote.Symbol)
	}
}

func TestRunEmptyInput(t *testing.T) {
	t.Parallel()

	equity := &fakeSource{name: "equity"}
	forex := &fakeSource{name: "forex"}
	crypto := &fakeSource{name: "crypto"}
	agg := newAggregator(equity, forex, crypto)

	set := agg.Run(context.Background(), nil)

	require.NotNil(t, set)
	require.Empty(t, set)
	require.Zero(t, equity.callCount())
	require.Zero(t, forex.callCount())
	require.Zero(t, crypto.callCount())
}

func TestRunRoutesByClass(t *testing.T) {
	t.Parallel()

	equity := &fakeSource{name: "equity"}
	forex := &fakeSource{name: "forex"}
	crypto := &fakeSource{name: "crypto"}
	agg := newAggregator(equity, forex, crypto)

	set := agg.Run(context.Background(), []string{"SH600519", "EURUSD", "BTC", "IBIT", "SH513100"})

	require.Len(t, set, 5)
	require.Equal(t, []string{"EURUSD"}, forex.calls)
	require.Equal(t, []string{"BTC"}, crypto.calls)
	require.ElementsMatch(t, []string{"SH600519", "IBIT", "SH513100"}, equity.calls)
}

func TestRunPartialFailureIsolated(t *testing.T) {
	t.Parallel()

	equity := &fakeSource{
		name: "equity",
		fetch: func(symbol string) (*quote.Quote, error) {
			if symbol == "BROKEN99" {
				return nil, quote.NewError(quote.ErrParsing, symbol, "garbage", fmt.Errorf("bad payload"))
			}
			return &quote.Quote{Symbol: symbol, Price: quote.Float(42)}, nil
		},
	}
	agg := newAggregator(equity, &fakeSource{name: "forex"}, &fakeSource{name: "crypto"})

	set := agg.Run(context.Background(), []string{"AAPL", "BROKEN99", "TSLA"})

	require.Len(t, set, 3)
	require.True(t, set[0].OK())
	require.False(t, set[1].OK())
	require.Equal(t, quote.ErrParsing, quote.KindOf(set[1].Err))
	require.True(t, set[2].OK())
	require.Len(t, set.Successes(), 2)
}

func TestRunDuplicatesFetchedOnce(t *testing.T) {
	t.Parallel()

	equity := &fakeSource{name: "equity"}
	agg := newAggregator(equity, &fakeSource{name: "forex"}, &fakeSource{name: "crypto"})

	set := agg.Run(context.Background(), []string{"AAPL", "aapl", " AAPL ", "TSLA"})

	require.Len(t, set, 4)
	require.Equal(t, 2, equity.callCount())
	require.Equal(t, set[0], set[1])
	require.Equal(t, set[0], set[2])
	require.Equal(t, "AAPL", set[1].Symbol)
}

func TestRunHonorsConcurrencyBound(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int64
	equity := &fakeSource{
		name: "equity",
		fetch: func(symbol string) (*quote.Quote, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return &quote.Quote{Symbol: symbol, Price: quote.Float(1)}, nil
		},
	}
	agg := aggregate.New(aggregate.Config{Concurrency: 3}, equity, &fakeSource{name: "forex"}, &fakeSource{name: "crypto"}, nil)

	symbols := make([]string, 12)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%d", i)
	}
	set := agg.Run(context.Background(), symbols)

	require.Len(t, set, 12)
	require.LessOrEqual(t, peak.Load(), int64(3))
}
