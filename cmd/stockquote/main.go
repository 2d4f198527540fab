package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"stockquote/internal/aggregate"
	"stockquote/internal/cache"
	"stockquote/internal/config"
	"stockquote/internal/httpx"
	"stockquote/internal/quote"
	"stockquote/internal/scheduler"
	"stockquote/internal/source"
	"stockquote/internal/source/btc528"
	"stockquote/internal/source/eastmoney"
	"stockquote/internal/source/ratelimit"
	"stockquote/internal/source/tencent"
	"stockquote/internal/watchlist"
)

func main() {
	var configPath string
	var intervalSec int
	var showIndexes bool
	var once bool
	var verbose bool

	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to stockquote.yaml (optional)")
	flag.IntVar(&intervalSec, "i", 0, "refresh interval in seconds (5-300, overrides config)")
	flag.BoolVar(&showIndexes, "indexes", false, "watch the indexes list instead of favorites")
	flag.BoolVar(&once, "once", false, "fetch once, print and exit")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}
	if intervalSec > 0 {
		cfg.Refresh.IntervalSec = intervalSec
		if err := cfg.Validate(); err != nil {
			logger.Error("config", "err", err)
			os.Exit(1)
		}
	}

	symbols := flag.Args()
	for i, s := range symbols {
		symbols[i] = strings.ToUpper(s)
	}
	if len(symbols) == 0 {
		store := &watchlist.Store{
			FavoritesPath: cfg.Watchlist.FavoritesPath,
			IndexesPath:   cfg.Watchlist.IndexesPath,
		}
		kind := watchlist.Favorites
		if showIndexes {
			kind = watchlist.Indexes
		}
		symbols, err = store.Load(kind)
		if err != nil {
			logger.Error("watchlist", "err", err)
			os.Exit(1)
		}
	}
	if len(symbols) == 0 {
		logger.Error("no symbols to watch")
		os.Exit(1)
	}

	httpClient := httpx.New(cfg.Timeout())
	var crypto source.Source = btc528.New(btc528.Config{URL: cfg.Sources.Btc528URL}, httpClient)
	if cfg.Sources.Btc528RatePerSec > 0 {
		tb := ratelimit.NewTokenBucket(crypto, cfg.Sources.Btc528RatePerSec, cfg.Sources.Btc528Burst)
		defer tb.Close()
		crypto = tb
	}
	agg := aggregate.New(
		aggregate.Config{Concurrency: cfg.Fetch.MaxConcurrency},
		tencent.New(tencent.Config{URL: cfg.Sources.TencentURL}, httpClient),
		eastmoney.New(eastmoney.Config{URL: cfg.Sources.EastmoneyURL}, httpClient.HTTP),
		crypto,
		logger,
	)

	if once {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout()+5*time.Second)
		defer cancel()
		render(os.Stdout, agg.Run(ctx, symbols))
		return
	}

	store := cache.New()
	sched := scheduler.New(scheduler.Config{
		Interval:    cfg.Interval(),
		MinInterval: time.Duration(cfg.Refresh.MinIntervalSec) * time.Second,
		MaxInterval: time.Duration(cfg.Refresh.MaxIntervalSec) * time.Second,
	}, agg, store, logger)
	sched.SetSymbols(symbols)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	sched.Start(ctx)

	// Render whenever a new set is published.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	var lastShown time.Time
	for {
		select {
		case <-ctx.Done():
			sched.Stop()
			return
		case <-ticker.C:
			set, at := store.Snapshot()
			if at.After(lastShown) {
				lastShown = at
				render(os.Stdout, set)
				fmt.Printf("updated %s, next refresh in %ds\n",
					at.Format("15:04:05"), int(sched.Remaining().Seconds()))
			}
		}
	}
}

func render(out *os.File, set quote.Set) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tSTATUS\tSYMBOL\tPRICE\tCHANGE\tPERCENT\tNAME")
	for _, o := range set {
		if !o.OK() {
			fmt.Fprintf(w, "-\t-\t%s\t-\t-\t-\t%v\n", o.Symbol, o.Err)
			continue
		}
		q := o.Quote
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Region, q.Status, q.Symbol,
			num(q.Price), num(q.Change), pct(q.Percent), q.Name)
	}
	w.Flush()
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func pct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v)
}
