// Package btc528 fetches crypto quotes by scraping the 528btc coin
// detail page. Price, change and percent live in specific markup
// patterns; the sign of change/percent is carried in its own capture
// group because the numeric text in the markup is unsigned.
package btc528

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"stockquote/internal/httpx"
	"stockquote/internal/quote"
)

var (
	priceRe   = regexp.MustCompile(`<i class="price_num word(?:Rise|Fall)">\$?([0-9,]+\.?[0-9]*)</i>`)
	changeRe  = regexp.MustCompile(`<span id="rise_fall_amount"[^>]*class="word(?:Rise|Fall)">([+-])\$?([0-9,]+\.?[0-9]*)</span>`)
	percentRe = regexp.MustCompile(`<div id="rise_fall_percent"[^>]*>([+-]?)(?:\s*)([0-9]+\.?[0-9]*)\s*%`)
)

type Config struct {
	Name string
	URL  string // base URL, default https://www.528btc.com
}

type Source struct {
	cfg    Config
	client *httpx.Client

	// coalesce concurrent fetches of the same coin page
	sf singleflight.Group
}

func New(cfg Config, hc *httpx.Client) *Source {
	if cfg.Name == "" {
		cfg.Name = "528btc"
	}
	if cfg.URL == "" {
		cfg.URL = "https://www.528btc.com"
	}
	return &Source{cfg: cfg, client: hc}
}

func (s *Source) Name() string { return s.cfg.Name }

func (s *Source) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	sym := strings.ToUpper(symbol)
	id, name, ok := quote.CryptoID(sym)
	if !ok {
		return nil, quote.NewError(quote.ErrInvalidSymbol, sym, "", fmt.Errorf("unsupported crypto ticker"))
	}

	key := strconv.Itoa(id)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.fetchPage(ctx, sym, id)
	})
	if err != nil {
		return nil, err
	}
	return parsePage(sym, name, v.(string))
}

func (s *Source) fetchPage(ctx context.Context, sym string, id int) (string, error) {
	url := fmt.Sprintf("%s/coin/%d/kline-24h", s.cfg.URL, id)
	resp, err := s.client.Get(ctx, url, map[string]string{"Referer": s.cfg.URL + "/"})
	if err != nil {
		return "", quote.NewError(quote.ErrNetwork, sym, "", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", quote.NewError(quote.ErrNetwork, sym, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", quote.NewError(quote.ErrNetwork, sym, string(body), fmt.Errorf("GET %s -> %d", url, resp.StatusCode))
	}
	return string(body), nil
}

// parsePage extracts price/change/percent from the page markup.
// Absence of the price pattern is a hard parse failure; change and
// percent degrade to zero.
func parsePage(sym, name, html string) (*quote.Quote, error) {
	pm := priceRe.FindStringSubmatch(html)
	if pm == nil {
		return nil, quote.NewError(quote.ErrParsing, sym, html, fmt.Errorf("price pattern not found"))
	}
	price, err := parseMagnitude(pm[1])
	if err != nil {
		return nil, quote.NewError(quote.ErrParsing, sym, html, fmt.Errorf("price: %w", err))
	}

	var change, percent float64
	if cm := changeRe.FindStringSubmatch(html); cm != nil {
		if v, err := parseMagnitude(cm[2]); err == nil {
			change = applySign(cm[1], v)
		}
	}
	if qm := percentRe.FindStringSubmatch(html); qm != nil {
		if v, err := parseMagnitude(qm[2]); err == nil {
			percent = applySign(qm[1], v)
		}
	}

	return &quote.Quote{
		Region:  quote.RegionCrypto,
		Status:  quote.StatusUnknown,
		Name:    name,
		Symbol:  sym,
		Price:   quote.Float(price),
		Change:  quote.Float(change),
		Percent: quote.Float(percent),
	}, nil
}

func parseMagnitude(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func applySign(sign string, v float64) float64 {
	if sign == "-" {
		return -v
	}
	return v
}
