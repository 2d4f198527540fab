// Package eastmoney fetches forex quotes from the push2.eastmoney.com
// quote API. The backend reports fixed-point integers: prices are
// scaled by 10000 and percentages by 100.
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"stockquote/internal/quote"
)

// Field list requested from the API. f43=price, f58=name, f60=previous
// close, f170=percent change; the remainder mirror the quote page
// request so the backend treats us like a regular client.
const quoteFields = "f43,f44,f45,f46,f47,f48,f49,f50,f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61,f170,f171,f168"

const (
	priceScale   = 10000
	percentScale = 100
)

type Config struct {
	Name string
	URL  string // quote API endpoint
}

type Source struct {
	cfg    Config
	client HTTPClient
	header http.Header
}

type Option func(*Source)

// WithHeader adds headers to every request.
func WithHeader(h http.Header) Option {
	return func(s *Source) {
		for k, vs := range h {
			for _, v := range vs {
				s.header.Add(k, v)
			}
		}
	}
}

func New(cfg Config, client HTTPClient, options ...Option) *Source {
	if cfg.Name == "" {
		cfg.Name = "Eastmoney"
	}
	if cfg.URL == "" {
		cfg.URL = "https://push2.eastmoney.com/api/qt/stock/get"
	}
	if client == nil {
		client = http.DefaultClient
	}
	s := &Source{cfg: cfg, client: client, header: http.Header{}}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Source) Name() string { return s.cfg.Name }

type apiResponse struct {
	Data *apiData `json:"data"`
}

// apiData fields are raw fixed-point integers; pointers distinguish a
// missing field from a reported zero.
type apiData struct {
	Name    string   `json:"f58"`
	Price   *float64 `json:"f43"`
	PrevRaw *float64 `json:"f60"`
	Percent *float64 `json:"f170"`
}

func (s *Source) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	sym := strings.ToUpper(symbol)
	secid, name, ok := quote.ForexSecID(sym)
	if !ok {
		return nil, quote.NewError(quote.ErrInvalidSymbol, sym, "", fmt.Errorf("not a forex pair"))
	}

	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, quote.NewError(quote.ErrUnexpected, sym, "", err)
	}
	q := u.Query()
	q.Set("secid", secid)
	q.Set("fields", quoteFields)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, quote.NewError(quote.ErrUnexpected, sym, "", err)
	}
	for k, vs := range s.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Referer", fmt.Sprintf("https://quote.eastmoney.com/forex/%s.html", sym))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, quote.NewError(quote.ErrNetwork, sym, "", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, quote.NewError(quote.ErrNetwork, sym, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, quote.NewError(quote.ErrNetwork, sym, string(body), fmt.Errorf("GET %s -> %d", u.String(), resp.StatusCode))
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, quote.NewError(quote.ErrParsing, sym, string(body), fmt.Errorf("decode: %w", err))
	}
	if api.Data == nil || api.Data.Price == nil || *api.Data.Price == 0 {
		return nil, quote.NewError(quote.ErrParsing, sym, string(body), fmt.Errorf("no price data"))
	}
	d := api.Data
	if d.Name != "" {
		name = d.Name
	}

	price := *d.Price / priceScale
	q2 := &quote.Quote{
		Region: quote.RegionFX,
		Status: quote.StatusUnknown,
		Name:   name,
		Symbol: sym,
		Price:  quote.Float(price),
	}
	// Change and percent degrade to absent rather than dividing by a
	// missing or zero previous close.
	if d.PrevRaw != nil && *d.PrevRaw != 0 {
		q2.Change = quote.Float((*d.Price - *d.PrevRaw) / priceScale)
	}
	switch {
	case d.Percent != nil && *d.Percent != 0:
		q2.Percent = quote.Float(*d.Percent / percentScale)
	case q2.Change != nil:
		base := *d.PrevRaw / priceScale
		q2.Percent = quote.Float(*q2.Change / base * 100)
	}
	return q2, nil
}
