// Package tencent fetches equity and index quotes from the qt.gtimg.cn
// batch quote endpoint. The response body is a delimited positional
// text format: fields are read by fixed index and any shift in field
// count is a parsing failure, not a crash.
package tencent

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"stockquote/internal/httpx"
	"stockquote/internal/quote"
)

// Positional field indexes of the payload, split on '~'.
const (
	fieldFlag       = 0
	fieldName       = 1
	fieldPrice      = 3
	fieldIdxChange  = 4 // indexes report change/percent early
	fieldIdxPercent = 5
	fieldExtPrice   = 22 // US only
	fieldExtChange  = 23
	fieldExtPercent = 24
	fieldChange     = 31
	fieldPercent    = 32
)

type Config struct {
	Name string
	URL  string // base URL, default https://qt.gtimg.cn
	Now  func() time.Time
}

type Source struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Source {
	if cfg.Name == "" {
		cfg.Name = "Tencent"
	}
	if cfg.URL == "" {
		cfg.URL = "https://qt.gtimg.cn"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Source{cfg: cfg, client: hc}
}

func (s *Source) Name() string { return s.cfg.Name }

// marketSymbol rewrites a watchlist symbol into the venue-qualified
// query string the backend expects.
func marketSymbol(symbol string) (query string, region quote.Region) {
	region = quote.EquityRegion(symbol)
	lower := strings.ToLower(symbol)
	switch region {
	case quote.RegionSH, quote.RegionSZ:
		return lower, region
	case quote.RegionIndex:
		return "s_us" + lower, region
	case quote.RegionHKIndex:
		if strings.EqualFold(symbol, "HKHSTECH") {
			return "s_hkHSTECH", region
		}
		return "s_hkHSI", region
	case quote.RegionHK:
		return "hk" + lower[2:], region
	default:
		return "us" + strings.ToUpper(symbol), quote.RegionUS
	}
}

func (s *Source) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	ms, region := marketSymbol(symbol)
	url := fmt.Sprintf("%s/q=%s", s.cfg.URL, ms)

	resp, err := s.client.Get(ctx, url, map[string]string{"Referer": "https://gu.qq.com/"})
	if err != nil {
		return nil, quote.NewError(quote.ErrNetwork, symbol, "", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, quote.NewError(quote.ErrNetwork, symbol, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, quote.NewError(quote.ErrNetwork, symbol, string(body), fmt.Errorf("GET %s -> %d", url, resp.StatusCode))
	}
	return s.parse(symbol, region, string(body))
}

// parse splits the "v_usAAPL="..."" assignment and reads the payload
// fields positionally.
func (s *Source) parse(symbol string, region quote.Region, body string) (*quote.Quote, error) {
	eq := strings.Index(body, "=")
	if eq < 0 {
		return nil, quote.NewError(quote.ErrParsing, symbol, body, fmt.Errorf("no assignment in response"))
	}
	payload := strings.Trim(strings.TrimSpace(body[eq+1:]), "\"\n;")
	if payload == "" || strings.Contains(payload, "none") {
		return nil, quote.NewError(quote.ErrInvalidSymbol, symbol, body, fmt.Errorf("no data for symbol"))
	}
	parts := strings.Split(payload, "~")

	switch region {
	case quote.RegionIndex, quote.RegionHKIndex:
		return s.parseIndex(symbol, region, body, parts)
	case quote.RegionUS:
		return s.parseUS(symbol, body, parts)
	default:
		return s.parseShare(symbol, region, body, parts)
	}
}

func (s *Source) parseIndex(symbol string, region quote.Region, raw string, parts []string) (*quote.Quote, error) {
	if len(parts) <= fieldIdxPercent {
		return nil, quote.NewError(quote.ErrParsing, symbol, raw, fmt.Errorf("index payload has %d fields", len(parts)))
	}
	price, err := field(parts, fieldPrice)
	if err != nil {
		return nil, quote.NewError(quote.ErrParsing, symbol, raw, err)
	}
	if price == nil {
		return nil, quote.NewError(quote.ErrParsing, symbol, raw, fmt.Errorf("price field empty"))
	}
	change, _ := field(parts, fieldIdxChange)
	percent, _ := field(parts, fieldIdxPercent)
	return &quote.Quote{
		Region:  region,
		Status:  quote.StatusUnknown,
		Name:    parts[fieldName],
		Symbol:  strings.ToUpper(symbol),
		Price:   price,
		Change:  change,
		Percent: percent,
	}, nil
}

func (s *Source) parseUS(symbol, raw string, parts []string) (*quote.Quote, error) {
	if len(parts) <= fieldPercent {
		return nil, quote.NewError(quote.ErrParsing, symbol, raw, fmt.Errorf("US payload has %d fields", len(parts)))
	}
	price, err := field(parts, fieldPrice)
	if err != nil {
		return nil, quote.NewError(quote.ErrParsing, symbol, raw, err)
	}
	if price == nil {
		return nil, quote.NewError(quote.ErrParsing, symbol, raw, fmt.Errorf("price field empty"))
	}
	change, _ := field(parts, fieldChange)
	percent, _ := field(parts, fieldPercent)

	status := quote.StatusClosed
	if parts[fieldFlag] == "us" {
		status = quote.StatusOpen
	}

	q := &quote.Quote{
		Region:  quote.RegionUS,
		Status:  status,
		Name:    parts[fieldName],
		Symbol:  strings.ToUpper(symbol),
		Price:   price,
		Change:  change,
		Percent: percent,
	}
	// Extended-hours fields are best effort: US equities carry them,
	// and a payload without them is still a valid quote.
	extP, errP := field(parts, fieldExtPrice)
	extC, errC := field(parts, fieldExtChange)
	extPct, errPct := field(parts, fieldExtPercent)
	if errP == nil && errC == nil && errPct == nil && extP != nil && extC != nil && extPct != nil {
		q.Extended = &quote.ExtendedHours{Price: *extP, Change: *extC, Percent: *extPct}
	}
	return q, nil
}

func (s *Source) parseShare(symbol string, region quote.Region, raw string, parts []string) (*quote.Quote, error) {
	if len(parts) <= fieldPercent {
		return nil, quote.NewError(quote.ErrParsing, symbol, raw, fmt.Errorf("share payload has %d fields", len(parts)))
	}
	price, err := field(parts, fieldPrice)
	if err != nil {
		return nil, quote.NewError(quote.ErrParsing, symbol, raw, err)
	}
	if price == nil {
		return nil, quote.NewError(quote.ErrParsing, symbol, raw, fmt.Errorf("price field empty"))
	}
	change, _ := field(parts, fieldChange)
	percent, _ := field(parts, fieldPercent)
	return &quote.Quote{
		Region:  region,
		Status:  quote.ResolveStatus(region, s.cfg.Now()),
		Name:    parts[fieldName],
		Symbol:  strings.ToUpper(symbol),
		Price:   price,
		Change:  change,
		Percent: percent,
	}, nil
}

// field parses one positional field as a float, nil when empty.
func field(parts []string, idx int) (*float64, error) {
	if idx >= len(parts) {
		return nil, fmt.Errorf("field %d out of range (%d fields)", idx, len(parts))
	}
	v := strings.TrimSpace(parts[idx])
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("field %d: %w", idx, err)
	}
	return &f, nil
}
