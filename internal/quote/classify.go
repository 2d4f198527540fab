package quote

import (
	"regexp"
	"strings"
)

// Class is the adapter family that owns a symbol.
type Class int

const (
	ClassEquity Class = iota
	ClassForex
	ClassCrypto
)

// cryptoIDs maps the supported crypto tickers to their backend page ids
// and display names. The set is closed: anything else is not crypto.
var cryptoIDs = map[string]struct {
	ID   int
	Name string
}{
	"BTC":  {3008, "Bitcoin"},
	"ETH":  {3007, "Ethereum"},
	"XRP":  {3006, "Ripple"},
	"USDT": {32675, "Tether"},
	"BNB":  {3155, "Binance Coin"},
	"SOL":  {10114, "Solana"},
	"USDC": {8249, "USD Coin"},
	"DOGE": {2993, "Dogecoin"},
	"ADA":  {3010, "Cardano"},
	"SHIB": {10547, "Shiba Inu"},
}

// forexPairs is the curated forex map: pair -> pre-registered venue
// query key (secid) and display name. Pairs listed here are always
// classified as forex, regardless of any other rule.
var forexPairs = map[string]struct {
	SecID string
	Name  string
}{
	"JPYUSD": {"119.JPYUSD", "JPY/USD"},
	"USDCNH": {"133.USDCNH", "USD/CNH"},
	"EURUSD": {"119.EURUSD", "EUR/USD"},
	"GBPUSD": {"119.GBPUSD", "GBP/USD"},
	"AUDUSD": {"119.AUDUSD", "AUD/USD"},
	"USDJPY": {"119.USDJPY", "USD/JPY"},
	"USDCHF": {"119.USDCHF", "USD/CHF"},
	"USDCAD": {"119.USDCAD", "USD/CAD"},
	"USDHKD": {"119.USDHKD", "USD/HKD"},
	"EURJPY": {"119.EURJPY", "EUR/JPY"},
	"GBPJPY": {"119.GBPJPY", "GBP/JPY"},
}

// forexExclusions lists known tickers that happen to match the 6-letter
// pattern but are not currency pairs. Best-effort heuristic guard; the
// curated map above is the authoritative source.
var forexExclusions = map[string]struct{}{
	"SH513100": {},
	"SH513500": {},
	"SH513180": {},
	"IBIT":     {},
}

var sixLetters = regexp.MustCompile(`^[A-Z]{6}$`)

// Classify decides which adapter family owns a symbol. Ordering is
// load-bearing: the crypto and curated-forex membership checks must run
// before the generic 6-letter pattern, otherwise a whitelisted ticker
// that happens to be 6 letters would be routed to the wrong backend.
func Classify(symbol string) Class {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := cryptoIDs[s]; ok {
		return ClassCrypto
	}
	if _, ok := forexPairs[s]; ok {
		return ClassForex
	}
	if sixLetters.MatchString(s) {
		if _, excluded := forexExclusions[s]; !excluded {
			return ClassForex
		}
	}
	return ClassEquity
}

// CryptoID resolves a crypto ticker to its backend id and display name.
func CryptoID(symbol string) (id int, name string, ok bool) {
	c, ok := cryptoIDs[strings.ToUpper(symbol)]
	return c.ID, c.Name, ok
}

// ForexSecID resolves a pair to its venue query key and display name.
// Unregistered 6-letter pairs get a synthesized generic key and name.
func ForexSecID(symbol string) (secid, name string, ok bool) {
	s := strings.ToUpper(symbol)
	if p, found := forexPairs[s]; found {
		return p.SecID, p.Name, true
	}
	if len(s) == 6 {
		return "119." + s, s[:3] + "/" + s[3:], true
	}
	return "", "", false
}

// EquityRegion derives the market region from the symbol shape, for
// symbols already classified as equity/index.
func EquityRegion(symbol string) Region {
	s := strings.ToUpper(symbol)
	switch {
	case strings.HasPrefix(s, "SH"):
		return RegionSH
	case strings.HasPrefix(s, "SZ"):
		return RegionSZ
	case strings.HasPrefix(s, "."):
		return RegionIndex
	case s == "HKHSI" || s == "HKHSTECH":
		return RegionHKIndex
	case strings.HasPrefix(s, "HK"):
		return RegionHK
	default:
		return RegionUS
	}
}
