package quote

// Region identifies which market a quote belongs to.
type Region string

const (
	RegionSH      Region = "SH"
	RegionSZ      Region = "SZ"
	RegionHK      Region = "HK"
	RegionUS      Region = "US"
	RegionIndex   Region = "INDEX"
	RegionHKIndex Region = "HK-INDEX"
	RegionFX      Region = "FX"
	RegionCrypto  Region = "CRYPTO"
)

// MarketStatus is the trading state of the venue behind a quote.
type MarketStatus string

const (
	StatusOpen    MarketStatus = "OPEN"
	StatusClosed  MarketStatus = "CLOSED"
	StatusUnknown MarketStatus = "-"
)

// ExtendedHours carries pre/post-market data for US equities.
type ExtendedHours struct {
	Price   float64 `json:"price"`
	Change  float64 `json:"change"`
	Percent float64 `json:"percent"`
}

// Quote is the normalized shape returned by all sources.
// Price, Change and Percent are pointers because a backend may omit any
// of them; a Quote is only produced once Price has resolved.
type Quote struct {
	Region   Region         `json:"region"`
	Status   MarketStatus   `json:"status"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	Price    *float64       `json:"price"`
	Change   *float64       `json:"change,omitempty"`
	Percent  *float64       `json:"percent,omitempty"`
	Extended *ExtendedHours `json:"extended,omitempty"`
}

// Outcome is the per-symbol result of one fetch: exactly one of Quote
// or Err is set.
type Outcome struct {
	Symbol string `json:"symbol"`
	Quote  *Quote `json:"quote,omitempty"`
	Err    error  `json:"-"`
}

// OK reports whether the fetch for this symbol succeeded.
func (o Outcome) OK() bool { return o.Err == nil && o.Quote != nil }

// Set is the complete result of one aggregation run, ordered by the
// caller-supplied symbol order regardless of completion order.
type Set []Outcome

// Successes returns the quotes of all successful outcomes, in order.
func (s Set) Successes() []Quote {
	out := make([]Quote, 0, len(s))
	for _, o := range s {
		if o.OK() {
			out = append(out, *o.Quote)
		}
	}
	return out
}

// Float returns a pointer to v. Convenience for the nullable Quote fields.
func Float(v float64) *float64 { return &v }
