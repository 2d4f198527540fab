package quote_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stockquote/internal/quote"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		symbol string
		want   quote.Class
	}{
		{"BTC", quote.ClassCrypto},
		{"btc", quote.ClassCrypto},
		{"DOGE", quote.ClassCrypto},
		{" eth ", quote.ClassCrypto},
		{"EURUSD", quote.ClassForex},
		{"USDCNH", quote.ClassForex},
		{"usdjpy", quote.ClassForex},
		// Six uppercase letters not in the curated map still route to forex.
		{"NOKSEK", quote.ClassForex},
		// Known non-pair tickers that match the pattern stay equity.
		{"SH513100", quote.ClassEquity},
		{"SH513500", quote.ClassEquity},
		{"SH513180", quote.ClassEquity},
		{"IBIT", quote.ClassEquity},
		{"SH600519", quote.ClassEquity},
		{"SZ000001", quote.ClassEquity},
		{"HK00700", quote.ClassEquity},
		{"AAPL", quote.ClassEquity},
		{".DJI", quote.ClassEquity},
		{"HKHSI", quote.ClassEquity},
		{"", quote.ClassEquity},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, quote.Classify(tc.symbol), "symbol %q", tc.symbol)
	}
}

func TestCryptoID(t *testing.T) {
	t.Parallel()

	id, name, ok := quote.CryptoID("btc")
	require.True(t, ok)
	require.Equal(t, 3008, id)
	require.Equal(t, "Bitcoin", name)

	_, _, ok = quote.CryptoID("AAPL")
	require.False(t, ok)
}

func TestForexSecID(t *testing.T) {
	t.Parallel()

	secid, name, ok := quote.ForexSecID("USDCNH")
	require.True(t, ok)
	require.Equal(t, "133.USDCNH", secid)
	require.Equal(t, "USD/CNH", name)

	// Unregistered pairs get a synthesized key and a BAS/QUO name.
	secid, name, ok = quote.ForexSecID("NOKSEK")
	require.True(t, ok)
	require.Equal(t, "119.NOKSEK", secid)
	require.Equal(t, "NOK/SEK", name)

	_, _, ok = quote.ForexSecID("AAPL")
	require.False(t, ok)
}

func TestEquityRegion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		symbol string
		want   quote.Region
	}{
		{"SH600519", quote.RegionSH},
		{"SZ399001", quote.RegionSZ},
		{"HK00700", quote.RegionHK},
		{"HKHSI", quote.RegionHKIndex},
		{"HKHSTECH", quote.RegionHKIndex},
		{".DJI", quote.RegionIndex},
		{".IXIC", quote.RegionIndex},
		{"AAPL", quote.RegionUS},
		{"IBIT", quote.RegionUS},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, quote.EquityRegion(tc.symbol), "symbol %q", tc.symbol)
	}
}
