package quote_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stockquote/internal/quote"
)

func TestNewErrorTruncatesRaw(t *testing.T) {
	t.Parallel()

	raw := strings.Repeat("x", 2000)
	err := quote.NewError(quote.ErrParsing, "AAPL", raw, fmt.Errorf("boom"))

	var qe *quote.Error
	require.ErrorAs(t, err, &qe)
	require.Len(t, qe.Raw, 512)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := quote.NewError(quote.ErrInvalidSymbol, "NOPE", "", nil)
	require.Equal(t, quote.ErrInvalidSymbol, quote.KindOf(err))

	wrapped := fmt.Errorf("fetch: %w", quote.NewError(quote.ErrNetwork, "BTC", "", errors.New("timeout")))
	require.Equal(t, quote.ErrNetwork, quote.KindOf(wrapped))

	require.Equal(t, quote.ErrUnexpected, quote.KindOf(errors.New("plain")))
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := quote.NewError(quote.ErrNetwork, "ETH", "", cause)
	require.ErrorIs(t, err, cause)
}
