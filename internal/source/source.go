// Package source defines the contract every quote backend adapter
// implements. An adapter turns one symbol into a normalized quote or a
// typed failure; it holds no per-call state beyond the shared HTTP
// client.
package source

import (
	"context"

	"stockquote/internal/quote"
)

type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (*quote.Quote, error)
}
