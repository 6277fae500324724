package ports

import (
	"context"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// QuoteSource supplies quotes from outside the local collection,
// such as a public quote API.
//
// Key considerations for adapters:
//   - Handle timeouts via context deadline
//   - Map external errors to domain errors (domain.ErrUnavailable)
//   - Translate external DTOs to domain.Quote
type QuoteSource interface {
	// RandomQuote fetches one quote. The returned quote has not been
	// validated or normalized; callers run it through the store.
	RandomQuote(ctx context.Context) (domain.Quote, error)
}
