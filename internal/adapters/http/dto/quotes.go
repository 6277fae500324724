package dto

import "github.com/jsamuelsen/quotebook/internal/domain"

// Field limits. Emptiness is a domain rule and is checked by the store.
const (
	MaxTextLength     = 1000
	MaxCategoryLength = 100
)

// QuoteResponse is the wire form of a quote.
type QuoteResponse struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Category: q.Category}
}

// NewQuoteResponses converts a collection, keeping its order.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = NewQuoteResponse(q)
	}
	return out
}

// AddQuoteRequest is the body of POST /api/v1/quotes. The form tags let
// the HTML view bind the same struct from a posted form.
type AddQuoteRequest struct {
	Text     string `json:"text"     form:"text"     validate:"max=1000"`
	Category string `json:"category" form:"category" validate:"max=100,notreserved"`
}

// AddQuoteResponse answers a successful add.
type AddQuoteResponse struct {
	Quote    QuoteResponse `json:"quote"`
	Category string        `json:"category"`
	Count    int           `json:"count"`
}

// QuoteListResponse lists quotes in insertion order.
type QuoteListResponse struct {
	Quotes []QuoteResponse `json:"quotes"`
	Count  int             `json:"count"`
}

// NewQuoteListResponse converts a collection snapshot.
func NewQuoteListResponse(quotes []domain.Quote) QuoteListResponse {
	return QuoteListResponse{Quotes: NewQuoteResponses(quotes), Count: len(quotes)}
}

// RemoveQuoteURI binds DELETE /api/v1/quotes/:index.
type RemoveQuoteURI struct {
	Index int `uri:"index" validate:"gte=0"`
}

// RandomQuoteQuery binds GET /api/v1/quotes/random.
type RandomQuoteQuery struct {
	Category string `form:"category" validate:"max=100"`
}

// RandomQuoteResponse carries either a quote or, for an empty pool, a
// neutral message.
type RandomQuoteResponse struct {
	Quote   *QuoteResponse `json:"quote,omitempty"`
	Message string         `json:"message,omitempty"`
}

// AddCategoryRequest is the body of POST /api/v1/categories.
type AddCategoryRequest struct {
	Name string `json:"name" form:"category" validate:"max=100,notreserved"`
}

// CategoriesResponse lists known categories, sorted.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
