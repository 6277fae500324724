// Package domain contains core business entities and rules.
package domain

import "strings"

const (
	// DefaultCategory is assigned to quotes added without a category.
	DefaultCategory = "Uncategorized"

	// AllCategories is the selector value meaning "no category filter".
	AllCategories = "all"

	// AllCategoriesLabel is the human-readable label for AllCategories.
	AllCategoriesLabel = "All categories"
)

// Quote is a text/category pair, the atomic unit of the collection.
// It has no identifier; identity is its position in the owning collection.
type Quote struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// NewQuote trims the inputs and builds a Quote ready for insertion.
// An empty category falls back to DefaultCategory; empty text is rejected.
func NewQuote(text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Quote{}, NewValidationError("text", "please enter a quote")
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}

	return Quote{Text: text, Category: category}, nil
}

// Valid reports whether q satisfies the non-empty field invariant.
func (q Quote) Valid() bool {
	return strings.TrimSpace(q.Text) != "" && strings.TrimSpace(q.Category) != ""
}

// InsertionIndex converts a position in a recent-first listing back to the
// insertion-order index.
func InsertionIndex(length, displayIndex int) int {
	return length - 1 - displayIndex
}

// IsAllCategories reports whether category means "no filter".
func IsAllCategories(category string) bool {
	category = strings.TrimSpace(category)
	return category == "" || category == AllCategories
}

// FilterByCategory returns the quotes whose category equals category.
// The AllCategories sentinel (or an empty string) matches everything.
func FilterByCategory(quotes []Quote, category string) []Quote {
	if IsAllCategories(category) {
		pool := make([]Quote, len(quotes))
		copy(pool, quotes)
		return pool
	}

	pool := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Category == category {
			pool = append(pool, q)
		}
	}

	return pool
}

// Reversed returns a recent-first copy of quotes.
func Reversed(quotes []Quote) []Quote {
	out := make([]Quote, len(quotes))
	for i, q := range quotes {
		out[len(quotes)-1-i] = q
	}
	return out
}
