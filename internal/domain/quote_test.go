package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuote(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		expected Quote
		wantErr  bool
	}{
		{
			name:     "trims both fields",
			text:     "  Stay hungry.  ",
			category: " Motivation ",
			expected: Quote{Text: "Stay hungry.", Category: "Motivation"},
		},
		{
			name:     "empty category defaults",
			text:     "Stay foolish.",
			category: "   ",
			expected: Quote{Text: "Stay foolish.", Category: DefaultCategory},
		},
		{
			name:     "whitespace text rejected",
			text:     " \t\n",
			category: "Motivation",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuote(tt.text, tt.category)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, q)
			assert.True(t, q.Valid())
		})
	}
}

func TestInsertionIndex(t *testing.T) {
	// Five quotes listed recent-first: display 0 is the newest (index 4).
	assert.Equal(t, 4, InsertionIndex(5, 0))
	assert.Equal(t, 0, InsertionIndex(5, 4))
	assert.Equal(t, 2, InsertionIndex(5, 2))
}

func TestFilterByCategory(t *testing.T) {
	quotes := DefaultSeed()

	all := FilterByCategory(quotes, AllCategories)
	assert.Equal(t, quotes, all)

	empty := FilterByCategory(quotes, "")
	assert.Len(t, empty, len(quotes))

	philosophy := FilterByCategory(quotes, "Philosophy")
	require.Len(t, philosophy, 1)
	assert.Equal(t, "Simplicity is the ultimate sophistication.", philosophy[0].Text)

	assert.Empty(t, FilterByCategory(quotes, "Nope"))
}

func TestFilterByCategory_ReturnsCopy(t *testing.T) {
	quotes := DefaultSeed()
	pool := FilterByCategory(quotes, AllCategories)
	pool[0].Text = "changed"

	assert.NotEqual(t, "changed", quotes[0].Text)
}

func TestReversed(t *testing.T) {
	quotes := []Quote{{Text: "a", Category: "x"}, {Text: "b", Category: "x"}, {Text: "c", Category: "y"}}

	rev := Reversed(quotes)

	assert.Equal(t, []Quote{{Text: "c", Category: "y"}, {Text: "b", Category: "x"}, {Text: "a", Category: "x"}}, rev)
	assert.Equal(t, "a", quotes[0].Text)
}

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()

	require.Len(t, seed, 5)
	assert.Equal(t, Quote{Text: "Simplicity is the ultimate sophistication.", Category: "Philosophy"}, seed[0])
	for _, q := range seed {
		assert.True(t, q.Valid())
	}

	seed[0].Text = "mutated"
	assert.NotEqual(t, "mutated", DefaultSeed()[0].Text)
}
