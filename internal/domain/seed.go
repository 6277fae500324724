package domain

// DefaultSeed returns the quotes used on first run or after the persisted
// collection was found corrupt. Each call returns a fresh slice.
func DefaultSeed() []Quote {
	return []Quote{
		{Text: "Simplicity is the ultimate sophistication.", Category: "Philosophy"},
		{Text: "The best way to get started is to quit talking and begin doing.", Category: "Motivation"},
		{Text: "Success is not final; failure is not fatal: It is the courage to continue that counts.", Category: "Perseverance"},
		{Text: "Your time is limited, so don't waste it living someone else's life.", Category: "Inspiration"},
		{Text: "Programs must be written for people to read, and only incidentally for machines to execute.", Category: "Programming"},
	}
}
