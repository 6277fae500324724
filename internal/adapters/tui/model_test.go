package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestModel returns a model over the seed whose random pick is always
// the first quote of the pool.
func newTestModel(t *testing.T) (Model, *app.QuoteStore) {
	t.Helper()

	store := app.NewQuoteStore(app.QuoteStoreConfig{
		Storage: storage.NewMemory(),
		Random:  func() float64 { return 0 },
		Metrics: app.NewMetrics(prometheus.NewRegistry()),
		Logger:  discardLogger(),
	})
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	return New(context.Background(), store, discardLogger()), store
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds msgs to m in order and returns the resulting model.
func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()

	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()

	for _, r := range s {
		m = press(t, m, runes(string(r)))
	}
	return m
}

func TestNew_ShowsRandomQuote(t *testing.T) {
	m, _ := newTestModel(t)

	assert.True(t, m.hasQuote)
	assert.Equal(t, domain.DefaultSeed()[0], m.quote)
	assert.Equal(t, []string{domain.AllCategories, "Inspiration", "Motivation", "Perseverance", "Philosophy", "Programming"}, m.options)

	view := m.View()
	assert.Contains(t, view, domain.AllCategoriesLabel)
	assert.Contains(t, view, `"Simplicity is the ultimate sophistication."`)
	assert.Contains(t, view, "Category: Philosophy")
	assert.Contains(t, view, "Quotes (5)")
}

func TestUpdate_CycleCategory(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Inspiration", m.options[m.selected])
	assert.Equal(t, "Inspiration", m.quote.Category)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "Programming", m.options[m.selected])
	assert.Equal(t, "Programming", m.quote.Category)
}

func TestUpdate_RandomKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m.status = AddedMessage

	for _, k := range []string{"n", "N"} {
		m = press(t, m, runes(k))
		assert.True(t, m.hasQuote)
		assert.Empty(t, m.status)
	}
}

func TestUpdate_EmptyCategoryShowsMessage(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, runes("c"))
	m = typeText(t, m, "Stoicism")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, CategoryMessage, m.status)
	assert.Contains(t, m.options, "Stoicism")

	for m.options[m.selected] != "Stoicism" {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}

	assert.False(t, m.hasQuote)
	assert.Contains(t, m.View(), EmptyPoolMessage)
}

func TestUpdate_AddQuote(t *testing.T) {
	m, store := newTestModel(t)

	m = press(t, m, runes("a"))
	require.Equal(t, modeAddQuote, m.mode)
	assert.True(t, m.text.Focused())
	assert.Contains(t, m.View(), "Add a quote")

	m = typeText(t, m, "Test quote")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.category.Focused())
	m = typeText(t, m, "Testing")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, AddedMessage, m.status)
	assert.Equal(t, domain.Quote{Text: "Test quote", Category: "Testing"}, m.quote)
	assert.Equal(t, 6, store.Len())
	assert.Contains(t, m.options, "Testing")
	assert.Empty(t, m.text.Value())
	assert.Empty(t, m.category.Value())

	// The newest quote heads the list and holds the cursor.
	assert.Equal(t, 0, m.cursor)
	list := m.viewList()
	assert.Less(t, strings.Index(list, "Test quote"), strings.Index(list, "Simplicity"))
}

func TestUpdate_AddQuote_OutsideFilterShowsRandom(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}) // Inspiration

	m = press(t, m, runes("a"))
	m = typeText(t, m, "Elsewhere")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "Inspiration", m.options[m.selected])
	assert.Equal(t, "Inspiration", m.quote.Category)
}

func TestUpdate_AddQuote_EmptyTextPrompts(t *testing.T) {
	m, store := newTestModel(t)

	m = press(t, m, runes("a"))
	m = typeText(t, m, "   ")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "Misc")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeAddQuote, m.mode)
	assert.Equal(t, "Please enter a quote.", m.prompt)
	assert.True(t, m.text.Focused())
	assert.False(t, m.category.Focused())
	assert.Equal(t, 5, store.Len())
	assert.Contains(t, m.View(), "Please enter a quote.")
}

func TestUpdate_ReservedCategory(t *testing.T) {
	m, store := newTestModel(t)

	m = press(t, m, runes("a"))
	m = typeText(t, m, "Quote")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "all")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ReservedPrompt, m.prompt)
	assert.Equal(t, 5, store.Len())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc}, runes("c"))
	m = typeText(t, m, "all")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ReservedPrompt, m.prompt)
	assert.Len(t, store.Categories(), 5)
}

func TestUpdate_AddCategory_EmptyPrompts(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, runes("c"), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeAddCategory, m.mode)
	assert.Equal(t, "Please enter a category name.", m.prompt)
}

func TestUpdate_CancelForm(t *testing.T) {
	m, store := newTestModel(t)

	m = press(t, m, runes("a"))
	m = typeText(t, m, "draft")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, modeBrowse, m.mode)
	assert.False(t, m.text.Focused())
	assert.Equal(t, 5, store.Len())
}

func TestUpdate_FormKeysDoNotTrigger(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, runes("a"))
	m = typeText(t, m, "quand")

	assert.Equal(t, modeAddQuote, m.mode)
	assert.Equal(t, "quand", m.text.Value())
}

func TestUpdate_RemoveAtCursor(t *testing.T) {
	m, store := newTestModel(t)

	// Display 1 is the second-newest quote: the Inspiration seed.
	m = press(t, m, runes("j"), runes("d"))

	assert.Equal(t, RemovedMessage, m.status)
	want := domain.DefaultSeed()
	want = append(want[:3], want[4])
	if diff := cmp.Diff(want, store.Snapshot()); diff != "" {
		t.Errorf("collection mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, m.options, "Inspiration")
}

func TestUpdate_RemoveClampsCursor(t *testing.T) {
	m, store := newTestModel(t)

	for range 10 {
		m = press(t, m, runes("j"))
	}
	assert.Equal(t, 4, m.cursor)

	m = press(t, m, runes("d"))
	assert.Equal(t, 3, m.cursor)
	assert.Equal(t, 4, store.Len())

	for range 4 {
		m = press(t, m, runes("d"))
	}
	assert.Zero(t, store.Len())
	assert.Zero(t, m.cursor)
	assert.False(t, m.hasQuote)

	// Removing from an empty list is a no-op.
	m = press(t, m, runes("d"))
	require.NoError(t, m.err)
}

func TestUpdate_SelectionFallsBackWhenCategoryDisappears(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}) // Inspiration
	require.Equal(t, "Inspiration", m.options[m.selected])

	// Inspiration is display index 1.
	m = press(t, m, runes("j"), runes("d"))

	assert.Equal(t, domain.AllCategories, m.options[m.selected])
}

func TestUpdate_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = press(t, m, runes("a"))
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_WindowSize(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 110, m.text.Width)
	assert.Equal(t, 120, m.help.Width)
}

func TestUpdate_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t)

	assert.NotContains(t, m.View(), "add category")
	m = press(t, m, runes("?"))
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "add category")
}

// flakyStorage fails the next Set once after failNext is raised.
type flakyStorage struct {
	*storage.Memory
	failNext bool
}

func (f *flakyStorage) Set(ctx context.Context, key string, value []byte) error {
	if f.failNext {
		f.failNext = false
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestUpdate_ErrorClearsOnNextAction(t *testing.T) {
	kv := &flakyStorage{Memory: storage.NewMemory()}
	store := app.NewQuoteStore(app.QuoteStoreConfig{
		Storage: kv,
		Random:  func() float64 { return 0 },
		Metrics: app.NewMetrics(prometheus.NewRegistry()),
		Logger:  discardLogger(),
	})
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	m := New(context.Background(), store, discardLogger())

	kv.failNext = true
	m = press(t, m, runes("d"))
	require.Error(t, m.err)
	assert.Equal(t, 5, store.Len())
	assert.Contains(t, m.View(), "Error: remove quote")

	m = press(t, m, runes("d"))
	assert.NoError(t, m.err)
	assert.Equal(t, 4, store.Len())
	assert.Contains(t, m.View(), RemovedMessage)
	assert.NotContains(t, m.View(), "Error:")

	kv.failNext = true
	m = press(t, m, runes("a"))
	m = typeText(t, m, "hello")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Error(t, m.err)
	assert.Equal(t, 4, store.Len())

	// Retrying from the still-open form succeeds and replaces the error.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NoError(t, m.err)
	assert.Equal(t, 5, store.Len())
	assert.Contains(t, m.View(), AddedMessage)
	assert.NotContains(t, m.View(), "Error:")

	kv.failNext = true
	m = press(t, m, runes("d"))
	require.Error(t, m.err)

	m = press(t, m, runes("n"))
	assert.NoError(t, m.err)
	assert.True(t, m.hasQuote)
}

func TestValidationPrompt(t *testing.T) {
	prompt, ok := validationPrompt(domain.NewValidationError("text", "please enter a quote"))
	assert.True(t, ok)
	assert.Equal(t, "Please enter a quote.", prompt)

	_, ok = validationPrompt(errors.New("disk full"))
	assert.False(t, ok)
}
