// Package tui renders the quote collection in a terminal with bubbletea.
// It drives the same QuoteStore operations as the web view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
)

// Messages shown in the status line.
const (
	EmptyPoolMessage = "No quotes in this category."
	AddedMessage     = "New quote added successfully!"
	CategoryMessage  = "Category added."
	RemovedMessage   = "Quote removed."
	ReservedPrompt   = "That category name is reserved."
)

const (
	inputCharLimit = 1000
	defaultWidth   = 80
)

type mode int

const (
	modeBrowse mode = iota
	modeAddQuote
	modeAddCategory
)

// Model is the bubbletea model for the quote widget.
type Model struct {
	ctx    context.Context
	store  *app.QuoteStore
	logger *slog.Logger

	keys keyMap
	help help.Model
	mode mode

	// options[0] is always domain.AllCategories.
	options  []string
	selected int

	quote    domain.Quote
	hasQuote bool

	// cursor is a position in the recent-first list.
	cursor int

	text     textinput.Model
	category textinput.Model
	bare     textinput.Model

	prompt string
	status string
	err    error

	width int
}

// New builds a model over store and picks the first quote to display.
func New(ctx context.Context, store *app.QuoteStore, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		ctx:      ctx,
		store:    store,
		logger:   logger.With(slog.String("component", "tui")),
		keys:     defaultKeyMap(),
		help:     help.New(),
		text:     newInput("Enter a new quote"),
		category: newInput("Enter quote category"),
		bare:     newInput("New category"),
		width:    defaultWidth,
	}

	m.refreshOptions()
	m.showRandom()

	return m
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = inputCharLimit
	ti.Width = defaultWidth - 10
	return ti
}

// Run starts the program in the alternate screen and blocks until quit.
func Run(ctx context.Context, store *app.QuoteStore, logger *slog.Logger) error {
	p := tea.NewProgram(New(ctx, store, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running terminal view: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		inputWidth := max(msg.Width-10, 10)
		m.text.Width = inputWidth
		m.category.Width = inputWidth
		m.bare.Width = inputWidth
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.mode {
		case modeAddQuote:
			return m.updateAddQuote(msg)
		case modeAddCategory:
			return m.updateAddCategory(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	return m, nil
}

// updateBrowse starts every key with a clean prompt and error line; an
// earlier failure stays visible only until the next action.
func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.prompt = ""
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Random):
		m.status = ""
		m.showRandom()

	case key.Matches(msg, m.keys.NextFilter):
		m.selected = (m.selected + 1) % len(m.options)
		m.status = ""
		m.showRandom()

	case key.Matches(msg, m.keys.PrevFilter):
		m.selected = (m.selected - 1 + len(m.options)) % len(m.options)
		m.status = ""
		m.showRandom()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.store.Len()-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Remove):
		m.removeAtCursor()

	case key.Matches(msg, m.keys.AddQuote):
		m.mode = modeAddQuote
		m.status = ""
		m.category.Blur()
		return m, m.text.Focus()

	case key.Matches(msg, m.keys.AddCategory):
		m.mode = modeAddCategory
		m.status = ""
		return m, m.bare.Focus()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) updateAddQuote(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		if m.text.Focused() {
			m.text.Blur()
			return m, m.category.Focus()
		}
		m.category.Blur()
		return m, m.text.Focus()

	case key.Matches(msg, m.keys.Submit):
		return m.submitQuote()
	}

	var cmd tea.Cmd
	if m.text.Focused() {
		m.text, cmd = m.text.Update(msg)
	} else {
		m.category, cmd = m.category.Update(msg)
	}
	return m, cmd
}

func (m Model) submitQuote() (tea.Model, tea.Cmd) {
	if isReserved(m.category.Value()) {
		m.prompt = ReservedPrompt
		m.text.Blur()
		return m, m.category.Focus()
	}

	res, err := m.store.Add(m.ctx, m.text.Value(), m.category.Value())
	if err != nil {
		if prompt, ok := validationPrompt(err); ok {
			m.prompt = prompt
			m.category.Blur()
			return m, m.text.Focus()
		}
		m.fail("add quote", err)
		return m, nil
	}

	m.text.Reset()
	m.category.Reset()
	m.closeForm()
	m.refreshOptions()

	m.cursor = 0
	m.err = nil
	m.status = AddedMessage
	if cur := m.options[m.selected]; domain.IsAllCategories(cur) || cur == res.Quote.Category {
		m.quote, m.hasQuote = res.Quote, true
	} else {
		m.showRandom()
	}

	return m, nil
}

func (m Model) updateAddCategory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if isReserved(m.bare.Value()) {
			m.prompt = ReservedPrompt
			return m, nil
		}
		if _, err := m.store.AddCategoryOnly(m.ctx, m.bare.Value()); err != nil {
			if prompt, ok := validationPrompt(err); ok {
				m.prompt = prompt
				return m, nil
			}
			m.fail("add category", err)
			return m, nil
		}

		m.bare.Reset()
		m.closeForm()
		m.refreshOptions()
		m.err = nil
		m.status = CategoryMessage
		return m, nil
	}

	var cmd tea.Cmd
	m.bare, cmd = m.bare.Update(msg)
	return m, cmd
}

func (m *Model) removeAtCursor() {
	if m.store.Len() == 0 {
		return
	}

	quotes, err := m.store.RemoveDisplayed(m.ctx, m.cursor)
	if err != nil {
		m.fail("remove quote", err)
		return
	}

	m.cursor = min(m.cursor, max(len(quotes)-1, 0))
	m.refreshOptions()
	m.status = RemovedMessage
	m.showRandom()
}

// refreshOptions rebuilds the category selector, keeping the current
// selection if it still exists and falling back to all categories.
func (m *Model) refreshOptions() {
	current := domain.AllCategories
	if m.selected < len(m.options) {
		current = m.options[m.selected]
	}

	m.options = append([]string{domain.AllCategories}, m.store.Categories()...)
	m.selected = max(slices.Index(m.options, current), 0)
}

func (m *Model) showRandom() {
	q, err := m.store.PickRandom(m.ctx, m.options[m.selected])
	switch {
	case errors.Is(err, domain.ErrEmptyPool):
		m.quote, m.hasQuote = domain.Quote{}, false
	case err != nil:
		m.fail("pick quote", err)
	default:
		m.quote, m.hasQuote = q, true
	}
}

func (m *Model) closeForm() {
	m.mode = modeBrowse
	m.prompt = ""
	m.text.Blur()
	m.category.Blur()
	m.bare.Blur()
}

func (m *Model) fail(op string, err error) {
	m.err = fmt.Errorf("%s: %w", op, err)
	m.status = ""
	m.logger.ErrorContext(m.ctx, op+" failed", slog.Any("error", err))
}

// isReserved reports whether name would collide with the all-categories option.
func isReserved(name string) bool {
	return strings.TrimSpace(name) == domain.AllCategories
}

// validationPrompt turns a validation failure into an inline prompt.
func validationPrompt(err error) (string, bool) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return "", false
	}

	msg := strings.TrimSpace(ve.Message)
	if msg == "" {
		return "Please check the form.", true
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + ".", true
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Quotebook"))
	b.WriteString("  ")
	b.WriteString(filterStyle.Render("‹ " + optionLabel(m.options[m.selected]) + " ›"))
	b.WriteString("\n")

	b.WriteString(m.viewQuote())
	b.WriteString("\n")
	b.WriteString(m.viewList())

	switch m.mode {
	case modeAddQuote:
		b.WriteString("\n")
		b.WriteString(formStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			"Add a quote", m.text.View(), m.category.View())))
	case modeAddCategory:
		b.WriteString("\n")
		b.WriteString(formStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			"Add a category", m.bare.View())))
	}

	b.WriteString("\n")
	switch {
	case m.prompt != "":
		b.WriteString(promptStyle.Render(m.prompt))
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}

	b.WriteString("\n")
	if m.mode == modeBrowse {
		b.WriteString(m.help.View(m.keys))
	} else {
		b.WriteString(m.help.View(formKeys{m.keys}))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewQuote() string {
	boxWidth := max(m.width-4, 20)

	if !m.hasQuote {
		return quoteBoxStyle.Width(boxWidth).Render(emptyStyle.Render(EmptyPoolMessage))
	}

	return quoteBoxStyle.Width(boxWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
		quoteTextStyle.Render(`"`+m.quote.Text+`"`),
		categoryStyle.Render("Category: "+m.quote.Category),
	))
}

func (m Model) viewList() string {
	quotes := domain.Reversed(m.store.Snapshot())

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Quotes (%d)", len(quotes))))
	b.WriteString("\n")

	for i, q := range quotes {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("› ")
		}
		b.WriteString(marker)
		b.WriteString(q.Text)
		b.WriteString(" ")
		b.WriteString(categoryStyle.Render("(" + q.Category + ")"))
		b.WriteString("\n")
	}

	return b.String()
}

func optionLabel(option string) string {
	if domain.IsAllCategories(option) {
		return domain.AllCategoriesLabel
	}
	return option
}
