package handlers

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// EmptyPoolMessage is shown instead of a quote when the filter matches nothing.
const EmptyPoolMessage = "No quotes in this category."

// AddedFlash confirms a successful add after the redirect.
const AddedFlash = "New quote added successfully!"

const (
	pageTemplate = "index.html.tmpl"

	paramCategory = "category"
	paramSelected = "selected"
	paramShow     = "show"
	paramFlash    = "flash"

	flashAdded    = "added"
	flashImported = "imported"
)

//go:embed web/templates/*.tmpl web/static/*
var webFS embed.FS

// ViewHandler renders the widget as a server-side HTML page. Every form
// posts, mutates the store, and redirects back to GET / with the
// selected category in the query string.
type ViewHandler struct {
	store    *app.QuoteStore
	importer *app.Importer
	tmpl     *template.Template
	static   fs.FS
}

// NewViewHandler parses the embedded templates. importer may be nil.
func NewViewHandler(store *app.QuoteStore, importer *app.Importer) *ViewHandler {
	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic("ViewHandler: " + err.Error())
	}

	return &ViewHandler{
		store:    store,
		importer: importer,
		tmpl:     template.Must(template.New("").ParseFS(webFS, "web/templates/*.tmpl")),
		static:   static,
	}
}

type categoryOption struct {
	Value    string
	Label    string
	Selected bool
}

type listedQuote struct {
	Display  int
	Text     string
	Category string
}

// page is the template model. Prompt and Focus describe an inline
// validation message and which input gets autofocus.
type page struct {
	Selected      string
	Options       []categoryOption
	Quote         *domain.Quote
	Empty         string
	Quotes        []listedQuote
	Flash         string
	Prompt        string
	Focus         string
	Draft         dto.AddQuoteRequest
	CategoryDraft string
	ImportEnabled bool
}

// Index handles GET /.
func (h *ViewHandler) Index(c *gin.Context) {
	p := h.newPage(c.Query(paramCategory))

	if show, err := strconv.Atoi(c.Query(paramShow)); err == nil {
		h.displayAt(&p, show)
	}
	if p.Quote == nil {
		h.displayRandom(c, &p)
	}

	switch c.Query(paramFlash) {
	case flashAdded:
		p.Flash = AddedFlash
	case flashImported:
		p.Flash = "Imported a quote from the quote service."
	}

	h.render(c, http.StatusOK, p)
}

// SubmitQuote handles POST /quotes.
func (h *ViewHandler) SubmitQuote(c *gin.Context) {
	// Bind before any PostForm read: gin's form cache parses the body
	// first and drops the error. Missing fields bind as empty strings and
	// fail the store's rules.
	var form dto.AddQuoteRequest
	bindErr := dto.BindForm(c, &form)
	selected := c.PostForm(paramSelected)
	if bindErr != nil {
		h.fail(c, selected, bindErr)
		return
	}
	if err := dto.Validate(&form); err != nil {
		h.rejectQuote(c, selected, form, promptFromFields(dto.ValidationErrors(err)))
		return
	}

	result, err := h.store.Add(c.Request.Context(), form.Text, form.Category)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			h.rejectQuote(c, selected, form, sentence(validationErr.Message))
			return
		}
		h.fail(c, selected, err)
		return
	}

	c.Redirect(http.StatusSeeOther, indexURL(selected, url.Values{
		paramShow:  {strconv.Itoa(len(result.Quotes) - 1)},
		paramFlash: {flashAdded},
	}))
}

// SubmitCategory handles POST /categories.
func (h *ViewHandler) SubmitCategory(c *gin.Context) {
	var form dto.AddCategoryRequest
	bindErr := dto.BindForm(c, &form)
	selected := c.PostForm(paramSelected)
	if bindErr != nil {
		h.fail(c, selected, bindErr)
		return
	}
	if err := dto.Validate(&form); err != nil {
		h.rejectCategory(c, selected, form.Name, promptFromFields(dto.ValidationErrors(err)))
		return
	}

	if _, err := h.store.AddCategoryOnly(c.Request.Context(), form.Name); err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			h.rejectCategory(c, selected, form.Name, sentence(validationErr.Message))
			return
		}
		h.fail(c, selected, err)
		return
	}

	c.Redirect(http.StatusSeeOther, indexURL(selected, nil))
}

// RemoveQuote handles POST /quotes/:display/remove. display is the
// position in the recent-first list.
func (h *ViewHandler) RemoveQuote(c *gin.Context) {
	selected := c.PostForm(paramSelected)

	display, err := strconv.Atoi(c.Param("display"))
	if err != nil {
		display = -1
	}

	if _, err := h.store.RemoveDisplayed(c.Request.Context(), display); err != nil {
		h.fail(c, selected, err)
		return
	}

	c.Redirect(http.StatusSeeOther, indexURL(selected, nil))
}

// ImportQuote handles POST /quotes/import.
func (h *ViewHandler) ImportQuote(c *gin.Context) {
	selected := c.PostForm(paramSelected)

	result, err := h.importer.Import(c.Request.Context())
	if err != nil {
		h.fail(c, selected, err)
		return
	}

	c.Redirect(http.StatusSeeOther, indexURL(selected, url.Values{
		paramShow:  {strconv.Itoa(len(result.Quotes) - 1)},
		paramFlash: {flashImported},
	}))
}

// RegisterViewRoutes registers the page, its form targets and the static script.
func (h *ViewHandler) RegisterViewRoutes(rg gin.IRoutes) {
	rg.GET("/", h.Index)
	rg.POST("/quotes", h.SubmitQuote)
	rg.POST("/categories", h.SubmitCategory)
	rg.POST("/quotes/:display/remove", h.RemoveQuote)
	if h.importer != nil {
		rg.POST("/quotes/import", h.ImportQuote)
	}
	rg.StaticFS("/static", http.FS(h.static))
}

// newPage builds the selector and list. A selected category that no
// longer exists falls back to all categories.
func (h *ViewHandler) newPage(selected string) page {
	categories := h.store.Categories()
	if !slices.Contains(categories, selected) {
		selected = domain.AllCategories
	}

	options := make([]categoryOption, 0, len(categories)+1)
	options = append(options, categoryOption{
		Value:    domain.AllCategories,
		Label:    domain.AllCategoriesLabel,
		Selected: selected == domain.AllCategories,
	})
	for _, name := range categories {
		options = append(options, categoryOption{Value: name, Label: name, Selected: name == selected})
	}

	recent := domain.Reversed(h.store.Snapshot())
	listed := make([]listedQuote, len(recent))
	for i, q := range recent {
		listed[i] = listedQuote{Display: i, Text: q.Text, Category: q.Category}
	}

	return page{
		Selected:      selected,
		Options:       options,
		Quotes:        listed,
		ImportEnabled: h.importer != nil,
	}
}

// displayAt shows the quote at insertion index i when it is in the
// current filter.
func (h *ViewHandler) displayAt(p *page, i int) {
	quotes := h.store.Snapshot()
	if i < 0 || i >= len(quotes) {
		return
	}

	q := quotes[i]
	if domain.IsAllCategories(p.Selected) || q.Category == p.Selected {
		p.Quote = &q
	}
}

func (h *ViewHandler) displayRandom(c *gin.Context, p *page) {
	q, err := h.store.PickRandom(c.Request.Context(), p.Selected)
	if err != nil {
		p.Empty = EmptyPoolMessage
		return
	}
	p.Quote = &q
}

func (h *ViewHandler) rejectQuote(c *gin.Context, selected string, form dto.AddQuoteRequest, prompt string) {
	p := h.newPage(selected)
	h.displayRandom(c, &p)
	p.Prompt = prompt
	p.Focus = "text"
	p.Draft = form

	h.render(c, http.StatusUnprocessableEntity, p)
}

func (h *ViewHandler) rejectCategory(c *gin.Context, selected, name, prompt string) {
	p := h.newPage(selected)
	h.displayRandom(c, &p)
	p.Prompt = prompt
	p.Focus = "category-only"
	p.CategoryDraft = name

	h.render(c, http.StatusUnprocessableEntity, p)
}

// fail re-renders the page with the error as the prompt, using the API's
// status mapping. Internal errors are logged and shown generically.
func (h *ViewHandler) fail(c *gin.Context, selected string, err error) {
	ctx := c.Request.Context()
	status, resp := dto.MapDomainError(err)
	switch {
	case status == http.StatusInternalServerError:
		logging.FromContext(ctx).ErrorContext(ctx, "view action failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	case errors.Is(err, dto.ErrBinding):
		logging.FromContext(ctx).DebugContext(ctx, "form rejected",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}

	p := h.newPage(selected)
	h.displayRandom(c, &p)
	p.Prompt = sentence(resp.Error.Message)

	h.render(c, status, p)
}

func (h *ViewHandler) render(c *gin.Context, status int, p page) {
	c.Render(status, render.HTML{Template: h.tmpl, Name: pageTemplate, Data: p})
}

func indexURL(selected string, extra url.Values) string {
	q := url.Values{}
	if selected != "" && selected != domain.AllCategories {
		q.Set(paramCategory, selected)
	}
	for k, vs := range extra {
		q[k] = vs
	}

	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

// promptFromFields turns validator output into one sentence, picking the
// first field alphabetically so the prompt is stable.
func promptFromFields(fields map[string]string) string {
	if len(fields) == 0 {
		return "Please check the form."
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	return sentence(names[0] + " " + fields[names[0]])
}

// sentence capitalizes s and ends it with a period.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
