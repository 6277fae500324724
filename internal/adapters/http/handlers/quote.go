package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
)

// QuoteHandler serves the JSON API over the quote store.
type QuoteHandler struct {
	store    *app.QuoteStore
	importer *app.Importer
}

// NewQuoteHandler creates a quote handler. importer may be nil, in which
// case the import route is not registered.
func NewQuoteHandler(store *app.QuoteStore, importer *app.Importer) *QuoteHandler {
	return &QuoteHandler{
		store:    store,
		importer: importer,
	}
}

// ListQuotes handles GET /api/v1/quotes.
// Quotes are returned in insertion order; clients reverse for display.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewQuoteListResponse(h.store.Snapshot()))
}

// AddQuote handles POST /api/v1/quotes.
//
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.AddQuoteRequest true "Quote"
// @Success 201 {object} dto.AddQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.AddQuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.store.Add(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AddQuoteResponse{
		Quote:    dto.NewQuoteResponse(result.Quote),
		Category: result.Category,
		Count:    len(result.Quotes),
	})
}

// RemoveQuote handles DELETE /api/v1/quotes/:index.
// index is the insertion-order position.
func (h *QuoteHandler) RemoveQuote(c *gin.Context) {
	var uri dto.RemoveQuoteURI
	if err := dto.BindURIAndValidate(c, &uri); err != nil {
		respondBindError(c, err)
		return
	}

	quotes, err := h.store.Remove(c.Request.Context(), uri.Index)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteListResponse(quotes))
}

// RandomQuote handles GET /api/v1/quotes/random?category=.
// An empty pool is not an error: it answers 200 with a message.
//
// @Summary Pick a random quote
// @Tags quotes
// @Produce json
// @Param category query string false "Category filter, \"all\" for none"
// @Success 200 {object} dto.RandomQuoteResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) RandomQuote(c *gin.Context) {
	var query dto.RandomQuoteQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		respondBindError(c, err)
		return
	}

	q, err := h.store.PickRandom(c.Request.Context(), query.Category)
	switch {
	case errors.Is(err, domain.ErrEmptyPool):
		c.JSON(http.StatusOK, dto.RandomQuoteResponse{Message: EmptyPoolMessage})
		return
	case err != nil:
		dto.HandleError(c, err)
		return
	}

	resp := dto.NewQuoteResponse(q)
	c.JSON(http.StatusOK, dto.RandomQuoteResponse{Quote: &resp})
}

// ListCategories handles GET /api/v1/categories.
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: h.store.Categories()})
}

// AddCategory handles POST /api/v1/categories.
func (h *QuoteHandler) AddCategory(c *gin.Context) {
	var req dto.AddCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	categories, err := h.store.AddCategoryOnly(c.Request.Context(), req.Name)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CategoriesResponse{Categories: categories})
}

// ImportQuote handles POST /api/v1/quotes/import, adding one quote from
// the remote quote service.
func (h *QuoteHandler) ImportQuote(c *gin.Context) {
	result, err := h.importer.Import(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AddQuoteResponse{
		Quote:    dto.NewQuoteResponse(result.Quote),
		Category: result.Category,
		Count:    len(result.Quotes),
	})
}

// RegisterQuoteRoutes registers the API routes on rg.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/random", h.RandomQuote)
	quotes.DELETE("/:index", h.RemoveQuote)
	if h.importer != nil {
		quotes.POST("/import", h.ImportQuote)
	}

	categories := rg.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.POST("", h.AddCategory)
}

func bindJSON(c *gin.Context, v any) bool {
	if err := dto.BindAndValidate(c, v); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	if dto.IsValidationError(err) {
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}
	dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "malformed request")
}
