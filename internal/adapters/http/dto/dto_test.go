package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testTraceID = "0102030405060708090a0b0c0d0e0f10"

// newTestContext returns a gin context whose request is request.
func newTestContext(request *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = request
	return c, w
}

func withTrace(req *http.Request) *http.Request {
	traceID, _ := trace.TraceIDFromHex(testTraceID)
	spanID, _ := trace.SpanIDFromHex("0102030405060708")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	return req.WithContext(trace.ContextWithSpanContext(req.Context(), sc))
}

func TestNewErrorResponse(t *testing.T) {
	got := NewErrorResponse(ErrorCodeNotFound, "quote not found")

	assert.Equal(t, &ErrorResponse{
		Error: ErrorDetail{Code: ErrorCodeNotFound, Message: "quote not found"},
	}, got)
}

func TestNewErrorResponseWithDetails(t *testing.T) {
	details := map[string]string{"text": "must be at most 1000 characters"}

	got := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", details)

	assert.Equal(t, ErrorCodeValidation, got.Error.Code)
	assert.Equal(t, details, got.Error.Details)
}

func TestWithTraceID(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeInternal, "boom")

	got := resp.WithTraceID("trace-123")

	assert.Same(t, resp, got)
	assert.Equal(t, "trace-123", got.TraceID)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{code: ErrorCodeNotFound, want: http.StatusNotFound},
		{code: ErrorCodeValidation, want: http.StatusBadRequest},
		{code: ErrorCodeBadRequest, want: http.StatusBadRequest},
		{code: ErrorCodeTooLarge, want: http.StatusRequestEntityTooLarge},
		{code: ErrorCodeUnavailable, want: http.StatusServiceUnavailable},
		{code: ErrorCodeTimeout, want: http.StatusGatewayTimeout},
		{code: ErrorCodeInternal, want: http.StatusInternalServerError},
		{code: "UNKNOWN_CODE", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:        "validation with field",
			err:         domain.NewValidationError("text", "must not be empty"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "validation failed for text: must not be empty",
			wantDetails: map[string]string{"text": "must not be empty"},
		},
		{
			name:        "wrapped validation",
			err:         fmt.Errorf("add quote: %w", domain.NewValidationError("", "bad")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "add quote: validation failed: bad",
		},
		{
			name:        "index out of range",
			err:         domain.NewIndexOutOfRangeError("remove quote", 7, 5),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeBadRequest,
			wantMessage: "remove quote: index 7 out of range [0, 5)",
		},
		{
			name:        "not found",
			err:         domain.NewNotFoundError("quote", "random"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: `quote with id "random" not found`,
		},
		{
			name:        "unreadable form",
			err:         fmt.Errorf("%w: %w", ErrBinding, errors.New("invalid URL escape \"%zz\"")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeBadRequest,
			wantMessage: "malformed request",
		},
		{
			name:        "oversized body",
			err:         fmt.Errorf("%w: %w", ErrBinding, &http.MaxBytesError{Limit: 1 << 20}),
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantCode:    ErrorCodeTooLarge,
			wantMessage: "request body too large",
		},
		{
			name:        "unavailable",
			err:         domain.NewUnavailableError("quote-service", "circuit breaker is open"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: `service "quote-service" unavailable: circuit breaker is open`,
		},
		{
			name:        "unknown error hides detail",
			err:         errors.New("disk on fire"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
		})
	}
}

func TestMapDomainError_Nil(t *testing.T) {
	status, resp := MapDomainError(nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestGetTraceID(t *testing.T) {
	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, GetTraceID(c))

	c, _ = newTestContext(withTrace(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, testTraceID, GetTraceID(c))
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "precondition", err: domain.NewIndexOutOfRangeError("remove quote", 9, 1), wantStatus: http.StatusBadRequest, wantCode: ErrorCodeBadRequest},
		{name: "unavailable", err: domain.NewUnavailableError("quote-service", ""), wantStatus: http.StatusServiceUnavailable, wantCode: ErrorCodeUnavailable},
		{name: "internal", err: errors.New("unexpected"), wantStatus: http.StatusInternalServerError, wantCode: ErrorCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(withTrace(httptest.NewRequest(http.MethodGet, "/", nil)))

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, testTraceID, resp.TraceID)
		})
	}
}

func TestRespondWithErrorCode(t *testing.T) {
	c, w := newTestContext(httptest.NewRequest(http.MethodPost, "/", nil))

	RespondWithErrorCode(c, ErrorCodeBadRequest, "malformed request")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":{"code":"BAD_REQUEST","message":"malformed request"}}`, w.Body.String())
}

func TestRespondWithValidationErrors(t *testing.T) {
	c, w := newTestContext(httptest.NewRequest(http.MethodPost, "/", nil))

	RespondWithValidationErrors(c, map[string]string{"category": "is reserved"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t,
		`{"error":{"code":"VALIDATION_ERROR","message":"request validation failed","details":{"category":"is reserved"}}}`,
		w.Body.String())
}

func TestAbortWithErrorCode(t *testing.T) {
	c, w := newTestContext(httptest.NewRequest(http.MethodGet, "/", nil))

	AbortWithErrorCode(c, ErrorCodeTimeout, "request timed out")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestValidator_Singleton(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}

func TestValidate_AddQuoteRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       AddQuoteRequest
		wantField string
		wantMsg   string
	}{
		{name: "valid", req: AddQuoteRequest{Text: "Be kind.", Category: "Life"}},
		{name: "empty fields left to the domain", req: AddQuoteRequest{}},
		{
			name:      "text too long",
			req:       AddQuoteRequest{Text: strings.Repeat("a", MaxTextLength+1)},
			wantField: "text",
			wantMsg:   "must be at most 1000 characters",
		},
		{
			name:      "category too long",
			req:       AddQuoteRequest{Text: "ok", Category: strings.Repeat("c", MaxCategoryLength+1)},
			wantField: "category",
			wantMsg:   "must be at most 100 characters",
		},
		{
			name:      "reserved category",
			req:       AddQuoteRequest{Text: "ok", Category: " all "},
			wantField: "category",
			wantMsg:   "is reserved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, map[string]string{tt.wantField: tt.wantMsg}, ValidationErrors(err))
		})
	}
}

func TestValidate_AddCategoryRequest(t *testing.T) {
	require.NoError(t, Validate(AddCategoryRequest{Name: "Stoicism"}))

	err := Validate(AddCategoryRequest{Name: domain.AllCategories})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"name": "is reserved"}, ValidationErrors(err))
}

func TestValidate_RemoveQuoteURI(t *testing.T) {
	require.NoError(t, Validate(RemoveQuoteURI{Index: 0}))

	err := Validate(RemoveQuoteURI{Index: -1})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"index": "must be greater than or equal to 0"}, ValidationErrors(err))
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantBinding bool
		wantValid   bool
	}{
		{name: "valid", body: `{"text":"Be kind.","category":"Life"}`, wantValid: true},
		{name: "malformed json", body: `{"text":`, wantBinding: true},
		{name: "wrong type", body: `{"text":42}`, wantBinding: true},
		{name: "reserved category", body: `{"text":"x","category":"all"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			c, _ := newTestContext(req)

			var got AddQuoteRequest
			err := BindAndValidate(c, &got)

			switch {
			case tt.wantValid:
				require.NoError(t, err)
				assert.Equal(t, AddQuoteRequest{Text: "Be kind.", Category: "Life"}, got)
			case tt.wantBinding:
				require.ErrorIs(t, err, ErrBinding)
				assert.False(t, IsValidationError(err))
			default:
				require.ErrorIs(t, err, ErrValidation)
				assert.True(t, IsValidationError(err))
			}
		})
	}
}

func TestBindQueryAndValidate(t *testing.T) {
	c, _ := newTestContext(httptest.NewRequest(http.MethodGet, "/?category=Wisdom", nil))

	var q RandomQuoteQuery
	require.NoError(t, BindQueryAndValidate(c, &q))
	assert.Equal(t, "Wisdom", q.Category)

	c, _ = newTestContext(httptest.NewRequest(http.MethodGet, "/?category="+strings.Repeat("x", 101), nil))
	err := BindQueryAndValidate(c, &q)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, ValidationErrors(err), "category")
}

func TestBindURIAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		index   string
		want    int
		wantErr error
	}{
		{name: "valid", index: "3", want: 3},
		{name: "not a number", index: "abc", wantErr: ErrBinding},
		{name: "negative", index: "-2", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(httptest.NewRequest(http.MethodDelete, "/quotes/"+tt.index, nil))
			c.Params = gin.Params{{Key: "index", Value: tt.index}}

			var uri RemoveQuoteURI
			err := BindURIAndValidate(c, &uri)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, uri.Index)
		})
	}
}

func TestValidationErrors_NonValidatorError(t *testing.T) {
	assert.Empty(t, ValidationErrors(errors.New("nope")))
	assert.False(t, IsValidationError(errors.New("nope")))
}

func TestMinMaxMessage(t *testing.T) {
	assert.Equal(t, "must be at least 3 characters", minMaxMessage("min", "3", reflect.String))
	assert.Equal(t, "must be at most 10 characters", minMaxMessage("max", "10", reflect.String))
	assert.Equal(t, "must be at least 1", minMaxMessage("min", "1", reflect.Int))
	assert.Equal(t, "must be at most 5", minMaxMessage("max", "5", reflect.Slice))
}

func TestValidationMessageUnknownTag(t *testing.T) {
	type sample struct {
		Email string `json:"email" validate:"email"`
	}

	err := Validate(sample{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"email": "failed validation: email"}, ValidationErrors(err))
}

func TestNewQuoteListResponse(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "first", Category: "A"},
		{Text: "second", Category: "B"},
	}

	got := NewQuoteListResponse(quotes)

	assert.Equal(t, 2, got.Count)
	assert.Equal(t, []QuoteResponse{{Text: "first", Category: "A"}, {Text: "second", Category: "B"}}, got.Quotes)

	empty := NewQuoteListResponse(nil)
	assert.NotNil(t, empty.Quotes)
	assert.Zero(t, empty.Count)

	raw, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"quotes":[],"count":0}`, string(raw))
}

func TestRandomQuoteResponse_OmitsEmpty(t *testing.T) {
	raw, err := json.Marshal(RandomQuoteResponse{Message: "No quotes in this category."})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"No quotes in this category."}`, string(raw))

	q := NewQuoteResponse(domain.Quote{Text: "t", Category: "c"})
	raw, err = json.Marshal(RandomQuoteResponse{Quote: &q})
	require.NoError(t, err)
	assert.JSONEq(t, `{"quote":{"text":"t","category":"c"}}`, string(raw))
}
