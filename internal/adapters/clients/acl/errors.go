package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/domain"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 4 << 10

// ErrorResponse is the error body of a quote API. Quotable answers with
// statusCode/statusMessage; other APIs use a flat or nested message.
type ErrorResponse struct {
	StatusMessage string `json:"statusMessage,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GetMessage returns the first non-empty message field.
func (e *ErrorResponse) GetMessage() string {
	switch {
	case e.StatusMessage != "":
		return e.StatusMessage
	case e.Message != "":
		return e.Message
	default:
		return e.Error.Message
	}
}

// ParseErrorResponse decodes an error body. It returns nil when the body
// is empty, not JSON, or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}
	if errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError turns a failed call into a domain error. Every upstream
// failure the widget can see is an UnavailableError except 404, which
// becomes a NotFoundError for operation.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	message := fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	if errResp := ParseErrorResponse(resp.Body); errResp != nil {
		message = errResp.GetMessage()
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, operation)
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")
	default:
		return domain.NewUnavailableError(serviceName, message)
	}
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, "circuit breaker open during "+operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName, "max retries exceeded during "+operation)
	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}
