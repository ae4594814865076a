package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// statusError is a non-2xx reply from a raw-HTTP provider.
type statusError struct {
	Provider   string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// httpStatus extracts the HTTP status carried by err, if any.
func httpStatus(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Classify wraps a provider failure in the completion error kinds callers
// branch on: AuthenticationFailed, Timeout or Unavailable.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	switch status := httpStatus(err); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewError(domain.KindAuthenticationFailed, provider+" rejected the API key", err)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return domain.NewError(domain.KindTimeout, provider+" request timed out", err)
	}
	if isTimeout(err) {
		return domain.NewError(domain.KindTimeout, provider+" request timed out", err)
	}
	return domain.NewError(domain.KindUnavailable, provider+" completion failed", err)
}
