package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/fitcheck/internal/api/middleware"
	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps an error kind to its HTTP status. Upstream failures
// report only the top-level message, and errors without a kind become a
// bare 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{
		Error:     err.Error(),
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}
	status := http.StatusInternalServerError

	var de *domain.Error
	if errors.As(err, &de) {
		resp.Kind = string(de.Kind)
		status = statusForKind(de.Kind)
		if status >= 500 {
			resp.Error = de.Message
		}
	} else {
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput, domain.KindInvalidURL:
		return http.StatusBadRequest
	case domain.KindUnsupportedPlatform, domain.KindEmptyTranscript:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindPrivateOrUnavailable:
		return http.StatusForbidden
	case domain.KindSizeLimitExceeded:
		return http.StatusRequestEntityTooLarge
	case domain.KindAuthenticationFailed:
		return http.StatusBadGateway
	case domain.KindExtractionServiceUnavailable, domain.KindUnavailable, domain.KindRetrievalUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindTimeout, domain.KindPipelineTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a bounded JSON body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
