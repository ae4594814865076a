package domain

import "errors"

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	KindInvalidInput                 ErrorKind = "invalid_input"
	KindInvalidURL                   ErrorKind = "invalid_url"
	KindUnsupportedPlatform          ErrorKind = "unsupported_platform"
	KindPrivateOrUnavailable         ErrorKind = "private_or_unavailable"
	KindNotFound                     ErrorKind = "not_found"
	KindSizeLimitExceeded            ErrorKind = "size_limit_exceeded"
	KindEmptyTranscript              ErrorKind = "empty_transcript"
	KindExtractionServiceUnavailable ErrorKind = "extraction_service_unavailable"
	KindAuthenticationFailed         ErrorKind = "authentication_failed"
	KindUnavailable                  ErrorKind = "unavailable"
	KindTimeout                      ErrorKind = "timeout"
	KindRetrievalUnavailable         ErrorKind = "retrieval_unavailable"
	KindPipelineTimeout              ErrorKind = "pipeline_timeout"
)

// Error carries a kind, a human-readable message and an optional cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the outermost kind in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Sentinels for errors.Is.
var (
	ErrInvalidInput                 = &Error{Kind: KindInvalidInput}
	ErrInvalidURL                   = &Error{Kind: KindInvalidURL}
	ErrUnsupportedPlatform          = &Error{Kind: KindUnsupportedPlatform}
	ErrPrivateOrUnavailable         = &Error{Kind: KindPrivateOrUnavailable}
	ErrNotFound                     = &Error{Kind: KindNotFound}
	ErrSizeLimitExceeded            = &Error{Kind: KindSizeLimitExceeded}
	ErrEmptyTranscript              = &Error{Kind: KindEmptyTranscript}
	ErrExtractionServiceUnavailable = &Error{Kind: KindExtractionServiceUnavailable}
	ErrAuthenticationFailed         = &Error{Kind: KindAuthenticationFailed}
	ErrUnavailable                  = &Error{Kind: KindUnavailable}
	ErrTimeout                      = &Error{Kind: KindTimeout}
	ErrRetrievalUnavailable         = &Error{Kind: KindRetrievalUnavailable}
	ErrPipelineTimeout              = &Error{Kind: KindPipelineTimeout}
)
