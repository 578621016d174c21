package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed upstream call.
type ErrorKind string

const (
	// KindHTTPStatus means PokeAPI answered with a well-formed non-2xx response.
	KindHTTPStatus ErrorKind = "http_status"

	// KindUnreachable means the request never produced a response
	// (dial, DNS, timeout, connection reset, truncated body).
	KindUnreachable ErrorKind = "unreachable"

	// KindUnexpected covers everything else, including payloads that do not
	// match the expected resource shape.
	KindUnexpected ErrorKind = "unexpected"
)

// Messages surfaced to API consumers, one per kind.
const (
	MessageHTTPStatus  = "Error from external Pokémon API"
	MessageUnreachable = "Pokémon API is not reachable"
	MessageUnexpected  = "Unexpected error while fetching Pokémon data"
)

// UpstreamError is returned for every failed PokeAPI call.
type UpstreamError struct {
	Kind       ErrorKind
	StatusCode int
	Path       string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pokeapi %s error (status %d) %s: %s: %v",
			e.Kind, e.HTTPStatus(), e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("pokeapi %s error (status %d) %s: %s",
		e.Kind, e.HTTPStatus(), e.Path, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code to surface to our own callers:
// the upstream status when known, 504 when PokeAPI was unreachable and
// 500 otherwise.
func (e *UpstreamError) HTTPStatus() int {
	switch e.Kind {
	case KindHTTPStatus:
		return e.StatusCode
	case KindUnreachable:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message for the error kind.
// Message and Err stay internal; they only appear in Error() and logs.
func (e *UpstreamError) PublicMessage() string {
	switch e.Kind {
	case KindHTTPStatus:
		return MessageHTTPStatus
	case KindUnreachable:
		return MessageUnreachable
	default:
		return MessageUnexpected
	}
}

// Unexpected wraps err as a KindUnexpected error for path. Shaping code uses
// it when an upstream payload cannot be decoded or is missing required fields.
func Unexpected(path string, err error) *UpstreamError {
	return &UpstreamError{
		Kind:    KindUnexpected,
		Path:    path,
		Message: "unexpected error while fetching pokemon data",
		Err:     err,
	}
}

// AsUpstreamError reports whether err carries an *UpstreamError.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	upstreamErr, ok := AsUpstreamError(err)
	return ok && upstreamErr.Kind == KindHTTPStatus && upstreamErr.StatusCode == http.StatusNotFound
}
