package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/Sternrassler/pokedex-proxy/pkg/auth"
	"github.com/Sternrassler/pokedex-proxy/pkg/client"
	"github.com/Sternrassler/pokedex-proxy/pkg/favorites"
	"github.com/Sternrassler/pokedex-proxy/pkg/pokemon"
	"github.com/Sternrassler/pokedex-proxy/pkg/user"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeUpstreamError       = "UPSTREAM_ERROR"
	CodeUpstreamUnreachable = "UPSTREAM_UNREACHABLE"
	CodeEvolutionNotFound   = "EVOLUTION_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeInvalidPokemon      = "INVALID_POKEMON"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Path       string `json:"path,omitempty"`
}

// errorFor maps a service error to its HTTP representation.
func errorFor(err error) ErrorResponse {
	if upstreamErr, ok := client.AsUpstreamError(err); ok {
		code := CodeUpstreamError
		switch upstreamErr.Kind {
		case client.KindUnreachable:
			code = CodeUpstreamUnreachable
		case client.KindUnexpected:
			code = CodeInternal
		}
		return ErrorResponse{
			StatusCode: upstreamErr.HTTPStatus(),
			Code:       code,
			Message:    upstreamErr.PublicMessage(),
			Path:       upstreamErr.Path,
		}
	}

	switch {
	case errors.Is(err, pokemon.ErrEvolutionNotFound):
		return ErrorResponse{StatusCode: http.StatusNotFound, Code: CodeEvolutionNotFound, Message: pokemon.ErrEvolutionNotFound.Error()}
	case errors.Is(err, user.ErrUserNotFound):
		return ErrorResponse{StatusCode: http.StatusNotFound, Code: CodeUserNotFound, Message: user.ErrUserNotFound.Error()}
	case errors.Is(err, user.ErrEmailTaken):
		return ErrorResponse{StatusCode: http.StatusConflict, Code: CodeEmailTaken, Message: user.ErrEmailTaken.Error()}
	case errors.Is(err, favorites.ErrInvalidPokemon):
		return ErrorResponse{StatusCode: http.StatusNotFound, Code: CodeInvalidPokemon, Message: err.Error()}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ErrorResponse{StatusCode: http.StatusUnauthorized, Code: CodeInvalidCredentials, Message: auth.ErrInvalidCredentials.Error()}
	case errors.Is(err, auth.ErrUnauthorized):
		return ErrorResponse{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: auth.ErrUnauthorized.Error()}
	}

	var verr *validationError
	if errors.As(err, &verr) {
		return ErrorResponse{StatusCode: http.StatusBadRequest, Code: CodeValidation, Message: verr.Error()}
	}

	return ErrorResponse{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error"}
}

// writeError renders err. Server-side failures are logged with the request
// logger; client errors are left to the access log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorFor(err)
	if resp.StatusCode >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("code", resp.Code).Msg("Request failed")
	}
	writeJSON(w, resp.StatusCode, resp)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Message:    "route not found",
		Path:       r.URL.Path,
	})
}
