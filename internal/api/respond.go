// internal/api/respond.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	custom_errors "dev-leaderboard/internal/errors"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

func respondWithErrorDetails(w http.ResponseWriter, code int, message, details string) {
	respondWithJSON(w, code, errorResponse{Error: message, Details: details})
}

// statusFor maps a domain error to the HTTP status reported to the caller.
func statusFor(err error) int {
	var (
		invalidUser *custom_errors.ErrInvalidUsername
		invalidRepo *custom_errors.ErrInvalidRepoFormat
	)
	switch {
	case errors.As(err, &invalidUser), errors.As(err, &invalidRepo):
		return http.StatusBadRequest
	case errors.Is(err, custom_errors.ErrNotFound), errors.Is(err, custom_errors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, custom_errors.ErrInsightsUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, custom_errors.ErrUpstreamUnavailable), errors.Is(err, custom_errors.ErrMalformedInsights):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWithDomainError writes message with the status for err. Internal
// failures are reported without details.
func respondWithDomainError(w http.ResponseWriter, err error, message string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		respondWithError(w, code, "Internal server error")
		return
	}
	respondWithErrorDetails(w, code, message, err.Error())
}
