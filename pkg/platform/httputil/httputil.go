// Package httputil holds the JSON response helpers shared by every handler.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "scp-gateway/pkg/domain-errors"
)

// WriteJSON encodes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into an OAuth-style error body.
// Internal errors never carry a description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		if de, ok := dErrors.As(err); ok && de.Message != "" {
			body["error_description"] = de.Message
		}
	}
	WriteJSON(w, StatusFor(code), body)
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidRequest, dErrors.CodeInvalidInput,
		dErrors.CodeInvalidGrant, dErrors.CodeUnsupportedGrantType,
		dErrors.CodeInvalidOrExpiredLink, dErrors.CodeInvalidParams:
		return http.StatusBadRequest
	case dErrors.CodeInvalidClientID, dErrors.CodeUnauthorized, dErrors.CodeMalformedToken,
		dErrors.CodeInvalidSignature, dErrors.CodeTokenExpired:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeForbiddenScope:
		return http.StatusForbidden
	case dErrors.CodeCustomerNotFound, dErrors.CodeNotFound, dErrors.CodeMethodNotFound:
		return http.StatusNotFound
	case dErrors.CodeRequestExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
