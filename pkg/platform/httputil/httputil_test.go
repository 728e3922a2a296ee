package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "scp-gateway/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		code        string
		description string
	}{
		{
			name:   "internal detail is withheld",
			err:    dErrors.New(dErrors.CodeInternal, "pq: relation missing"),
			status: http.StatusInternalServerError,
			code:   "internal_error",
		},
		{
			name:        "invalid grant carries its description",
			err:         dErrors.New(dErrors.CodeInvalidGrant, "code already used"),
			status:      http.StatusBadRequest,
			code:        "invalid_grant",
			description: "code already used",
		},
		{
			name:        "expired request is gone",
			err:         dErrors.New(dErrors.CodeRequestExpired, "authorization request expired"),
			status:      http.StatusGone,
			code:        "request_expired",
			description: "authorization request expired",
		},
		{
			name:   "untagged error is internal",
			err:    errors.New("connection refused"),
			status: http.StatusInternalServerError,
			code:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.code, body["error"])
			desc, ok := body["error_description"]
			if tt.description == "" {
				assert.False(t, ok, "unexpected error_description %q", desc)
				return
			}
			assert.Equal(t, tt.description, desc)
		})
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeInvalidOrExpiredLink: http.StatusBadRequest,
		dErrors.CodeTokenExpired:         http.StatusUnauthorized,
		dErrors.CodeForbiddenScope:       http.StatusForbidden,
		dErrors.CodeCustomerNotFound:     http.StatusNotFound,
		dErrors.Code("something_else"):   http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), code)
	}
}
