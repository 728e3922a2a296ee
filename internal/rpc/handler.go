package rpc

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	jwttoken "scp-gateway/internal/jwt_token"
	dErrors "scp-gateway/pkg/domain-errors"
	"scp-gateway/pkg/requestcontext"
)

const maxBodyBytes = 1 << 20

// TokenValidator verifies bearer access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwttoken.AccessTokenClaims, error)
}

// Handler exposes the dispatcher over HTTP.
type Handler struct {
	dispatcher *Dispatcher
	tokens     TokenValidator
	logger     *slog.Logger
}

// NewHandler constructs the RPC HTTP handler.
func NewHandler(dispatcher *Dispatcher, tokens TokenValidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dispatcher: dispatcher, tokens: tokens, logger: logger}
}

// Register mounts POST /v1/rpc.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/rpc", h.handleRPC)
}

func (h *Handler) handleRPC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, failure(nil, &ErrorObject{Code: CodeParseError, Message: "parse_error"}))
		return
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.WarnContext(ctx, "malformed rpc body",
			"error", err,
			"request_id", requestID,
		)
		writeEnvelope(w, http.StatusBadRequest, failure(nil, &ErrorObject{Code: CodeParseError, Message: "parse_error"}))
		return
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		h.logger.WarnContext(ctx, "unauthorized rpc call - missing token",
			"request_id", requestID,
		)
		writeEnvelope(w, http.StatusUnauthorized, failure(req.ID, errorObject(dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))))
		return
	}
	claims, err := h.tokens.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		h.logger.WarnContext(ctx, "unauthorized rpc call - invalid token",
			"error", err,
			"request_id", requestID,
		)
		writeEnvelope(w, http.StatusUnauthorized, failure(req.ID, errorObject(dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid bearer token"))))
		return
	}

	grant := Grant{
		CustomerID: claims.CustomerID(),
		ClientID:   claims.ClientID,
		Scopes:     claims.Scopes,
	}
	ctx = requestcontext.WithCustomerID(ctx, grant.CustomerID)
	ctx = requestcontext.WithClientID(ctx, grant.ClientID)
	ctx = requestcontext.WithScopes(ctx, grant.Scopes)

	writeEnvelope(w, http.StatusOK, h.dispatcher.Dispatch(ctx, grant, req))
}

func writeEnvelope(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
