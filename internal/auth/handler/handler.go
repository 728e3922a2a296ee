// Package handler exposes the magic-link authorization flow and the token
// endpoints over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scp-gateway/internal/auth/models"
	dErrors "scp-gateway/pkg/domain-errors"
	"scp-gateway/pkg/platform/httputil"
	"scp-gateway/pkg/requestcontext"
)

const maxBodyBytes = 64 << 10

// Service is the authorization orchestrator as seen by the transport.
type Service interface {
	Init(ctx context.Context, req *models.InitRequest) (*models.InitResult, error)
	Confirm(ctx context.Context, linkToken string) error
	Poll(ctx context.Context, requestID, clientID string) (*models.PollResult, error)
	Token(ctx context.Context, req *models.TokenRequest) (*models.TokenResult, error)
	Revoke(ctx context.Context, token string) (*models.RevokeResult, error)
}

// Handler serves /v1/authorize/*, /v1/token and /v1/revoke.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

// New creates an auth Handler.
func New(auth Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{auth: auth, logger: logger}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/authorize/init", h.handleInit)
	r.Get("/v1/authorize/poll", h.handlePoll)
	r.Get("/v1/authorize/confirm", h.handleConfirm)
	r.Post("/v1/token", h.handleToken)
	r.Post("/v1/revoke", h.handleRevoke)
}

// initBody accepts scopes either as an array or as a space-delimited "scope".
type initBody struct {
	models.InitRequest
	Scope string `json:"scope"`
}

func (h *Handler) handleInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body initBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		h.logger.WarnContext(ctx, "invalid init request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "invalid request body"))
		return
	}
	req := body.InitRequest
	if len(req.Scopes) == 0 && body.Scope != "" {
		req.Scopes = models.ParseScopeString(body.Scope)
	}

	res, err := h.auth.Init(ctx, &req)
	if err != nil {
		h.writeError(ctx, w, "init", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handlePoll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	requestID := strings.TrimSpace(q.Get("auth_request_id"))
	clientID := strings.TrimSpace(q.Get("client_id"))
	if requestID == "" || clientID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "auth_request_id and client_id are required"))
		return
	}

	res, err := h.auth.Poll(ctx, requestID, clientID)
	if err != nil {
		h.writeError(ctx, w, "poll", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type confirmResponse struct {
	Status  models.AuthorizationStatus `json:"status"`
	Message string                     `json:"message"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidOrExpiredLink, "link is invalid or has expired"))
		return
	}

	if err := h.auth.Confirm(ctx, token); err != nil {
		h.writeError(ctx, w, "confirm", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, confirmResponse{
		Status:  models.StatusAuthorized,
		Message: "Sign-in approved. You can return to the application.",
	})
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.TokenRequest
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "invalid form body"))
			return
		}
		req = models.TokenRequest{
			GrantType:    r.PostForm.Get("grant_type"),
			Code:         r.PostForm.Get("code"),
			CodeVerifier: r.PostForm.Get("code_verifier"),
			RefreshToken: r.PostForm.Get("refresh_token"),
			ClientID:     r.PostForm.Get("client_id"),
		}
	} else if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "invalid request body"))
		return
	}

	res, err := h.auth.Token(ctx, &req)
	if err != nil {
		h.writeError(ctx, w, "token", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type revokeBody struct {
	Token string `json:"token"`
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body revokeBody
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "invalid form body"))
			return
		}
		body.Token = r.PostForm.Get("token")
	} else if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "invalid request body"))
		return
	}

	res, err := h.auth.Revoke(ctx, body.Token)
	if err != nil {
		h.writeError(ctx, w, "revoke", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "auth request failed",
			"op", op,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}
