package httpserver

import (
	"net/http"

	"scp-gateway/internal/platform/config"
)

// New builds the gateway listener. Handlers are expected to finish within
// cfg.RequestTimeout, which must stay below WriteTimeout so the timeout
// response can still be written.
func New(addr string, cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
