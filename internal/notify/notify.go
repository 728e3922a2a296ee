// Package notify delivers magic links to customers.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// MagicLinkMessage is everything a sender needs to render the email.
type MagicLinkMessage struct {
	Email         string
	ClientName    string
	Scopes        []string
	URL           string
	AuthRequestID string
	ExpiresAt     time.Time
}

// Notifier sends magic links. Retry policy belongs to implementations.
type Notifier interface {
	SendMagicLink(ctx context.Context, msg MagicLinkMessage) error
}

// LogNotifier writes the link to the log instead of sending mail. For
// development only: the URL is a bearer credential.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendMagicLink(ctx context.Context, msg MagicLinkMessage) error {
	n.logger.InfoContext(ctx, "magic link issued",
		"auth_request_id", msg.AuthRequestID,
		"client_name", msg.ClientName,
		"scopes", msg.Scopes,
		"expires_at", msg.ExpiresAt,
		"url", msg.URL,
	)
	return nil
}
