// Package authrequest persists pending authorization requests and their
// single-use magic-link tokens in the transient store.
//
// Error Contract:
//   - Return sentinel.ErrNotFound when the key does not exist, has expired, or
//     (for magic links) was already consumed
//   - Return wrapped errors with context for infrastructure failures
package authrequest

import (
	"encoding/json"
	"fmt"

	"scp-gateway/internal/auth/models"
)

const (
	requestKeyPrefix   = "scp:authreq:"
	magicLinkKeyPrefix = "scp:magic:"
)

func requestKey(id string) string {
	return requestKeyPrefix + id
}

func magicLinkKey(token string) string {
	return magicLinkKeyPrefix + token
}

func encode(req *models.AuthorizationRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal authorization request: %w", err)
	}
	return payload, nil
}

func decode(payload []byte) (*models.AuthorizationRequest, error) {
	var req models.AuthorizationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode authorization request: %w", err)
	}
	return &req, nil
}
