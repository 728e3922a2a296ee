package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// HTTPClient queries a remote directory service:
//
//	GET <base>/customers/verify?email=<email>
//	200 {"customer_id": "...", "email": "...", "verified": true}
//	404 unknown email
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient overrides the underlying transport client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

// WithClientCredentials authenticates every call with an OAuth2
// client-credentials token fetched from tokenURL and cached until expiry.
func WithClientCredentials(clientID, clientSecret, tokenURL string, scopes ...string) HTTPOption {
	return func(h *HTTPClient) {
		if clientID == "" || tokenURL == "" {
			return
		}
		cfg := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		}
		timeout := h.client.Timeout
		h.client = cfg.Client(context.Background())
		h.client.Timeout = timeout
	}
}

// NewHTTPClient builds a directory client for baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPClient) VerifyCustomer(ctx context.Context, email string) (*Customer, error) {
	endpoint := h.baseURL + "/customers/verify?" + url.Values{"email": {email}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrCustomerNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var customer Customer
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&customer); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	if customer.ID == "" {
		return nil, fmt.Errorf("directory response missing customer_id")
	}
	return &customer, nil
}
