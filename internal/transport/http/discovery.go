package httptransport

import (
	"net/http"

	"scp-gateway/internal/auth/models"
	"scp-gateway/pkg/platform/httputil"
)

// Discovery builds the capabilities descriptor.
type Discovery struct {
	Issuer  string
	BaseURL string
	// RPCMethods maps each RPC method to its required scope.
	RPCMethods map[string]string
}

// Descriptor is served at /.well-known/scp-configuration.
type Descriptor struct {
	Issuer                        string            `json:"issuer"`
	ScopesSupported               []string          `json:"scopes_supported"`
	GrantTypesSupported           []string          `json:"grant_types_supported"`
	CodeChallengeMethodsSupported []string          `json:"code_challenge_methods_supported"`
	Endpoints                     Endpoints         `json:"endpoints"`
	RPCMethods                    map[string]string `json:"rpc_methods"`
}

// Endpoints lists absolute URLs of the public routes.
type Endpoints struct {
	AuthorizeInit    string `json:"authorize_init"`
	AuthorizePoll    string `json:"authorize_poll"`
	AuthorizeConfirm string `json:"authorize_confirm"`
	Token            string `json:"token"`
	Revoke           string `json:"revoke"`
	RPC              string `json:"rpc"`
}

// Describe returns the descriptor.
func (d Discovery) Describe() Descriptor {
	methods := d.RPCMethods
	if methods == nil {
		methods = map[string]string{}
	}
	return Descriptor{
		Issuer:          d.Issuer,
		ScopesSupported: models.SupportedScopeStrings(),
		GrantTypesSupported: []string{
			string(models.GrantAuthorizationCode),
			string(models.GrantRefreshToken),
		},
		CodeChallengeMethodsSupported: []string{models.CodeChallengeMethodS256},
		Endpoints: Endpoints{
			AuthorizeInit:    d.BaseURL + "/v1/authorize/init",
			AuthorizePoll:    d.BaseURL + "/v1/authorize/poll",
			AuthorizeConfirm: d.BaseURL + "/v1/authorize/confirm",
			Token:            d.BaseURL + "/v1/token",
			Revoke:           d.BaseURL + "/v1/revoke",
			RPC:              d.BaseURL + "/v1/rpc",
		},
		RPCMethods: methods,
	}
}

func (d Discovery) handle(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, d.Describe())
}
