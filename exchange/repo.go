package exchange

import (
	"context"

	"github.com/jrsteele09/go-token-exchange/clients"
	"github.com/jrsteele09/go-token-exchange/codes"
	"github.com/jrsteele09/go-token-exchange/oauth2"
)

// Repos holds the repository dependencies of the exchange Service.
type Repos struct {
	Codes   codes.Store  // Resolves and consumes authorization codes
	Clients clients.Repo // Registered client lookup for client authentication
}

// AccessTokenIssuer mints a fresh access token bound to a redeemed
// authorization code. Issuer failures (e.g. signing key or storage
// unavailable) propagate out of Exchange as-is.
type AccessTokenIssuer interface {
	Create(ctx context.Context, code oauth2.AuthorizationCode, details *codes.Details) (oauth2.AccessToken, error)
}

// IDTokenIssuer mints an OpenID Connect ID token for the same code. Only
// invoked when the stored response type requires one.
type IDTokenIssuer interface {
	CreateForAccessToken(ctx context.Context, code oauth2.AuthorizationCode, details *codes.Details) (oauth2.IDToken, error)
}
