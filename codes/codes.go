package codes

import (
	"context"
	"errors"
	"time"

	"github.com/jrsteele09/go-token-exchange/oauth2"
)

// ConsumedErr is returned by Store.Redeem for a code it cannot claim:
// unknown, already redeemed, or evicted. Callers must not distinguish the
// three - doing so would leak whether a guessed code ever existed.
var ConsumedErr = errors.New("authorization code unknown or already redeemed")

// Details is the record bound to an authorization code when the
// authorization endpoint issues it. It is immutable once created; the Store
// owns its lifecycle (created at authorization time, claimed exactly once at
// exchange time).
type Details struct {
	// ClientID is the client that initiated the authorization.
	ClientID oauth2.ClientID `json:"client_id"`

	// RedirectURI is the callback URI used at authorization time. The token
	// request must present the exact same value.
	RedirectURI string `json:"redirect_uri"`

	// ExpiresAt is the absolute expiry of the code.
	ExpiresAt time.Time `json:"expires_at"`

	// ResponseType decides whether an ID token is due at exchange time.
	ResponseType oauth2.ResponseType `json:"response_type"`

	// Subject is the user who authorized the request. Becomes the "sub"
	// claim of issued tokens.
	Subject string `json:"subject,omitempty"`

	// Scope holds the authorized scopes, space separated.
	Scope string `json:"scope,omitempty"`

	// Nonce is the OIDC nonce from the authorization request, echoed into
	// the ID token when present.
	Nonce string `json:"nonce,omitempty"`
}

// Store resolves authorization codes to the details of the original
// authorization request. Implementations must be safe under concurrent
// access and must treat redemption as a single atomic claim: for any code,
// at most one Redeem call across all processes ever returns the details.
type Store interface {
	// Issue binds details to a code. Called by the authorization endpoint.
	Issue(ctx context.Context, code oauth2.AuthorizationCode, details *Details) error

	// Redeem atomically claims the code and returns its details. Every call
	// consumes the code, whether or not the caller's subsequent validation
	// succeeds. Returns ConsumedErr if the code cannot be claimed.
	Redeem(ctx context.Context, code oauth2.AuthorizationCode) (*Details, error)
}
