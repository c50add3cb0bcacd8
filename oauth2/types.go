package oauth2

// AuthorizationCode is the opaque, single-use credential issued by the
// authorization endpoint and exchanged for tokens at the token endpoint.
// Modelled as its own type so codes, client IDs and tokens cannot be
// accidentally swapped in call sites.
type AuthorizationCode string

func (c AuthorizationCode) String() string { return string(c) }

// ClientID identifies an OAuth2 client application.
type ClientID string

func (c ClientID) String() string { return string(c) }

// AccessToken is the opaque bearer credential issued at the end of a
// successful exchange. The token endpoint does not retain it.
type AccessToken string

func (t AccessToken) String() string { return string(t) }

// IDToken is a signed OpenID Connect identity assertion, issued alongside
// an access token only when the original authorization requested one.
type IDToken string

func (t IDToken) String() string { return string(t) }

// ResponseType represents the OAuth 2.0 response type bound to an
// authorization code at issuance time. The stored value - never the
// incoming token request - decides whether an ID token is due at exchange.
type ResponseType string

const (
	// CodeResponseType indicates the plain authorization code flow.
	// A successful exchange returns an access token only.
	CodeResponseType ResponseType = "code"

	// CodeIDTokenResponseType indicates the OpenID Connect hybrid-style
	// code flow. A successful exchange returns an access token and an
	// ID token minted for the same code.
	CodeIDTokenResponseType ResponseType = "code id_token"
)

// Valid reports whether rt is one of the supported response types.
func (rt ResponseType) Valid() bool {
	switch rt {
	case CodeResponseType, CodeIDTokenResponseType:
		return true
	}
	return false
}

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, client_secret, redirect_uri
	AuthorizationCodeGrant GrantType = "authorization_code"
)

// AccessTokenDetails is the success payload of a token exchange: the access
// token, plus an ID token iff the code was authorized with
// CodeIDTokenResponseType.
type AccessTokenDetails struct {
	AccessToken AccessToken
	IDToken     *IDToken
}
