package oauth2

// TokenResponse is the token endpoint's success body as defined in RFC 6749.
type TokenResponse struct {
	// AccessToken is the issued bearer token.
	// Usage: "Authorization: Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// IDToken is the OpenID Connect ID token containing identity claims.
	// Only present when the original authorization requested one.
	IDToken *string `json:"id_token,omitempty"`

	// TokenType is always "bearer" in this implementation.
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the access token lifetime in seconds. A hint - the
	// authoritative expiry is the token's own "exp" claim.
	ExpiresIn int `json:"expires_in,omitempty"`
}
