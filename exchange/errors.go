package exchange

import "errors"

// Classified exchange failures. Every failure path of the extractor and the
// service resolves to exactly one of these via errors.Is; anything that does
// not is an infrastructure fault (issuer or store outage) and should map to
// a server-side error at the transport boundary.
var (
	// MalformedRequestErr is a request-level failure: a required field was
	// missing or failed type validation during extraction. Never produced by
	// Exchange itself.
	MalformedRequestErr = errors.New("malformed token request")

	// InvalidClientErr covers both an unknown client id and a wrong client
	// secret, deliberately indistinguishable to the caller.
	InvalidClientErr = errors.New("client authentication failed")

	// CodeAlreadyUsedErr means the code could not be claimed: unknown,
	// already redeemed, or evicted.
	CodeAlreadyUsedErr = errors.New("authorization code already used")

	CodeExpiredErr         = errors.New("authorization code expired")
	ClientIDMismatchErr    = errors.New("authorization code issued to a different client")
	RedirectURIMismatchErr = errors.New("redirect uri does not match authorization request")
)
