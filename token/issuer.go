package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-token-exchange/codes"
	"github.com/jrsteele09/go-token-exchange/exchange"
	"github.com/jrsteele09/go-token-exchange/oauth2"
)

var _ exchange.AccessTokenIssuer = (*Issuer)(nil)

// Issuer mints JWT access tokens for redeemed authorization codes.
type Issuer struct {
	signer   Signer
	issuer   string
	audience string
	expiry   time.Duration
	nowFunc  func() time.Time
}

// IssuerOption defines a function type to modify the Issuer instance.
type IssuerOption func(*Issuer)

// WithAudience sets the "aud" claim of issued access tokens.
func WithAudience(audience string) IssuerOption {
	return func(i *Issuer) {
		i.audience = audience
	}
}

// WithExpiry sets the access token lifetime.
func WithExpiry(expiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.expiry = expiry
	}
}

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

// NewIssuer creates an access token issuer signing with the given signer.
// issuer becomes the "iss" claim of every token.
func NewIssuer(signer Signer, issuer string, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:  signer,
		issuer:  issuer,
		nowFunc: time.Now,
	}

	for _, opt := range options {
		opt(i)
	}

	if i.expiry == 0 {
		i.expiry = time.Hour
	}
	return i
}

// Create mints an access token bound to the redeemed code's details.
func (i *Issuer) Create(_ context.Context, _ oauth2.AuthorizationCode, details *codes.Details) (oauth2.AccessToken, error) {
	now := i.nowFunc()
	claims := jwt.MapClaims{
		"iss":       i.issuer,
		"aud":       i.audience,
		"client_id": string(details.ClientID),
		"iat":       now.Unix(),
		"exp":       now.Add(i.expiry).Unix(),
		"jti":       uuid.New().String(), // Unique token ID for revocation
	}

	if details.Subject != "" {
		// User-delegated token (authorization code flow with a user subject)
		claims["sub"] = details.Subject
		claims["token_type"] = "user"
	} else {
		claims["sub"] = string(details.ClientID)
		claims["token_type"] = "client"
	}

	if details.Scope != "" {
		claims["scope"] = details.Scope
	}

	signedToken, err := i.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Issuer.Create] signer.Sign")
	}
	return oauth2.AccessToken(signedToken), nil
}
