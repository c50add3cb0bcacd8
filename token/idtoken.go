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

var _ exchange.IDTokenIssuer = (*IDTokenIssuer)(nil)

// IDTokenIssuer mints OpenID Connect ID tokens for codes authorized with
// the "code id_token" response type.
type IDTokenIssuer struct {
	signer  Signer
	issuer  string
	expiry  time.Duration
	nowFunc func() time.Time
}

// IDTokenIssuerOption defines a function type to modify the IDTokenIssuer.
type IDTokenIssuerOption func(*IDTokenIssuer)

// WithIDTokenExpiry sets the ID token lifetime.
func WithIDTokenExpiry(expiry time.Duration) IDTokenIssuerOption {
	return func(i *IDTokenIssuer) {
		i.expiry = expiry
	}
}

// WithIDTokenNowFunc sets the now time function (primarily for testing)
func WithIDTokenNowFunc(now func() time.Time) IDTokenIssuerOption {
	return func(i *IDTokenIssuer) {
		i.nowFunc = now
	}
}

// NewIDTokenIssuer creates an ID token issuer signing with the given signer.
func NewIDTokenIssuer(signer Signer, issuer string, options ...IDTokenIssuerOption) *IDTokenIssuer {
	i := &IDTokenIssuer{
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

// CreateForAccessToken mints an ID token for the same code an access token
// was just issued for. ID tokens carry identity claims only; authorization
// data such as scope belongs in the access token.
func (i *IDTokenIssuer) CreateForAccessToken(_ context.Context, _ oauth2.AuthorizationCode, details *codes.Details) (oauth2.IDToken, error) {
	now := i.nowFunc()
	claims := jwt.MapClaims{
		"iss": i.issuer,
		"sub": details.Subject,
		"aud": string(details.ClientID),
		"iat": now.Unix(),
		"exp": now.Add(i.expiry).Unix(),
		"jti": uuid.New().String(),
	}

	if details.Nonce != "" {
		claims["nonce"] = details.Nonce
	}

	signedToken, err := i.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[IDTokenIssuer.CreateForAccessToken] signer.Sign")
	}
	return oauth2.IDToken(signedToken), nil
}
