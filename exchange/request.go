package exchange

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-token-exchange/oauth2"
)

// Form field names of the token request body (RFC 6749 §4.1.3).
const (
	FormFieldCode         = "code"
	FormFieldRedirectURI  = "redirect_uri"
	FormFieldClientID     = "client_id"
	FormFieldClientSecret = "client_secret"
)

// AccessTokenRequest is the decoded token-exchange request. It is request
// scoped: built from one form body, handed to Exchange, then discarded.
type AccessTokenRequest struct {
	ClientID          oauth2.ClientID          `validate:"required"`
	ClientSecret      string                   `validate:"required"`
	RedirectURI       string                   `validate:"required,uri"`
	AuthorizationCode oauth2.AuthorizationCode `validate:"required"`
}

var validate = validator.New()

// ExtractAccessTokenRequest decodes and type-validates the token request
// from a parsed form body. All four fields are mandatory and the redirect
// URI must be syntactically valid. Any violation fails with
// MalformedRequestErr before the exchange service is ever invoked.
func ExtractAccessTokenRequest(form url.Values) (*AccessTokenRequest, error) {
	request := &AccessTokenRequest{
		ClientID:          oauth2.ClientID(form.Get(FormFieldClientID)),
		ClientSecret:      form.Get(FormFieldClientSecret),
		RedirectURI:       form.Get(FormFieldRedirectURI),
		AuthorizationCode: oauth2.AuthorizationCode(form.Get(FormFieldCode)),
	}

	if err := validate.Struct(request); err != nil {
		return nil, errors.Wrapf(MalformedRequestErr, "[ExtractAccessTokenRequest] %v", err)
	}

	return request, nil
}
