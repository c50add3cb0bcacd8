package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-token-exchange/exchange"
	"github.com/jrsteele09/go-token-exchange/internal/utils"
	"github.com/jrsteele09/go-token-exchange/oauth2"
)

// TokenHandler serves the OAuth2 token endpoint for the authorization_code
// grant. Success bodies and error bodies both follow RFC 6749; the handler
// only translates between the wire and the exchange Service.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeTokenError(w, http.StatusBadRequest, oauth2.NewError(oauth2.ErrorInvalidRequest, "request body is not a valid form"))
			return
		}

		if grantType := oauth2.GrantType(r.PostForm.Get("grant_type")); grantType != oauth2.AuthorizationCodeGrant {
			writeTokenError(w, http.StatusBadRequest, oauth2.NewError(oauth2.ErrorUnsupportedGrantType, "only authorization_code is supported"))
			return
		}

		request, err := exchange.ExtractAccessTokenRequest(r.PostForm)
		if err != nil {
			status, wireErr := wireError(err)
			writeTokenError(w, status, wireErr)
			return
		}

		details, err := s.exchange.Exchange(r.Context(), request)
		if err != nil {
			status, wireErr := wireError(err)
			if status == http.StatusInternalServerError {
				log.Err(err).Str("client_id", request.ClientID.String()).Msg("token exchange failed")
			} else {
				log.Warn().Str("client_id", request.ClientID.String()).Str("error", wireErr.Code).Msg("token exchange rejected")
			}
			writeTokenError(w, status, wireErr)
			return
		}

		response := oauth2.TokenResponse{
			AccessToken: details.AccessToken.String(),
			TokenType:   "bearer",
			ExpiresIn:   int(s.config.GetAccessTokenExpiry().Seconds()),
		}
		if details.IDToken != nil {
			response.IDToken = utils.Ptr(details.IDToken.String())
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		// Token responses must never be cached (RFC 6749 §5.1)
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		_ = json.NewEncoder(w).Encode(response)
	}
}

// wireError maps a classified exchange failure to its OAuth2 wire response.
// Business-rule failures all collapse to invalid_grant; anything
// unclassified is an infrastructure fault and surfaces as server_error.
func wireError(err error) (int, *oauth2.Error) {
	switch {
	case errors.Is(err, exchange.MalformedRequestErr):
		return http.StatusBadRequest, oauth2.NewError(oauth2.ErrorInvalidRequest, "missing or malformed request parameter")
	case errors.Is(err, exchange.InvalidClientErr):
		return http.StatusUnauthorized, oauth2.NewError(oauth2.ErrorInvalidClient, "client authentication failed")
	case errors.Is(err, exchange.CodeAlreadyUsedErr),
		errors.Is(err, exchange.CodeExpiredErr),
		errors.Is(err, exchange.ClientIDMismatchErr),
		errors.Is(err, exchange.RedirectURIMismatchErr):
		return http.StatusBadRequest, oauth2.NewError(oauth2.ErrorInvalidGrant, "authorization code is invalid, expired or bound to another request")
	default:
		return http.StatusInternalServerError, oauth2.NewError(oauth2.ErrorServerError, "token issuance failed")
	}
}

func writeTokenError(w http.ResponseWriter, status int, wireErr *oauth2.Error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if status == http.StatusUnauthorized {
		// RFC 6749 §5.2: challenge matching the client authentication scheme
		w.Header().Set("WWW-Authenticate", `Basic realm="oauth2"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(wireErr)
}
