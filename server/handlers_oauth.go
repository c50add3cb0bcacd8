package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-token-exchange/token"
)

// JWKsHandler returns the JSON Web Key Set used to validate issued tokens.
// Only available when signing with an asymmetric key pair.
func (s *Server) JWKsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyPairSigner, ok := s.signer.(*token.KeyPairSigner)
		if !ok {
			http.Error(w, "JWKS only available for asymmetric signing", http.StatusNotFound)
			return
		}

		jwks, err := keyPairSigner.GetJWKS()
		if err != nil {
			http.Error(w, "Failed to get JWKS: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
		_ = json.NewEncoder(w).Encode(jwks)
	}
}

// WellKnownHandler serves the authorization-server metadata relevant to the
// token endpoint. The authorization endpoint itself lives elsewhere.
func (s *Server) WellKnownHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issuer := s.config.GetIssuer()

		resp := map[string]any{
			"issuer":         issuer,
			"token_endpoint": issuer + "/oauth2/token",
			"jwks_uri":       issuer + "/.well-known/jwks.json",

			"grant_types_supported":    []string{"authorization_code"},
			"response_types_supported": []string{"code", "code id_token"},

			"token_endpoint_auth_methods_supported": []string{
				"client_secret_post", // Credentials in POST body
			},
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
