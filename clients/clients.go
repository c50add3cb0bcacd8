package clients

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-token-exchange/oauth2"
)

type ClientType string

const (
	ClientTypeConfidential ClientType = "confidential" // Can keep secrets (server-side apps)
	ClientTypePublic       ClientType = "public"       // Cannot keep secrets (SPAs, mobile apps)
)

// Client is a registered OAuth2 client application. Only the bcrypt hash of
// the secret is stored; the plaintext exists in the client's own
// configuration alone.
type Client struct {
	ID           oauth2.ClientID `json:"id"`
	Type         ClientType      `json:"type"`
	Description  string          `json:"description"`
	SecretHash   string          `json:"secretHash"`
	RedirectURIs []string        `json:"redirectURIs"`
}

// IsPublic returns true if the client is a public client
func (c *Client) IsPublic() bool {
	return c.Type == ClientTypePublic
}

// VerifySecret compares a presented client secret against the stored hash.
func (c *Client) VerifySecret(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)) == nil
}

// HashSecret hashes a client secret for storage.
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "[HashSecret] bcrypt.GenerateFromPassword")
	}
	return string(bytes), nil
}
