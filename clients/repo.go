package clients

import "github.com/jrsteele09/go-token-exchange/oauth2"

type Repo interface {
	Upsert(clientData *Client) error
	Delete(clientID oauth2.ClientID) error
	Get(clientID oauth2.ClientID) (*Client, error)
	List(offset, limit int) ([]*Client, error)
}
