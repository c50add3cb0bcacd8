package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/jrsteele09/go-token-exchange/codes"
	"github.com/jrsteele09/go-token-exchange/oauth2"
)

var _ codes.Store = (*Store)(nil)

// Store is a Redis-backed codes.Store for deployments that run more than
// one token endpoint instance. Redemption uses GETDEL, so the claim is
// atomic across instances.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a redis store. prefix namespaces the keys, ttl bounds how
// long an unredeemed code survives (wider than the code's own expiry, so
// stale codes classify as expired rather than unknown).
func New(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Store) redisKey(code oauth2.AuthorizationCode) string {
	return fmt.Sprintf("%s:code:%s", s.prefix, code)
}

// Issue implements codes.Store.
func (s *Store) Issue(ctx context.Context, code oauth2.AuthorizationCode, details *codes.Details) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return errors.Wrap(err, "[Store.Issue] marshal details")
	}
	if err := s.client.Set(ctx, s.redisKey(code), payload, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "[Store.Issue] redis SET")
	}
	return nil
}

// Redeem implements codes.Store.
func (s *Store) Redeem(ctx context.Context, code oauth2.AuthorizationCode) (*codes.Details, error) {
	payload, err := s.client.GetDel(ctx, s.redisKey(code)).Bytes()
	if err == redis.Nil {
		return nil, codes.ConsumedErr
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Redeem] redis GETDEL")
	}

	var details codes.Details
	if err := json.Unmarshal(payload, &details); err != nil {
		return nil, errors.Wrap(err, "[Store.Redeem] unmarshal details")
	}
	return &details, nil
}
