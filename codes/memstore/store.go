package memstore

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/jrsteele09/go-token-exchange/codes"
	"github.com/jrsteele09/go-token-exchange/oauth2"
)

var _ codes.Store = (*Store)(nil)

// Store is an in-process codes.Store backed by ttlcache. Entries are
// evicted ttl after issuance; the eviction window is deliberately wider
// than the code's own ExpiresAt so that a stale code still classifies as
// expired rather than unknown.
type Store struct {
	cache *ttlcache.Cache[string, *codes.Details]
}

// New creates a memory store whose entries live for ttl after issuance.
func New(ttl time.Duration) *Store {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *codes.Details](ttl),
		ttlcache.WithDisableTouchOnHit[string, *codes.Details](),
	)

	go cache.Start()

	return &Store{cache: cache}
}

// Issue implements codes.Store.
func (s *Store) Issue(_ context.Context, code oauth2.AuthorizationCode, details *codes.Details) error {
	s.cache.Set(code.String(), details, ttlcache.DefaultTTL)
	return nil
}

// Redeem implements codes.Store. GetAndDelete makes lookup and invalidation
// a single atomic step, so concurrent redemption attempts for the same code
// yield at most one success.
func (s *Store) Redeem(_ context.Context, code oauth2.AuthorizationCode) (*codes.Details, error) {
	item, ok := s.cache.GetAndDelete(code.String())
	if !ok || item == nil || item.IsExpired() {
		return nil, codes.ConsumedErr
	}
	return item.Value(), nil
}

// Close stops the background eviction goroutine.
func (s *Store) Close() error {
	s.cache.Stop()
	return nil
}
