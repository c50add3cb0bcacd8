package config

import "time"

type OAuthConfig interface {
	GetAuthCodeTTL() time.Duration
	GetAccessTokenExpiry() time.Duration
	GetIDTokenExpiry() time.Duration
	GetAudience() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetAuthCodeTTL bounds how long an unredeemed code is kept by the stores.
// Wider than the code's own expiry so stale codes classify as expired,
// not unknown.
func (OAuth) GetAuthCodeTTL() time.Duration {
	return 15 * time.Minute
}

func (OAuth) GetAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}

func (OAuth) GetIDTokenExpiry() time.Duration {
	return 1 * time.Hour
}

func (OAuth) GetAudience() string {
	return GetEnv("TOKEN_AUDIENCE", "api")
}
