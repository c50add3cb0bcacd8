package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar   = "PORT"
	appNameVar   = "APP_NAME"
	issuerEnvVar = "ISSUER"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go Token Exchange")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetIssuer returns the issuer URL stamped into every token's "iss" claim
// (e.g. "https://auth.example.com")
func (EnvVars) GetIssuer() string {
	return GetEnv(issuerEnvVar, "http://localhost:8080")
}

// GetRedisAddr returns the Redis address for the authorization code store.
// Empty means the in-process store is used.
func (EnvVars) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

// GetSigningSecret returns the HMAC signing secret. Empty means asymmetric
// signing is used instead (see GetSigningKeyPEM).
func (EnvVars) GetSigningSecret() string {
	return GetEnv("SIGNING_SECRET", "")
}

// GetSigningKeyPEM returns the PEM-encoded RSA private key for RS256
// signing. Empty means a key pair is generated at startup.
func (EnvVars) GetSigningKeyPEM() string {
	return GetEnv("SIGNING_KEY_PEM", "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
