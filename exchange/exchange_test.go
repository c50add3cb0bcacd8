package exchange_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-token-exchange/clients"
	fakeclientrepo "github.com/jrsteele09/go-token-exchange/clients/fakerepo"
	"github.com/jrsteele09/go-token-exchange/codes"
	"github.com/jrsteele09/go-token-exchange/codes/memstore"
	"github.com/jrsteele09/go-token-exchange/exchange"
	"github.com/jrsteele09/go-token-exchange/oauth2"
	"github.com/jrsteele09/go-token-exchange/token"
)

const (
	testClientID      = "client1"
	testClientSecret  = "test-secret-1"
	testOtherClientID = "other-client"
	testRedirectURI   = "https://app.example/cb"
	testCode          = "abc123"
	testSubject       = "user-1"
	testNonce         = "random-nonce-value"
	testIssuer        = "https://auth.example.com"
	testSigningSecret = "test-signing-secret"
)

// testFixture holds all test dependencies
type testFixture struct {
	now        time.Time
	codeStore  *memstore.Store
	clientRepo clients.Repo
	service    *exchange.Service
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	nowFunc := func() time.Time { return now }

	codeStore := memstore.New(15 * time.Minute)
	t.Cleanup(func() { _ = codeStore.Close() })

	clientRepo := fakeclientrepo.NewFakeClientRepo()

	signer := token.NewHMACSigner(testSigningSecret)
	accessTokens := token.NewIssuer(signer, testIssuer, token.WithNowFunc(nowFunc))
	idTokens := token.NewIDTokenIssuer(signer, testIssuer, token.WithIDTokenNowFunc(nowFunc))

	service, err := exchange.NewService(
		exchange.Repos{Codes: codeStore, Clients: clientRepo},
		accessTokens,
		idTokens,
		exchange.WithNowTime(nowFunc),
	)
	require.NoError(t, err)

	f := &testFixture{
		now:        now,
		codeStore:  codeStore,
		clientRepo: clientRepo,
		service:    service,
	}
	f.createTestClient(t, testClientID, testClientSecret)
	return f
}

// createTestClient registers a confidential client with a hashed secret
func (f *testFixture) createTestClient(t *testing.T, clientID, secret string) {
	t.Helper()

	secretHash, err := clients.HashSecret(secret)
	require.NoError(t, err)

	err = f.clientRepo.Upsert(&clients.Client{
		ID:           oauth2.ClientID(clientID),
		Type:         clients.ClientTypeConfidential,
		SecretHash:   secretHash,
		RedirectURIs: []string{testRedirectURI},
	})
	require.NoError(t, err)
}

// issueCode stores an authorization code bound to the given details
func (f *testFixture) issueCode(t *testing.T, code string, details *codes.Details) {
	t.Helper()
	require.NoError(t, f.codeStore.Issue(context.Background(), oauth2.AuthorizationCode(code), details))
}

func (f *testFixture) codeDetails() *codes.Details {
	return &codes.Details{
		ClientID:     testClientID,
		RedirectURI:  testRedirectURI,
		ExpiresAt:    f.now.Add(60 * time.Second),
		ResponseType: oauth2.CodeResponseType,
		Subject:      testSubject,
		Scope:        "openid profile",
	}
}

func validRequest() *exchange.AccessTokenRequest {
	return &exchange.AccessTokenRequest{
		ClientID:          testClientID,
		ClientSecret:      testClientSecret,
		RedirectURI:       testRedirectURI,
		AuthorizationCode: testCode,
	}
}

func tokenClaims(t *testing.T, rawToken string) jwt.MapClaims {
	t.Helper()
	parsed, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestExchangeIssuesAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	f.issueCode(t, testCode, f.codeDetails())

	details, err := f.service.Exchange(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, details.AccessToken)
	require.Nil(t, details.IDToken, "code response type must never include an ID token")

	claims := tokenClaims(t, details.AccessToken.String())
	require.Equal(t, testIssuer, claims["iss"])
	require.Equal(t, testClientID, claims["client_id"])
	require.Equal(t, testSubject, claims["sub"])
	require.Equal(t, "openid profile", claims["scope"])
}

func TestExchangeIssuesIDTokenWhenAuthorized(t *testing.T) {
	f := setupTestFixture(t)
	codeDetails := f.codeDetails()
	codeDetails.ResponseType = oauth2.CodeIDTokenResponseType
	codeDetails.Nonce = testNonce
	f.issueCode(t, testCode, codeDetails)

	details, err := f.service.Exchange(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, details.AccessToken)
	require.NotNil(t, details.IDToken)
	require.NotEmpty(t, *details.IDToken)

	claims := tokenClaims(t, details.IDToken.String())
	require.Equal(t, testSubject, claims["sub"])
	require.Equal(t, testClientID, claims["aud"])
	require.Equal(t, testNonce, claims["nonce"])
}

func TestExchangeRejectsExpiredCode(t *testing.T) {
	f := setupTestFixture(t)
	codeDetails := f.codeDetails()
	codeDetails.ExpiresAt = f.now.Add(-1 * time.Second)
	f.issueCode(t, testCode, codeDetails)

	_, err := f.service.Exchange(context.Background(), validRequest())
	require.ErrorIs(t, err, exchange.CodeExpiredErr)
}

func TestExchangeChecksClientBindingBeforeRedirectBinding(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestClient(t, testOtherClientID, testClientSecret)

	// Both bindings are wrong for this caller; client mismatch must win.
	f.issueCode(t, testCode, f.codeDetails())

	request := validRequest()
	request.ClientID = testOtherClientID
	request.RedirectURI = "https://evil.example/cb"

	_, err := f.service.Exchange(context.Background(), request)
	require.ErrorIs(t, err, exchange.ClientIDMismatchErr)
}

func TestExchangeRejectsRedirectURIMismatch(t *testing.T) {
	f := setupTestFixture(t)
	f.issueCode(t, testCode, f.codeDetails())

	request := validRequest()
	request.RedirectURI = "https://app.example/other-cb"

	_, err := f.service.Exchange(context.Background(), request)
	require.ErrorIs(t, err, exchange.RedirectURIMismatchErr)
}

func TestExchangeRejectsReplay(t *testing.T) {
	f := setupTestFixture(t)
	f.issueCode(t, testCode, f.codeDetails())

	_, err := f.service.Exchange(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.service.Exchange(context.Background(), validRequest())
	require.ErrorIs(t, err, exchange.CodeAlreadyUsedErr)
}

func TestFailedValidationStillConsumesCode(t *testing.T) {
	f := setupTestFixture(t)
	f.issueCode(t, testCode, f.codeDetails())

	request := validRequest()
	request.RedirectURI = "https://app.example/other-cb"
	_, err := f.service.Exchange(context.Background(), request)
	require.ErrorIs(t, err, exchange.RedirectURIMismatchErr)

	// A later, otherwise valid retry cannot resurrect the code.
	_, err = f.service.Exchange(context.Background(), validRequest())
	require.ErrorIs(t, err, exchange.CodeAlreadyUsedErr)
}

func TestExchangeRejectsUnknownCode(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Exchange(context.Background(), validRequest())
	require.ErrorIs(t, err, exchange.CodeAlreadyUsedErr)
}

func TestExchangeRejectsUnknownClient(t *testing.T) {
	f := setupTestFixture(t)
	f.issueCode(t, testCode, f.codeDetails())

	request := validRequest()
	request.ClientID = "no-such-client"

	_, err := f.service.Exchange(context.Background(), request)
	require.ErrorIs(t, err, exchange.InvalidClientErr)
}

func TestExchangeRejectsWrongClientSecret(t *testing.T) {
	f := setupTestFixture(t)
	f.issueCode(t, testCode, f.codeDetails())

	request := validRequest()
	request.ClientSecret = "wrong-secret"

	_, err := f.service.Exchange(context.Background(), request)
	require.ErrorIs(t, err, exchange.InvalidClientErr)

	// Client authentication runs before redemption, so the code survives.
	_, err = f.service.Exchange(context.Background(), validRequest())
	require.NoError(t, err)
}

type failingAccessTokenIssuer struct{}

func (failingAccessTokenIssuer) Create(context.Context, oauth2.AuthorizationCode, *codes.Details) (oauth2.AccessToken, error) {
	return "", errors.New("signing backend unavailable")
}

func TestIssuerFailurePropagatesUnclassified(t *testing.T) {
	f := setupTestFixture(t)
	f.issueCode(t, testCode, f.codeDetails())

	signer := token.NewHMACSigner(testSigningSecret)
	service, err := exchange.NewService(
		exchange.Repos{Codes: f.codeStore, Clients: f.clientRepo},
		failingAccessTokenIssuer{},
		token.NewIDTokenIssuer(signer, testIssuer),
		exchange.WithNowTime(func() time.Time { return f.now }),
	)
	require.NoError(t, err)

	_, err = service.Exchange(context.Background(), validRequest())
	require.Error(t, err)
	require.ErrorContains(t, err, "signing backend unavailable")
	require.NotErrorIs(t, err, exchange.CodeExpiredErr)
	require.NotErrorIs(t, err, exchange.CodeAlreadyUsedErr)
	require.NotErrorIs(t, err, exchange.InvalidClientErr)
}

type outageCodeStore struct{}

func (outageCodeStore) Issue(context.Context, oauth2.AuthorizationCode, *codes.Details) error {
	return nil
}

func (outageCodeStore) Redeem(context.Context, oauth2.AuthorizationCode) (*codes.Details, error) {
	return nil, errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

func TestStoreFailurePropagatesUnclassified(t *testing.T) {
	f := setupTestFixture(t)

	signer := token.NewHMACSigner(testSigningSecret)
	service, err := exchange.NewService(
		exchange.Repos{Codes: outageCodeStore{}, Clients: f.clientRepo},
		token.NewIssuer(signer, testIssuer),
		token.NewIDTokenIssuer(signer, testIssuer),
		exchange.WithNowTime(func() time.Time { return f.now }),
	)
	require.NoError(t, err)

	// A store outage is not a dead grant: the failure must stay outside the
	// invalid_grant family so callers report a server fault instead.
	_, err = service.Exchange(context.Background(), validRequest())
	require.Error(t, err)
	require.ErrorContains(t, err, "connection refused")
	require.NotErrorIs(t, err, exchange.CodeAlreadyUsedErr)
	require.NotErrorIs(t, err, exchange.CodeExpiredErr)
	require.NotErrorIs(t, err, exchange.InvalidClientErr)
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	f := setupTestFixture(t)
	signer := token.NewHMACSigner(testSigningSecret)
	accessTokens := token.NewIssuer(signer, testIssuer)
	idTokens := token.NewIDTokenIssuer(signer, testIssuer)

	_, err := exchange.NewService(exchange.Repos{Clients: f.clientRepo}, accessTokens, idTokens)
	require.Error(t, err)

	_, err = exchange.NewService(exchange.Repos{Codes: f.codeStore}, accessTokens, idTokens)
	require.Error(t, err)

	_, err = exchange.NewService(exchange.Repos{Codes: f.codeStore, Clients: f.clientRepo}, nil, idTokens)
	require.Error(t, err)

	_, err = exchange.NewService(exchange.Repos{Codes: f.codeStore, Clients: f.clientRepo}, accessTokens, nil)
	require.Error(t, err)
}
