package exchange

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-token-exchange/codes"
	"github.com/jrsteele09/go-token-exchange/internal/utils"
	"github.com/jrsteele09/go-token-exchange/oauth2"
)

// Service performs the token-exchange step of the OAuth2 authorization code
// grant: it authenticates the requesting client, redeems the authorization
// code against the original authorization request, and issues the tokens the
// authorization asked for. The Service holds no mutable state; any number of
// exchanges may run concurrently, with the stores providing redemption
// atomicity.
type Service struct {
	repos        Repos
	accessTokens AccessTokenIssuer
	idTokens     IDTokenIssuer
	nowTime      func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes a new exchange Service with required dependencies.
// Optional configuration can be provided via options (e.g., WithNowTime for
// testing).
func NewService(repos Repos, accessTokens AccessTokenIssuer, idTokens IDTokenIssuer, options ...ServiceOption) (*Service, error) {
	if repos.Codes == nil {
		return nil, errors.New("[NewService] Codes store is required")
	}
	if repos.Clients == nil {
		return nil, errors.New("[NewService] Clients repo is required")
	}
	if accessTokens == nil {
		return nil, errors.New("[NewService] accessTokens issuer is required")
	}
	if idTokens == nil {
		return nil, errors.New("[NewService] idTokens issuer is required")
	}

	service := &Service{
		repos:        repos,
		accessTokens: accessTokens,
		idTokens:     idTokens,
		nowTime:      time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Exchange redeems an authorization code for tokens. Checks run in a fixed
// order and short-circuit: client authentication, code redemption, expiry,
// client binding, redirect binding, then issuance. Exactly one of a success
// value or one classified failure is produced per call; the code is consumed
// by the redemption step regardless of how later checks turn out.
func (s *Service) Exchange(ctx context.Context, request *AccessTokenRequest) (*oauth2.AccessTokenDetails, error) {
	// Client authentication comes first so an unauthenticated caller cannot
	// burn somebody else's code.
	client, err := s.repos.Clients.Get(request.ClientID)
	if err != nil {
		return nil, errors.Wrapf(InvalidClientErr, "[Service.Exchange] unknown client %q", request.ClientID)
	}
	if !client.VerifySecret(request.ClientSecret) {
		return nil, errors.Wrap(InvalidClientErr, "[Service.Exchange] secret verification failed")
	}

	// Atomic claim: at most one Exchange call ever gets the details for a
	// given code, and a claim that fails validation below stays consumed.
	codeDetails, err := s.repos.Codes.Redeem(ctx, request.AuthorizationCode)
	if err != nil {
		if errors.Is(err, codes.ConsumedErr) {
			return nil, errors.Wrapf(CodeAlreadyUsedErr, "[Service.Exchange] %v", err)
		}
		// A store fault is not a verdict on the code; leave it unclassified.
		return nil, errors.Wrap(err, "[Service.Exchange] codes.Redeem")
	}

	if codeDetails.ExpiresAt.Before(s.nowTime()) {
		return nil, CodeExpiredErr
	}
	if codeDetails.ClientID != request.ClientID {
		return nil, ClientIDMismatchErr
	}
	if codeDetails.RedirectURI != request.RedirectURI {
		return nil, RedirectURIMismatchErr
	}

	accessToken, err := s.accessTokens.Create(ctx, request.AuthorizationCode, codeDetails)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Exchange] accessTokens.Create")
	}

	switch codeDetails.ResponseType {
	case oauth2.CodeIDTokenResponseType:
		idToken, err := s.idTokens.CreateForAccessToken(ctx, request.AuthorizationCode, codeDetails)
		if err != nil {
			return nil, errors.Wrap(err, "[Service.Exchange] idTokens.CreateForAccessToken")
		}
		return &oauth2.AccessTokenDetails{AccessToken: accessToken, IDToken: utils.Ptr(idToken)}, nil
	default:
		// oauth2.CodeResponseType and anything unrecognised: the client
		// cannot request a different response type at exchange time than
		// was authorized, so no ID token is due.
		return &oauth2.AccessTokenDetails{AccessToken: accessToken}, nil
	}
}
