package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-token-exchange/clients"
	fakeclientrepo "github.com/jrsteele09/go-token-exchange/clients/fakerepo"
	"github.com/jrsteele09/go-token-exchange/codes"
	"github.com/jrsteele09/go-token-exchange/codes/memstore"
	"github.com/jrsteele09/go-token-exchange/codes/redisstore"
	"github.com/jrsteele09/go-token-exchange/exchange"
	"github.com/jrsteele09/go-token-exchange/internal/config"
	"github.com/jrsteele09/go-token-exchange/oauth2"
	"github.com/jrsteele09/go-token-exchange/server"
	"github.com/jrsteele09/go-token-exchange/token"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	codeStore := newCodeStore(c)
	signer, err := newSigner(c)
	if err != nil {
		return fmt.Errorf("newSigner: %w", err)
	}

	accessTokens := token.NewIssuer(signer, c.GetIssuer(),
		token.WithAudience(c.GetAudience()),
		token.WithExpiry(c.GetAccessTokenExpiry()),
	)
	idTokens := token.NewIDTokenIssuer(signer, c.GetIssuer(),
		token.WithIDTokenExpiry(c.GetIDTokenExpiry()),
	)

	clientRepo := fakeclientrepo.NewFakeClientRepo()
	if err := seedDevClient(clientRepo); err != nil {
		return fmt.Errorf("seedDevClient: %w", err)
	}

	exchangeService, err := exchange.NewService(
		exchange.Repos{Codes: codeStore, Clients: clientRepo},
		accessTokens,
		idTokens,
	)
	if err != nil {
		return fmt.Errorf("exchange.NewService: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, exchangeService, signer)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func setupLogging(env string) {
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// newCodeStore picks the authorization code store: Redis when configured
// (shared with the authorization endpoint that issues the codes), otherwise
// the in-process store.
func newCodeStore(c config.Config) codes.Store {
	if addr := c.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		log.Info().Str("addr", addr).Msg("using redis authorization code store")
		return redisstore.New(client, "authsvc", c.GetAuthCodeTTL())
	}
	log.Info().Msg("using in-memory authorization code store")
	return memstore.New(c.GetAuthCodeTTL())
}

func newSigner(c config.Config) (token.Signer, error) {
	if secret := c.GetSigningSecret(); secret != "" {
		return token.NewHMACSigner(secret), nil
	}
	if pemData := c.GetSigningKeyPEM(); pemData != "" {
		keyPair, err := token.LoadKeyPairFromPEM(uuid.New().String(), pemData)
		if err != nil {
			return nil, fmt.Errorf("token.LoadKeyPairFromPEM: %w", err)
		}
		return token.NewKeyPairSigner(keyPair), nil
	}

	// No key material configured: generate an ephemeral key pair. Tokens
	// do not survive a restart, which is fine for development.
	log.Warn().Msg("no signing key configured, generating ephemeral RSA key pair")
	keyPair, err := token.GenerateRSAKeyPair(uuid.New().String(), 2048)
	if err != nil {
		return nil, fmt.Errorf("token.GenerateRSAKeyPair: %w", err)
	}
	return token.NewKeyPairSigner(keyPair), nil
}

// seedDevClient registers a client from the environment so the endpoint is
// exercisable out of the box. A real deployment replaces the fake repo with
// its client registry.
func seedDevClient(repo clients.Repo) error {
	clientID := config.GetEnv("DEV_CLIENT_ID", "")
	clientSecret := config.GetEnv("DEV_CLIENT_SECRET", "")
	if clientID == "" || clientSecret == "" {
		return nil
	}

	secretHash, err := clients.HashSecret(clientSecret)
	if err != nil {
		return err
	}

	log.Info().Str("client_id", clientID).Msg("seeding development client")
	return repo.Upsert(&clients.Client{
		ID:           oauth2.ClientID(clientID),
		Type:         clients.ClientTypeConfidential,
		Description:  "development client",
		SecretHash:   secretHash,
		RedirectURIs: []string{config.GetEnv("DEV_CLIENT_REDIRECT_URI", "http://localhost:3000/callback")},
	})
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
