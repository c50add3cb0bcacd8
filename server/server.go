package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-token-exchange/exchange"
	"github.com/jrsteele09/go-token-exchange/internal/config"
	"github.com/jrsteele09/go-token-exchange/token"
)

// Server exposes the token-exchange core over HTTP. It owns routing and the
// mapping from classified exchange failures to OAuth2 wire errors; all the
// grant logic lives in the exchange Service.
type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	exchange *exchange.Service
	signer   token.Signer
}

func New(config config.Config, exchangeService *exchange.Service, signer token.Signer) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		exchange: exchangeService,
		signer:   signer,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}
