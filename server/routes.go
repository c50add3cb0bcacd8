package server

const (
	tokenRoute     = "POST /oauth2/token"
	jwksRoute      = "GET /.well-known/jwks.json"
	wellKnownRoute = "GET /.well-known/oauth-authorization-server"
	healthzRoute   = "GET /healthz"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc(tokenRoute, ChainMiddleware(s.TokenHandler(), s.LoggingMiddleware))
	s.RegisterRouteFunc(jwksRoute, ChainMiddleware(s.JWKsHandler(), s.LoggingMiddleware))
	s.RegisterRouteFunc(wellKnownRoute, ChainMiddleware(s.WellKnownHandler(), s.LoggingMiddleware))
	s.RegisterRouteFunc(healthzRoute, s.HealthzHandler())
}
