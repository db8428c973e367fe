package gateway

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed landing
var landingFS embed.FS

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public.
	r.Get("/health", g.handleHealth())
	if g.metrics != nil {
		r.Handle("/metrics", g.metrics.Handler())
	}

	// Webhooks authenticate per source.
	r.Post("/webhooks/{source}", g.dispatcher.ServeHTTP)

	// Status is only mounted when auth is configured.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth, g.authLimit))
			r.Get("/status", g.handleStatus())
		})
	}

	r.Handle("/*", g.landingHandler())
	return r
}

// landingHandler serves landing_dir when set, otherwise the embedded page.
func (g *Gateway) landingHandler() http.Handler {
	if g.config.LandingDir != "" {
		return http.FileServer(http.Dir(g.config.LandingDir))
	}
	sub, err := fs.Sub(landingFS, "landing")
	if err != nil {
		// The embedded tree is fixed at build time.
		panic(err)
	}
	return http.FileServerFS(sub)
}
