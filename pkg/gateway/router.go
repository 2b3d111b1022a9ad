// Package gateway assembles the browser-facing HTTP surface.
package gateway

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pathway-finder/webclient/pkg/gateway/middleware"
	"github.com/pathway-finder/webclient/pkg/gateway/routes"
	"github.com/pathway-finder/webclient/pkg/workspace"
)

type Options struct {
	Registry       *workspace.Registry
	Pages          *routes.Pages
	MaxBodyBytes   int64
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter wires operational endpoints ahead of the session-scoped pages so
// probes never create workspaces.
func NewRouter(opts Options) *mux.Router {
	router := mux.NewRouter()

	// Middleware
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))
	router.Use(middleware.BodyLimit(opts.MaxBodyBytes))

	routes.NewMetricsHandler(opts.Registry, opts.Pages.Configured).Register(router)

	pages := router.NewRoute().Subrouter()
	pages.Use(middleware.Session(opts.Registry))
	routes.RegisterPageRoutes(pages, opts.Pages)

	var notFound http.Handler = http.HandlerFunc(opts.Pages.NotFound)
	notFound = middleware.Recovery(notFound)
	router.NotFoundHandler = middleware.Logging(notFound)

	return router
}
