package routes

import (
	"net/http"

	"github.com/dukerupert/haulfile/internal/handler"
	"github.com/dukerupert/haulfile/internal/middleware"
	"github.com/dukerupert/haulfile/internal/router"
)

// RegisterAPIRoutes registers the pricing and filing-intelligence endpoints.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	var guards []router.Middleware
	if deps.RateLimit != nil {
		guards = append(guards, deps.RateLimit)
	}
	guards = append(guards, middleware.MaxBodySize(), middleware.Timeout())

	pricing := r.Group(guards...)
	pricing.Post("/api/pricing/quote", deps.Pricing.Quote)
	pricing.Post("/api/pricing/amendment", deps.Pricing.Amendment)

	if deps.Filings == nil {
		return
	}
	filings := r.Group(middleware.MaxBodySize(), middleware.Timeout())
	filings.Post("/api/filings/duplicate-check", deps.Filings.DuplicateCheck)
	filings.Post("/api/filings/progress", deps.Filings.Progress)
}

// RegisterOpsRoutes registers health and metrics endpoints and the JSON
// not-found fallback.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Handle(http.MethodGet, "/healthz", deps.Health)
	r.Handle(http.MethodGet, "/metrics", deps.Metrics)
	r.Fallback(handler.NotFoundResponse)
}
