// Package routes registers haulfile's HTTP endpoints on the router.
package routes

import (
	"net/http"

	"github.com/dukerupert/haulfile/internal/handler/api"
	"github.com/dukerupert/haulfile/internal/router"
)

// APIDeps contains dependencies for the JSON API routes.
type APIDeps struct {
	Pricing *api.PricingHandler
	Filings *api.FilingsHandler // nil without a filing store

	// RateLimit guards the pricing endpoints. Optional.
	RateLimit router.Middleware
}

// OpsDeps contains dependencies for operational routes.
type OpsDeps struct {
	Health  http.Handler
	Metrics http.Handler
}
