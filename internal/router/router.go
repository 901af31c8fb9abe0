// Package router wraps http.ServeMux with method helpers and middleware chaining.
package router

import (
	"net/http"
	"slices"
)

// Router wraps http.ServeMux with middleware chaining
type Router struct {
	mux    *http.ServeMux
	chain  []Middleware
	routes *[]string
}

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// New creates a new Router with optional global middleware.
// Global middleware runs inside the mux, so r.Pattern is already set when it executes.
func New(middleware ...Middleware) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		chain:  middleware,
		routes: new([]string),
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Get registers a GET route
func (r *Router) Get(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodGet, pattern, handler, middleware...)
}

// Post registers a POST route
func (r *Router) Post(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPost, pattern, handler, middleware...)
}

// Handle registers a route with explicit method
func (r *Router) Handle(method, pattern string, handler http.Handler, middleware ...Middleware) {
	route := method + " " + pattern
	r.mux.Handle(route, r.wrap(handler, middleware))
	*r.routes = append(*r.routes, route)
}

// Fallback handles every request no other route matches, including CORS
// preflights. The global chain still applies.
func (r *Router) Fallback(handler http.HandlerFunc) {
	r.mux.Handle("/", r.wrap(handler, nil))
}

// Routes lists the registered method patterns in registration order.
func (r *Router) Routes() []string {
	return slices.Clone(*r.routes)
}

// Group creates a sub-router with additional middleware
func (r *Router) Group(middleware ...Middleware) *Router {
	return &Router{
		mux:    r.mux,
		chain:  append(slices.Clone(r.chain), middleware...),
		routes: r.routes,
	}
}

// wrap applies middleware so they execute in the order given
func (r *Router) wrap(handler http.Handler, middleware []Middleware) http.Handler {
	combined := append(slices.Clone(r.chain), middleware...)
	slices.Reverse(combined)

	result := handler
	for _, m := range combined {
		result = m(result)
	}
	return result
}
