// Package middleware provides HTTP middleware for Van servers.
//
// Two concerns are covered: Prometheus metrics for requests and compiles,
// and OpenTelemetry tracing. Both are standard func(http.Handler)
// http.Handler middleware and compose with chi routers:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Prometheus())
//	r.Use(middleware.Tracing())
package middleware
