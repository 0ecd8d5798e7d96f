// Package httpserver runs an http.Handler until its context is cancelled,
// then shuts it down gracefully.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	err := srv.Run(ctx, router)
//
// HealthHandler reports named dependency checks as JSON.
package httpserver
