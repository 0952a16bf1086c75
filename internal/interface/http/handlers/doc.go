// Package handlers contains reusable HTTP building blocks: the composite
// health checker and the middleware the API server chains in front of its
// routes.
//
// # Health Checks
//
// Named checks run concurrently, each under its own timeout:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0", clock.WallClock)
//	checker.AddCheck("database", handlers.NewDatabaseCheck(store))
//	checker.AddCheck("cache", handlers.NewCacheCheck(cache))
//
//	status := checker.Check(ctx)
//
// # Middleware
//
// Middleware share the MiddlewareFunc shape and compose with Chain:
//
//	h := handlers.ChainHandler(mux,
//	    handlers.RequestIDMiddleware,
//	    handlers.RecoveryMiddleware(log),
//	    handlers.LoggingMiddleware(log, clk),
//	    handlers.TimeoutMiddleware(30*time.Second),
//	)
package handlers
