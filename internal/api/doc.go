// Package api hosts the HTTP server, middleware, and REST handlers for
// benchmark results. Notable routes:
//   - GET /api/machines lists every host that has recorded a result.
//   - GET /api/tests and /api/tests/{hostname} return averaged results.
//   - POST /api/tests records a result; DELETE /api/tests/{testId} removes one.
//   - GET /healthz / readyz for probes and GET /metrics for Prometheus scraping.
//   - GET /static/* serves front-end assets from the configured web root.
//
// Every /api route runs inside a session scope: one database connection is
// acquired before the handler and released exactly once afterwards.
package api
