// Package main hosts the pgrapher service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes /api/machines and /api/tests for recording and reading benchmark
//     results, plus /healthz, /readyz and /metrics. Static front-end assets are served from server.web_root.
//   - Session scope: every /api request borrows one pooled connection for its whole lifetime and returns it
//     exactly once, whether the handler succeeds, rejects input, fails a query, or panics.
//   - Persistence: results live in a single Postgres relation (tests) created at startup if absent. Averages are
//     computed by the database on every read; nothing is cached. db.driver=memory swaps in an in-process store
//     for local runs.
//   - Configuration & plumbing: Viper populates config from env/files; zap provides structured logging;
//     Prometheus metrics are exported via the metrics middleware and /metrics handler.
//
// Quick checklist:
//   - Configure env vars: PGRAPHER_SERVER_PORT, PGRAPHER_SERVER_WEB_ROOT, PGRAPHER_DB_DSN (or PGRAPHER_DB_HOST,
//     PGRAPHER_DB_NAME, PGRAPHER_DB_USER, PGRAPHER_DB_PASSWORD), PGRAPHER_LOGGING_DEVELOPMENT.
//   - Run locally: go run ./cmd/pgrapher -config config.yaml (or rely solely on env overrides).
//   - Schema initialization failure is fatal; fix the database and restart.
package main
