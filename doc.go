// Package backend provides the ggoggolist recommendation API server.

// This package contains no code of its own. The implementation is organized
// into subpackages:

// - cmd/server: HTTP server entry point
// - cmd/recsctl: admin CLI (migrations, seeding, embedding backfill)
// - internal/handlers: HTTP request handlers for the feed API
// - internal/recommend: candidate generation, profile building, ranking,
//   feed assembly, and the orchestrating service
// - internal/embedding: embedding provider client, vector math, and
//   embedding persistence
// - internal/models: data models and database schemas
// - internal/repository: read access to items, favorites, and preferences
// - internal/database: database connection and migrations
// - internal/cache: Redis client for the candidate pool cache
// - internal/metrics: Prometheus instrumentation
// - internal/telemetry: OpenTelemetry tracing
// - internal/middleware: HTTP middleware (request ids)
// - internal/seed: development database seeding

// See the individual package documentation for detailed reference.
package backend
