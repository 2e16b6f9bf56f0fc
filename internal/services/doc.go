// Package services implements the business logic layer of the churn
// mailing application. It sits between the HTTP handlers and the pipeline,
// dataset and exporter packages, so that business rules stay centralized
// and testable.
//
// # Available Services
//
//   - MailingService: runs the filter pipeline over an upload and turns
//     the survivors into downloadable artifacts
//   - SessionService: per-operator category allow-list state
//   - HealthService: liveness, readiness and build information
//
// # Common Service Pattern
//
// Services take their dependencies and a *slog.Logger by injection:
//
//	service := services.NewMailingService(runner, store, uploads, metrics, logger)
//	result, err := service.CreateMailing(ctx, req)
//
// Every blocking operation takes a context.Context for cancellation and
// tracing. Services return either sentinel errors from this package or
// typed errors from internal/errors; handlers transform both into RFC 7807
// problem responses.
package services
