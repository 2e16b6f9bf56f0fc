// Package app provides application initialization and lifecycle management
// for the churn mailing service. It wires configuration, logging,
// observability, the filter pipeline and the HTTP surface together and
// handles graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and OpenTelemetry
//	3. Create the artifact and session stores
//	4. Initialize services with their dependencies
//	5. Set up HTTP handlers and middleware
//	6. Configure and start the HTTP server
//	7. Set up graceful shutdown handlers
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication(frontendFS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM to ensure active requests finish
// within the configured shutdown timeout and telemetry providers flush.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The app never
// calls os.Exit() directly, leaving exit control to main.
package app
