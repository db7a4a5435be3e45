// Package app assembles the application: configuration, logging,
// OpenTelemetry, services, the WebSocket hub and the HTTP router, plus the
// server lifecycle around them.
package app
