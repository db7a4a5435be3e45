// Package http contains the HTTP handlers: dataset queries, chart
// payloads, exports, health and metrics. Handlers depend on narrow service
// interfaces so tests can substitute the service layer.
package http
