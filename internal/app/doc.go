// Package app assembles the application: configuration, logging,
// OpenTelemetry, the dataset session service, the websocket hub, the chi
// router, and the HTTP server lifecycle.
package app
