// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values keeps the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// TelemetryShutdown bounds flushing pending spans on exit.
const TelemetryShutdown = 5 * time.Second
