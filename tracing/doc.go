// Package tracing wraps OpenTelemetry so engine commands can open spans
// without importing the SDK. Without Init every span is a no-op.
package tracing
