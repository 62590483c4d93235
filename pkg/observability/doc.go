/*
Package observability turns form lifecycle hooks into telemetry.

Metrics exposes Prometheus collectors fed from domain.LifecycleHooks, and
LoggingHooks writes the same events to a structured logger. Both can be
attached to a form at once with domain.Combine.
*/
package observability
