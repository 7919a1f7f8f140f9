/*
Package observability provides Prometheus instrumentation for the Reel
engine: tick counters and timings, instance lifecycle counters, and the
derived game state as a labeled gauge. Metrics are fed by lifecycle hooks
plus a per-tick observation from the facade.
*/
package observability
