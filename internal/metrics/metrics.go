// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Login and authorization outcomes.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncRegistration(status string) // status: "success" or "failed"
	IncLogin(status string)        // status: "success" or "failed"

	// Request authorization metrics
	IncAuthFailure(reason string)

	// Post metrics
	IncPostCreated()
	IncPostDeleted()
	IncPostsCacheHit()
	IncPostsCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
