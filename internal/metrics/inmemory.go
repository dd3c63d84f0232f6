package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RegistrationsSucceeded uint64
	RegistrationsFailed    uint64
	LoginsSucceeded        uint64
	LoginsFailed           uint64
	AuthFailures           map[string]uint64
	PostsCreated           uint64
	PostsDeleted           uint64
	PostsCacheHits         uint64
	PostsCacheMisses       uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint and tests.
type InMemoryRecorder struct {
	registrationsSucceeded uint64
	registrationsFailed    uint64
	loginsSucceeded        uint64
	loginsFailed           uint64
	postsCreated           uint64
	postsDeleted           uint64
	postsCacheHits         uint64
	postsCacheMisses       uint64

	mu           sync.Mutex
	authFailures map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{authFailures: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	failures := make(map[string]uint64, len(m.authFailures))
	for reason, n := range m.authFailures {
		failures[reason] = n
	}
	m.mu.Unlock()

	return Snapshot{
		RegistrationsSucceeded: atomic.LoadUint64(&m.registrationsSucceeded),
		RegistrationsFailed:    atomic.LoadUint64(&m.registrationsFailed),
		LoginsSucceeded:        atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:           atomic.LoadUint64(&m.loginsFailed),
		AuthFailures:           failures,
		PostsCreated:           atomic.LoadUint64(&m.postsCreated),
		PostsDeleted:           atomic.LoadUint64(&m.postsDeleted),
		PostsCacheHits:         atomic.LoadUint64(&m.postsCacheHits),
		PostsCacheMisses:       atomic.LoadUint64(&m.postsCacheMisses),
	}
}

// IncRegistration increments the registration counter for status.
func (m *InMemoryRecorder) IncRegistration(status string) {
	if status == StatusSuccess {
		atomic.AddUint64(&m.registrationsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.registrationsFailed, 1)
}

// IncLogin increments the login counter for status.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == StatusSuccess {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncAuthFailure increments the rejected-request counter for reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.mu.Lock()
	m.authFailures[reason]++
	m.mu.Unlock()
}

// IncPostCreated increments post created counter.
func (m *InMemoryRecorder) IncPostCreated() {
	atomic.AddUint64(&m.postsCreated, 1)
}

// IncPostDeleted increments post deleted counter.
func (m *InMemoryRecorder) IncPostDeleted() {
	atomic.AddUint64(&m.postsDeleted, 1)
}

// IncPostsCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncPostsCacheHit() {
	atomic.AddUint64(&m.postsCacheHits, 1)
}

// IncPostsCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncPostsCacheMiss() {
	atomic.AddUint64(&m.postsCacheMisses, 1)
}
