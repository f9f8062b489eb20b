package core

import "sync"

// SubmissionGuard is a process-local mutual-exclusion set keyed by actor.
// It rejects a second order submission from the same actor while the first is
// still in flight. It only protects one process instance; the durable
// idempotency-key column and the trailing-window query inside the commit
// transaction are the cross-instance safety net.
type SubmissionGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{inFlight: make(map[string]struct{})}
}

// TryAcquire marks actorKey in flight. It returns false immediately if the
// key is already held; callers must then respond "processing, retry" rather
// than with a hard error.
func (g *SubmissionGuard) TryAcquire(actorKey string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.inFlight[actorKey]; held {
		return false
	}
	g.inFlight[actorKey] = struct{}{}
	return true
}

// Release frees actorKey. It must run on every exit path of a submission,
// success or failure, so callers defer it immediately after TryAcquire.
func (g *SubmissionGuard) Release(actorKey string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, actorKey)
}
