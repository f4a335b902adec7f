package scheduler

import "sync"

// tickGuard gives each project a single run slot so overlapping ticks
// are skipped, not queued. The scheduler's singleton mode covers the
// common case; the guard also holds when passes are triggered over
// HTTP while a scheduled tick is running.
type tickGuard struct {
	mu      sync.Mutex
	running map[string]bool
}

func newTickGuard() *tickGuard {
	return &tickGuard{running: make(map[string]bool)}
}

// TryAcquire claims the run slot for a project. Returns false when a
// pass for that project is already running.
func (g *tickGuard) TryAcquire(projectKey string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running[projectKey] {
		return false
	}
	g.running[projectKey] = true
	return true
}

// Release frees the run slot for a project.
func (g *tickGuard) Release(projectKey string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, projectKey)
}
