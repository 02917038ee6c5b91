package payment

import (
	"sync"
)

// inflightGuard is a per-session single-flight lock. Two concurrent execute
// calls for one session id would otherwise race to double-spend the same
// burner balance.
type inflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{active: make(map[string]struct{})}
}

// acquire reports whether the caller now owns the session's run slot.
func (g *inflightGuard) acquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[id]; busy {
		return false
	}

	g.active[id] = struct{}{}

	return true
}

func (g *inflightGuard) release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.active, id)
}
