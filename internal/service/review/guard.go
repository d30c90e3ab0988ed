package review

import (
	"sync"

	"github.com/google/uuid"
)

// generationGuard keeps at most one generation in flight per contract within
// this process. The database-side conditional status update covers multiple
// processes; the guard makes the common single-process case fail fast without
// touching the database.
type generationGuard struct {
	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

func newGenerationGuard() *generationGuard {
	return &generationGuard{inflight: make(map[uuid.UUID]struct{})}
}

// tryAcquire reserves the contract for a generation run. Returns false when
// a run is already in flight.
func (g *generationGuard) tryAcquire(id uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[id]; busy {
		return false
	}
	g.inflight[id] = struct{}{}
	return true
}

// release frees the reservation. Safe to call for an unreserved ID.
func (g *generationGuard) release(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inflight, id)
}
