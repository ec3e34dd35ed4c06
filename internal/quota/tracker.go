package quota

import (
	"context"
	"sync"
)

// Tracker bounds how many conversion jobs a session may run. Reserve takes
// a slot atomically before any external work starts, so a concurrent burst
// from one session cannot slip past the ceiling. A failed conversion still
// counts as an attempt; Release exists only for rejections where no job was
// ever attempted, such as a full conversion pool.
type Tracker interface {
	// Allowed reports whether the session is still under its limit
	// without consuming anything. Used by the getInfo path.
	Allowed(ctx context.Context, session string) bool

	// Reserve consumes one slot if the session is under its limit and
	// reports whether it succeeded.
	Reserve(ctx context.Context, session string) bool

	// Release returns a reserved slot. Callers use it only when the job
	// was rejected before any work started.
	Release(ctx context.Context, session string)
}

// MemoryTracker is the default single-process tracker.
type MemoryTracker struct {
	limit  int
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryTracker(limit int) *MemoryTracker {
	return &MemoryTracker{limit: limit, counts: make(map[string]int)}
}

func (t *MemoryTracker) Allowed(_ context.Context, session string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[session] < t.limit
}

func (t *MemoryTracker) Reserve(_ context.Context, session string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts[session] >= t.limit {
		return false
	}
	t.counts[session]++
	return true
}

func (t *MemoryTracker) Release(_ context.Context, session string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts[session] > 0 {
		t.counts[session]--
	}
}

// Count returns the current count for a session. Test helper.
func (t *MemoryTracker) Count(session string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[session]
}
