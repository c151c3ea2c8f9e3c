package holder

import (
	"Facely/core"
	"sync"

	"golang.org/x/sync/semaphore"
)

// RunGuard admits at most one run per chat and a bounded number of runs overall.
// A refused run is rejected, never queued.
type RunGuard struct {
	inFlight sync.Map // map[int64]struct{}
	slots    *semaphore.Weighted
}

func NewRunGuard(maxRuns int) *RunGuard {
	return &RunGuard{
		slots: semaphore.NewWeighted(int64(maxRuns)),
	}
}

// Acquire reserves the chat and one global slot. The returned func releases both
// and is safe to call more than once.
func (g *RunGuard) Acquire(chatId int64) (func(), error) {
	if _, loaded := g.inFlight.LoadOrStore(chatId, struct{}{}); loaded {
		return nil, core.ErrRunInProgress
	}
	if !g.slots.TryAcquire(1) {
		g.inFlight.Delete(chatId)
		return nil, core.ErrTooManyRuns
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.slots.Release(1)
			g.inFlight.Delete(chatId)
		})
	}, nil
}

func (g *RunGuard) Busy(chatId int64) bool {
	_, ok := g.inFlight.Load(chatId)
	return ok
}
