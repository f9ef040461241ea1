package simulator

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/infrastructure/logger"
)

// DefaultDebounce coalesces keystroke bursts into one recompute
const DefaultDebounce = 200 * time.Millisecond

// Source returns the state a recompute should read, at the moment it runs
type Source func() (entities.Draft, entities.InventorySnapshot)

// Recomputer runs Project with trailing debounce. Scheduling a recompute
// cancels any pending one. A pending task carries only its generation
// handle and reads the draft through Source when it fires, so it always
// projects the latest state.
type Recomputer struct {
	window  time.Duration
	source  Source
	publish func(Projection)
	logger  *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending uint64
	nextGen uint64
	stopped bool
	latest  Projection
	runs    int
	armed   sync.WaitGroup

	runMu sync.Mutex
}

// NewRecomputer creates a recomputer. A non-positive window recomputes
// synchronously on every Schedule. publish may be nil.
func NewRecomputer(window time.Duration, source Source, publish func(Projection), log *zap.Logger) *Recomputer {
	return &Recomputer{
		window:  window,
		source:  source,
		publish: publish,
		logger:  logger.OrNop(log),
		latest:  make(Projection),
	}
}

// Schedule requests a recompute after the debounce window
func (r *Recomputer) Schedule() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.cancelLocked()
	if r.window <= 0 {
		r.mu.Unlock()
		r.run()
		return
	}

	r.nextGen++
	gen := r.nextGen
	r.pending = gen
	r.armed.Add(1)
	r.timer = time.AfterFunc(r.window, func() {
		defer r.armed.Done()
		r.fire(gen)
	})
	r.mu.Unlock()
}

// Flush runs a pending recompute immediately. It reports whether one was pending.
func (r *Recomputer) Flush() bool {
	r.mu.Lock()
	if r.stopped || r.pending == 0 {
		r.mu.Unlock()
		return false
	}
	r.cancelLocked()
	r.mu.Unlock()

	r.run()
	return true
}

// Stop cancels any pending recompute and waits for a running one to finish.
// Later Schedule calls are ignored.
func (r *Recomputer) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.cancelLocked()
	r.mu.Unlock()

	r.armed.Wait()
}

// Latest returns the most recently published projection
func (r *Recomputer) Latest() Projection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Runs returns how many recomputes have completed
func (r *Recomputer) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

// cancelLocked disarms the pending task. Caller holds r.mu.
func (r *Recomputer) cancelLocked() {
	if r.timer != nil && r.timer.Stop() {
		r.armed.Done()
	}
	r.timer = nil
	r.pending = 0
}

func (r *Recomputer) fire(gen uint64) {
	r.mu.Lock()
	if r.stopped || r.pending != gen {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.pending = 0
	r.mu.Unlock()

	r.run()
}

func (r *Recomputer) run() {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	draft, snapshot := r.source()
	projection := Project(draft, snapshot)

	r.mu.Lock()
	r.latest = projection
	r.runs++
	r.mu.Unlock()

	r.logger.Debug("stock projection recomputed",
		zap.Int("tracked_items", len(projection)),
		zap.Int("over_allocated", len(projection.OverAllocated())))

	if r.publish != nil {
		r.publish(projection)
	}
}
