package preview

import (
	"context"
	"sync"
)

// lane is a latest-wins slot for one priority class of deferred work.
// Scheduling a unit while an older one is still pending replaces it, so
// bursts of rapid cursor movement or rapid edits coalesce instead of queueing
// a full independent unit each.
type lane chan func(context.Context)

func newLane() lane { return make(lane, 1) }

// schedule stores fn as the pending unit, displacing any stale one.
func (l lane) schedule(fn func(context.Context)) {
	for {
		select {
		case l <- fn:
			return
		default:
		}
		select {
		case <-l:
		default:
		}
	}
}

// scheduler drains two lanes on a single worker goroutine that owns every
// view operation. Position syncs are cheap and user-visible, so the sync
// lane always runs ahead of the refresh lane; a pending refresh can never
// starve it, and by latest-wins semantics neither lane starves the other.
type scheduler struct {
	syncLane    lane
	refreshLane lane

	done     chan struct{}
	stopOnce sync.Once
}

func newScheduler() *scheduler {
	return &scheduler{
		syncLane:    newLane(),
		refreshLane: newLane(),
		done:        make(chan struct{}),
	}
}

// run executes pending units until the context is cancelled or the scheduler
// is stopped. Each unit runs to completion once begun; the lanes are the
// only suspension points.
func (s *scheduler) run(ctx context.Context) {
	for {
		// A pending sync preempts any pending refresh.
		select {
		case fn := <-s.syncLane:
			fn(ctx)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case fn := <-s.syncLane:
			fn(ctx)
		case fn := <-s.refreshLane:
			fn(ctx)
		}
	}
}

func (s *scheduler) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}
