package preview

import (
	"context"
	"testing"
	"time"
)

func TestLaneLatestWins(t *testing.T) {
	l := newLane()
	var ran []string

	l.schedule(func(context.Context) { ran = append(ran, "stale") })
	l.schedule(func(context.Context) { ran = append(ran, "fresh") })

	select {
	case fn := <-l:
		fn(context.Background())
	default:
		t.Fatal("lane empty after scheduling")
	}
	select {
	case <-l:
		t.Fatal("lane must hold at most one pending unit")
	default:
	}

	if len(ran) != 1 || ran[0] != "fresh" {
		t.Errorf("ran: got %v, want [fresh]", ran)
	}
}

func TestSchedulerPrefersSyncLane(t *testing.T) {
	s := newScheduler()
	order := make(chan string, 2)

	s.refreshLane.schedule(func(context.Context) { order <- "refresh" })
	s.syncLane.schedule(func(context.Context) { order <- "sync" })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.run(ctx)
	defer s.stop()

	if first := <-order; first != "sync" {
		t.Errorf("first executed: got %q, want %q", first, "sync")
	}
	if second := <-order; second != "refresh" {
		t.Errorf("second executed: got %q, want %q", second, "refresh")
	}
}

func TestSchedulerStops(t *testing.T) {
	s := newScheduler()
	stopped := make(chan struct{})

	go func() {
		s.run(context.Background())
		close(stopped)
	}()

	s.stop()
	s.stop() // idempotent

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after stop")
	}
}
