package kernel

import (
	"context"
	"testing"
	"time"

	"github.com/intuitionamiga/minikernel/internal/hal/sim"
)

// testKernel boots a Kernel over a real sim.Sim HAL and starts its idle
// loop in the background, returning a cancel func to tear it down. Programs
// are cooperative goroutines handed the CPU token one at a time by the
// kernel's own context-switch bookkeeping, so waitUntil below is the only
// synchronization tests need: it polls for a condition becoming true rather
// than asserting immediately after an event is issued.
func testKernel(t *testing.T, cfg Config) (*Kernel, context.CancelFunc) {
	t.Helper()
	h := sim.New()
	k := New(h, cfg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := k.Run(ctx); err != nil && err != context.Canceled {
			t.Logf("kernel run exited: %v", err)
		}
	}()
	return k, cancel
}

// waitUntil polls cond every 2ms until it returns true or the deadline
// expires, failing the test on timeout.
func waitUntil(t *testing.T, deadline time.Duration, cond func() bool) {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", deadline)
}

// pcbState reads a PCB's state under the kernel's own critical section, so
// test assertions don't race the kernel's internal mutations.
func pcbState(k *Kernel, id int32) State {
	restore := k.crit.enter(0)
	defer restore()
	return k.pt.Get(id).State
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxProc = 8
	cfg.NumMut = 4
	cfg.NumMutProc = 4
	cfg.Tick = 100
	return cfg
}
