package kernel

import (
	"testing"
	"time"
)

// TestSleepOrdering is scenario 2: with TICK=100, P1 sleeps 2s and P2
// sleeps 1s; P2 wakes after 100 ticks while P1 still has 100 remaining,
// and P1 wakes only after a further 100 ticks.
func TestSleepOrdering(t *testing.T) {
	cfg := smallConfig()
	cfg.Tick = 100
	k, cancel := testKernel(t, cfg)
	defer cancel()

	k.RegisterProgram("p1", func(s *Syscalls) { s.Dormir(2) })
	k.RegisterProgram("p2", func(s *Syscalls) { s.Dormir(1) })

	p1 := k.CreateProcess("p1")
	p2 := k.CreateProcess("p2")

	waitUntil(t, time.Second, func() bool {
		return pcbState(k, p1) == Sleeping && pcbState(k, p2) == Sleeping
	})

	for i := 0; i < 100; i++ {
		k.Tick()
	}

	if got := pcbState(k, p2); got != Ready && got != Running {
		t.Fatalf("p2 state after 100 ticks = %v, want ready/running", got)
	}
	if got := pcbState(k, p1); got != Sleeping {
		t.Fatalf("p1 state after 100 ticks = %v, want sleeping", got)
	}
	restore := k.crit.enter(0)
	if k.pt.Get(p1).SleepTicksRemaining != 100 {
		t.Fatalf("p1 sleep_ticks_remaining = %d, want 100", k.pt.Get(p1).SleepTicksRemaining)
	}
	restore()

	for i := 0; i < 100; i++ {
		k.Tick()
	}

	waitUntil(t, time.Second, func() bool {
		got := pcbState(k, p1)
		return got == Ready || got == Running
	})
}
