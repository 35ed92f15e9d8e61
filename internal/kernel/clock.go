package kernel

import (
	"context"
	"time"

	"github.com/intuitionamiga/minikernel/internal/hal"
)

// dormir implements dormir(seconds) (§4.10). seconds is converted to ticks
// via cfg.Tick, the caller is moved from ready to sleeping, and the
// scheduler picks the next runnable process.
func (k *Kernel) dormir(p *PCB, seconds int32) int32 {
	restore := k.crit.enter(hal.IPLCrit)
	defer restore()

	ticks := uint32(seconds) * k.cfg.Tick
	if ticks == 0 {
		return 0
	}

	k.ready.Remove(k.pt, p.ID)
	p.State = Sleeping
	p.SleepTicksRemaining = ticks
	k.sleeping.PushBack(k.pt, p.ID)
	k.switchAway(p)
	return 0
}

// Tick is the clock ISR (§4.5). It decrements sleep_ticks_remaining for
// every sleeping PCB and promotes any that reach zero to ready. It never
// performs a context switch itself; a woken sleeper only actually runs once
// the current process next yields into the scheduler.
func (k *Kernel) Tick() {
	restore := k.crit.enter(hal.IPLCrit)
	defer restore()

	id := k.sleeping.PeekFront()
	for id != -1 {
		p := k.pt.Get(id)
		next := p.Next // saved-next: safe to unlink the current node below
		p.SleepTicksRemaining--
		if p.SleepTicksRemaining == 0 {
			k.sleeping.Remove(k.pt, id)
			p.State = Ready
			k.ready.PushBack(k.pt, id)
		}
		id = next
	}
}

// ClockLoop drives Tick on a fixed wall-clock interval until ctx is
// cancelled. It is meant to be supervised by Kernel.Run's errgroup
// alongside the idle loop.
func (k *Kernel) ClockLoop(ctx context.Context, period time.Duration) error {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			k.Tick()
		}
	}
}
