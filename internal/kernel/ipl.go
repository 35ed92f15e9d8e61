package kernel

import "github.com/intuitionamiga/minikernel/internal/hal"

// critSection is a scope-bound IPL guard (spec §9: "critical sections as
// scoped guards... this removes the possibility of forgetting to restore
// after an early return"). Every mutation of ready, sleeping,
// blockedForMutexSlot, a mutex's waiters, or a PCB's State/Next happens
// inside one of these.
type critSection struct {
	hal hal.HAL
}

// enter raises IPL to level and returns a func that restores the prior
// level. Callers write `restore := k.crit.enter(hal.IPLCrit)` and then
// `defer restore()` or call restore explicitly.
func (c critSection) enter(level int) func() {
	old := c.hal.RaiseIPL(level)
	return func() { c.hal.RestoreIPL(old) }
}
