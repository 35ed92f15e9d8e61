// Package kernel implements the scheduler, process table, and named mutex
// subsystem of a small cooperative, preemptible kernel core. It is built
// against a narrow hal.HAL interface so the same kernel logic runs over the
// simulated HAL in internal/hal/sim or, in principle, a real one.
package kernel

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/intuitionamiga/minikernel/internal/hal"
)

// Program is a user-process entry point. It receives the Syscalls handle
// bound to its own PCB and runs until it returns (an implicit
// terminar_proceso) or calls TerminarProceso itself.
type Program func(s *Syscalls)

// Kernel owns the process table, the three global queues, the mutex table,
// and the HAL the simulated machine runs on.
type Kernel struct {
	cfg Config
	hal hal.HAL
	log Logger

	crit critSection
	pt   *ProcTable

	ready               Queue
	sleeping            Queue
	blockedForMutexSlot Queue

	mutexes *MutexTable

	current int32 // id of the Running PCB, or -1 before boot

	programs map[string]Program

	idleCtx hal.Context
}

// New builds a Kernel over the given HAL and configuration. It does not
// start running anything; call Run to enter the idle loop and admit the
// first processes via CreateProcess.
func New(h hal.HAL, cfg Config, log Logger) *Kernel {
	if log == nil {
		log = noopLogger{}
	}
	k := &Kernel{
		cfg:                 cfg,
		hal:                 h,
		log:                 log,
		crit:                critSection{hal: h},
		pt:                  newProcTable(cfg),
		ready:               newQueue(),
		sleeping:            newQueue(),
		blockedForMutexSlot: newQueue(),
		mutexes:             newMutexTable(cfg),
		current:             -1,
		programs:            make(map[string]Program),
	}
	k.idleCtx = h.InitialContext(nil, nil, k.idleEntry)
	return k
}

// RegisterProgram makes name loadable by CreateProcess / crear_proceso. The
// HAL's image loader is out of scope (§1); program bodies live in this
// process-local registry instead, the same way a pedagogical build would
// bind syscall numbers to Go closures rather than a real loader.
func (k *Kernel) RegisterProgram(name string, prog Program) {
	k.programs[name] = prog
}

// Run drives the kernel's idle loop until ctx is cancelled. Any extra
// goroutines (a clock source, a control-socket listener) are supervised
// alongside it with golang.org/x/sync/errgroup, so a failure in any one
// tears down the whole group.
func (k *Kernel) Run(ctx context.Context, extra ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		k.hal.ContextSwitch(nil, k.idleCtx)
		<-gctx.Done()
		return gctx.Err()
	})

	for _, fn := range extra {
		fn := fn
		g.Go(func() error { return fn(gctx) })
	}

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// idleEntry is the body of the idle pseudo-process: while ready is empty,
// drop IPL and halt (§4.4); on wake, hand off to the new head of ready.
func (k *Kernel) idleEntry() {
	for {
		restore := k.crit.enter(hal.IPLLow)
		for k.ready.Empty() {
			restore()
			k.hal.Halt(context.Background())
			restore = k.crit.enter(hal.IPLLow)
		}
		next := k.ready.PeekFront()
		restore()
		k.dispatchTo(next)
	}
}

// dispatchTo makes next the Running process and switches the CPU to it,
// saving the idle context as the outgoing side.
func (k *Kernel) dispatchTo(next int32) {
	p := k.pt.Get(next)
	restore := k.crit.enter(hal.IPLCrit)
	p.State = Running
	k.current = next
	restore()
	save := k.idleCtx
	k.hal.ContextSwitch(&save, p.ctx)
}

// switchAway removes the bookkeeping of the caller, picks the next runnable
// process (or idle), and context-switches to it. Callers must already have
// removed outgoing from ready (§4.4: "callers that intend to yield must
// first remove themselves") and set its new State before calling this.
//
// Must be called with the critical section held; switchAway releases it
// around the HAL switch and re-acquires nothing afterward, since the caller
// holds its own restore deferred from crit.enter.
func (k *Kernel) switchAway(outgoing *PCB) {
	next := k.ready.PeekFront()
	var restore hal.Context
	if next == -1 {
		restore = k.idleCtx
	} else {
		nextPCB := k.pt.Get(next)
		nextPCB.State = Running
		k.current = next
		restore = nextPCB.ctx
	}
	outCtx := outgoing.ctx
	k.hal.ContextSwitch(&outCtx, restore)
	outgoing.ctx = outCtx
}

// lookupProgram panics on an unregistered name. Nothing in the package
// calls it; CreateProcess reads k.programs itself and returns -1 on a miss.
func (k *Kernel) lookupProgram(name string) Program {
	prog, ok := k.programs[name]
	if !ok {
		panic(fmt.Sprintf("kernel: no program registered under %q", name))
	}
	return prog
}
