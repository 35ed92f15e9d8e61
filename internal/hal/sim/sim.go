// Package sim is the only HAL implementation in this repository: it models
// a uniprocessor machine by running each user process as its own goroutine,
// parked on a channel until the kernel's scheduler hands it the CPU token.
// This is the teacher's worker-goroutine pattern from coproc_worker_*.go
// (a goroutine per guest CPU, released and parked via a stop/done
// handshake) repurposed so "worker" means "user process" rather than
// "guest CPU core."
//
// Program bodies themselves are not modeled here — loading an executable
// image is explicitly out of the kernel core's scope (spec §1). The
// kernel package keeps its own name->func registry and only asks this HAL
// for stack/context bookkeeping and the CPU token handoff.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/intuitionamiga/minikernel/internal/hal"
)

// pollInterval bounds how long Halt sleeps between checks of ctx.Done().
// A real HAL would block on a wait-for-interrupt instruction; this
// simulator has no interrupt to block on, so it polls instead.
const pollInterval = 200 * time.Microsecond

type image struct {
	name string
}

func (i *image) EntryPC() uint32 { return 0 }

type stack struct {
	size int
}

// ctx is the opaque handle ContextSwitch trades on: a token channel the
// goroutine running this process's code blocks on between scheduled runs,
// closed `done` once that goroutine returns, in the spirit of cmdStop's
// wait-on-worker.done in coprocessor_manager.go. The kernel's teardown
// path does not wait on `done`; it is exposed through Done.
//
// level is this context's own saved IPL, the simulator's stand-in for the
// processor-status-word field a real context switch would save and
// restore. A process that raises IPL and then blocks mid-critical-section
// keeps that level when it later resumes; whatever ran in between (another
// process, or idle) was never exposed to it. This is what lets a kernel
// critical section span a context switch (spec note: "IPL is restored on
// resumption"), without one process's raised IPL leaking into another's.
type ctx struct {
	resume chan struct{}
	done   chan struct{}
	level  int
}

// Sim is the simulated HAL. One instance serves one kernel.
type Sim struct {
	mu       sync.Mutex
	level    int
	userMode bool
}

func New() *Sim {
	return &Sim{userMode: true}
}

// SetUserMode controls what FromUserMode reports. The simulator has no
// real user/kernel CPU mode bit to read, so tests exercising the exception
// handlers (§4.7) set this directly to model a fault taken from kernel
// mode versus one taken from a running user process.
func (s *Sim) SetUserMode(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userMode = v
}

func (s *Sim) RaiseIPL(level int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.level
	if level > old {
		s.level = level
	}
	return old
}

func (s *Sim) RestoreIPL(old int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = old
}

// Halt parks until ctx is cancelled or pollInterval elapses, whichever is
// first; the scheduler's idle loop calls this in a tight re-check loop.
func (s *Sim) Halt(c context.Context) {
	t := time.NewTimer(pollInterval)
	defer t.Stop()
	select {
	case <-c.Done():
	case <-t.C:
	}
}

func (s *Sim) ReadRegister(r *hal.Registers, i int) int32 {
	return r[i]
}

func (s *Sim) WriteRegister(r *hal.Registers, i int, v int32) {
	r[i] = v
}

// CreateImage always succeeds: the real loader is out of scope, and
// "unknown program name" is handled as a kernel-level registry miss
// (internal/kernel/proc.go), which the spec treats the same as an image
// load failure.
func (s *Sim) CreateImage(name string) (hal.Image, error) {
	return &image{name: name}, nil
}

func (s *Sim) FreeImage(hal.Image) {}

func (s *Sim) CreateStack(size int) hal.Stack {
	return &stack{size: size}
}

func (s *Sim) FreeStack(hal.Stack) {}

func (s *Sim) InitialContext(_ hal.Image, _ hal.Stack, entry func()) hal.Context {
	c := &ctx{
		resume: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(c.done)
		// The kernel's noreturn syscalls/handlers (terminar_proceso, the
		// exception handlers) tear down the PCB and then panic rather
		// than fall back into entry's caller, since there is no real
		// machine instruction stream here to simply stop fetching from.
		// That panic is intentional control flow, not a crash: swallow
		// it so one process's teardown never takes the whole simulator
		// down with it.
		defer func() { recover() }()
		<-c.resume
		entry()
	}()
	return c
}

// ContextSwitch hands the CPU token to restore and, unless save is nil or
// points to a nil Context, blocks the calling goroutine until some later
// ContextSwitch makes it the restore target again. A nil save is teardown:
// the calling goroutine is about to return from entry() and must not block
// again, so ContextSwitch returns right after the handoff.
//
// The outgoing context's IPL is snapshotted into it before the handoff and
// the incoming context's snapshot becomes the live level, so a critical
// section raised before this call is transparently restored on whichever
// later call resumes this same context.
func (s *Sim) ContextSwitch(save *hal.Context, restore hal.Context) {
	if save != nil && *save == nil {
		// A nil Context in the save slot also means "discard" (hal.Context).
		save = nil
	}
	s.mu.Lock()
	if save != nil {
		(*save).(*ctx).level = s.level
	}
	if restore != nil {
		s.level = restore.(*ctx).level
	}
	s.mu.Unlock()

	if restore != nil {
		rc := restore.(*ctx)
		rc.resume <- struct{}{}
	}
	if save != nil {
		sc := (*save).(*ctx)
		<-sc.resume
	}
}

// Done returns a channel that is closed once the goroutine backing c has
// returned from entry(). Nothing in the kernel package calls it; process
// teardown frees the stack without waiting on it.
func Done(c hal.Context) <-chan struct{} {
	return c.(*ctx).done
}

func (s *Sim) FromUserMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userMode
}

func (s *Sim) Printk(format string, args ...any) {
	fmt.Printf(format, args...)
}

func (s *Sim) Panic(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}

var _ hal.HAL = (*Sim)(nil)
