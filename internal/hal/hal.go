// Package hal defines the narrow hardware-abstraction contract the kernel
// core consumes. Real hardware (interrupt masking, register files, context
// save/restore, image and stack allocation) lives behind this interface;
// the core never reaches past it. See internal/hal/sim for the only
// implementation shipped here — a goroutine-per-process simulator used by
// both the kernel and its tests.
package hal

import "context"

// Registers models the CPU's general-purpose register file as seen by a
// syscall trap: R0 carries the service index on entry and the return value
// on exit; R1..R7 carry up to seven arguments.
type Registers [8]int32

// Image is an opaque handle to a loaded program, as returned by CreateImage.
// The only fact the core is allowed to know about it is its entry point.
type Image interface {
	EntryPC() uint32
}

// Stack is an opaque handle to an allocated execution stack.
type Stack interface{}

// Context is an opaque register/stack snapshot. A nil Context passed to
// ContextSwitch as the save slot means "discard the outgoing context" —
// used by process teardown, which never returns to the dying process.
type Context interface{}

// HAL is the hardware surface the kernel core depends on. CRIT-level
// masking is represented by RaiseIPL/RestoreIPL rather than named levels,
// matching the spec's "scoped raise/restore" framing in §4.1.
type HAL interface {
	// RaiseIPL masks interrupts up to level and returns the previous level.
	RaiseIPL(level int) int
	// RestoreIPL restores a previously saved level.
	RestoreIPL(old int)

	// Halt parks the processor until the next interrupt. Only ever called
	// from the idle path with IPL at its minimum.
	Halt(ctx context.Context)

	ReadRegister(r *Registers, i int) int32
	WriteRegister(r *Registers, i int, v int32)

	// CreateImage builds an executable image for a named program and
	// reports its entry point. Returns an error if the name is unknown.
	CreateImage(name string) (Image, error)
	FreeImage(img Image)

	CreateStack(size int) Stack
	FreeStack(s Stack)

	// InitialContext builds a fresh context for a newly created process,
	// ready to be the restore target of a ContextSwitch. entry is the
	// process's first instruction: whatever the image does once it has
	// the CPU, expressed as a callback rather than raw machine code,
	// since this HAL has no real instruction stream to fetch from.
	InitialContext(img Image, stack Stack, entry func()) Context

	// ContextSwitch is the only place execution leaves the calling
	// process. save is nil when the outgoing context must be discarded
	// (process teardown). restore is the context to resume. ContextSwitch
	// returns only when some later ContextSwitch makes `save`'s process
	// the restore target again.
	ContextSwitch(save *Context, restore Context)

	// FromUserMode reports whether the trap that led here originated in
	// user mode (true) or kernel mode (false); exception handling depends
	// on this to decide "kill the process" vs. "panic".
	FromUserMode() bool

	Printk(format string, args ...any)
	Panic(format string, args ...any)
}

// IPL levels. CRIT masks everything the core's queues need protected
// against: clock, terminal, and software interrupts (§4.1).
const (
	IPLLow  = 0
	IPLCrit = 2
)
