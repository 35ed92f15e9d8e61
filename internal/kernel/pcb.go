package kernel

import "github.com/intuitionamiga/minikernel/internal/hal"

// State is a PCB's lifecycle state (§3).
type State int

const (
	Unused State = iota
	Ready
	Running
	Sleeping
	Blocked
	Terminated
)

func (s State) String() string {
	switch s {
	case Unused:
		return "unused"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Sleeping:
		return "sleeping"
	case Blocked:
		return "blocked"
	case Terminated:
		return "terminated"
	default:
		return "invalid"
	}
}

// WaitReason disambiguates the two ways a PCB can be Blocked, so the
// invariant checker and the control socket can report which list a
// blocked PCB lives on without walking every mutex's waiters.
type WaitReason int

const (
	WaitNone WaitReason = iota
	WaitMutexSlot
	WaitMutexLock
)

// noLink marks a PCB's intrusive Next field as "not on any list."
const noLink int32 = -1

// PCB is one process table slot. Id is stable for the slot's lifetime;
// Next is the intrusive singly-linked-list pointer used by whichever
// queue currently owns this PCB (at most one, by invariant).
type PCB struct {
	ID    int32
	Name  string
	State State
	Next  int32

	SleepTicksRemaining uint32

	// QuantumRemaining is unused by the FIFO scheduler shipped here; it
	// exists only as the documented extension point for the round-robin
	// variant sketched in spec §9 (decrement on tick, rotate ready on
	// zero). Nothing reads it; reset only zeroes it.
	QuantumRemaining uint32

	WaitReason WaitReason
	WaitMutex  int32 // mutex index this PCB is blocked on, or -1

	// Granted is set by unlock() when it hands a mutex directly to the
	// waiter it just dequeued (§4.9.1's single-waiter wake). A PCB waking
	// from lock() checks this before re-running the acquisition attempt:
	// Granted == the mutex it was waiting on means ownership was already
	// transferred and it should simply return success; anything else
	// (notably a cerrar_mutex cascade wake, which never sets Granted)
	// means it must re-contend from scratch.
	Granted int32

	MutexDescriptors []int32 // len == Config.NumMutProc; -1 = unused slot

	image hal.Image
	stack hal.Stack
	ctx   hal.Context
}

func newPCB(id int32, numMutProc int) *PCB {
	p := &PCB{
		ID:               id,
		Next:             noLink,
		WaitMutex:        -1,
		Granted:          -1,
		MutexDescriptors: make([]int32, numMutProc),
	}
	p.reset()
	return p
}

func (p *PCB) reset() {
	p.Name = ""
	p.State = Unused
	p.Next = noLink
	p.SleepTicksRemaining = 0
	p.QuantumRemaining = 0
	p.WaitReason = WaitNone
	p.WaitMutex = -1
	p.Granted = -1
	for i := range p.MutexDescriptors {
		p.MutexDescriptors[i] = -1
	}
	p.image = nil
	p.stack = nil
	p.ctx = nil
}

// openMutexCount reports how many of this PCB's descriptor slots are in
// use (I2's per-process term).
func (p *PCB) openMutexCount() int {
	n := 0
	for _, d := range p.MutexDescriptors {
		if d != -1 {
			n++
		}
	}
	return n
}

func (p *PCB) freeDescriptorSlot() int {
	for i, d := range p.MutexDescriptors {
		if d == -1 {
			return i
		}
	}
	return -1
}

// descriptorFor returns the slot index already referring to mutex index m,
// or -1 if this process has no open descriptor for it. Backs the
// idempotent-open behavior (§4.9.3).
func (p *PCB) descriptorFor(m int32) int {
	for i, d := range p.MutexDescriptors {
		if d == m {
			return i
		}
	}
	return -1
}
