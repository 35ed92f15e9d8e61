package kernel

import "github.com/intuitionamiga/minikernel/internal/hal"

// CreateProcess implements crear_proceso(name) (§4.8). It allocates a PCB
// slot, asks the HAL to build an image and stack, binds the registered
// program as the process's entry point, and appends the new PCB to ready.
func (k *Kernel) CreateProcess(name string) int32 {
	prog, ok := k.programs[name]
	if !ok {
		return -1
	}

	img, err := k.hal.CreateImage(name)
	if err != nil {
		return -1
	}

	restore := k.crit.enter(hal.IPLCrit)
	defer restore()

	id := k.pt.findFree()
	if id == -1 {
		k.hal.FreeImage(img)
		return -1
	}

	p := k.pt.Get(id)
	p.reset()
	p.Name = name
	p.State = Ready

	stack := k.hal.CreateStack(k.cfg.TamPila)
	p.image = img
	p.stack = stack

	syscalls := &Syscalls{k: k, p: p}
	p.ctx = k.hal.InitialContext(img, stack, func() {
		prog(syscalls)
		k.terminateCurrent(p)
	})

	k.ready.PushBack(k.pt, id)
	return id
}

// terminateCurrent implements the resource-release half of terminar_proceso
// and the exception teardown path (§4.8). It closes every open mutex
// descriptor (cascading wakes as needed), frees image and stack, marks the
// slot Terminated then Unused, and switches away discarding the dying
// context.
//
// Called from inside the process's own goroutine (the entry func wrapper in
// CreateProcess), so "current" here is always the process tearing itself
// down. The final ContextSwitch discards the dying context and returns
// once the CPU has been handed on; callers then run no further process
// code (the CreateProcess wrapper returns from entry, TerminarProceso and
// the exception handlers panic).
func (k *Kernel) terminateCurrent(p *PCB) {
	restore := k.crit.enter(hal.IPLCrit)

	for slot, m := range p.MutexDescriptors {
		if m != -1 {
			k.closeDescriptorLocked(p, slot, m)
		}
	}

	img, stack := p.image, p.stack
	p.State = Terminated
	k.ready.Remove(k.pt, p.ID)

	next := k.ready.PeekFront()
	var restoreCtx hal.Context
	if next == -1 {
		restoreCtx = k.idleCtx
	} else {
		nextPCB := k.pt.Get(next)
		nextPCB.State = Running
		k.current = next
		restoreCtx = nextPCB.ctx
	}

	// Free image/stack after the next context is chosen but before the
	// switch touches it (§4.8: "the HAL switch must not touch the dying
	// stack").
	k.hal.FreeImage(img)
	k.hal.FreeStack(stack)

	p.reset()
	restore()

	// Discard the outgoing context: nothing resumes this goroutine again.
	k.hal.ContextSwitch(nil, restoreCtx)
}
