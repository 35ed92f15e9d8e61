package kernel

import "fmt"

// HandleArith implements the arithmetic exception handler (§4.7; kernel.c's
// exc_arit): an arithmetic fault taken in user mode tears down the faulting
// process; one taken while the kernel itself was executing is unrecoverable.
func (k *Kernel) HandleArith() {
	k.handleException("excepcion aritmetica")
}

// HandleMem implements the memory exception handler (§4.7; kernel.c's
// exc_mem): same disposition as HandleArith, for a memory-access fault.
func (k *Kernel) HandleMem() {
	k.handleException("excepcion de memoria")
}

// handleException is the shared body of HandleArith/HandleMem: both faults
// have the identical "kill in user mode, panic in kernel mode" disposition
// in the original, differing only in the diagnostic they print.
func (k *Kernel) handleException(what string) {
	if !k.hal.FromUserMode() {
		k.hal.Panic("%s estando dentro del kernel", what)
		return
	}

	p := k.pt.Get(k.current)
	k.printk("-> %s EN PROC %d\n", what, p.ID)
	k.terminateCurrent(p)
	// terminateCurrent discards this goroutine's context; nothing resumes
	// it again, matching TerminarProceso's own noreturn contract.
	panic(fmt.Sprintf("kernel: %s returned", what))
}
