package kernel

import "fmt"

// ProcTable is the fixed-capacity array of PCB slots (§4.3). Slots are
// never compacted; a PCB's ID equals its slot index for the slot's entire
// lifetime.
type ProcTable struct {
	slots []*PCB
}

func newProcTable(cfg Config) *ProcTable {
	pt := &ProcTable{slots: make([]*PCB, cfg.MaxProc)}
	for i := range pt.slots {
		pt.slots[i] = newPCB(int32(i), cfg.NumMutProc)
	}
	return pt
}

// Get returns the PCB at id. Panics on an out-of-range id: every caller in
// this package derives ids from the table itself or from a queue built
// over it, so an out-of-range id is a kernel bug, not a user error.
func (pt *ProcTable) Get(id int32) *PCB {
	if id < 0 || int(id) >= len(pt.slots) {
		panic(fmt.Sprintf("kernel: proctable: id %d out of range", id))
	}
	return pt.slots[id]
}

// findFree scans linearly for the first Unused slot (§4.3). Caller must
// hold the kernel's critical section.
func (pt *ProcTable) findFree() int32 {
	for _, p := range pt.slots {
		if p.State == Unused {
			return p.ID
		}
	}
	return -1
}

func (pt *ProcTable) capacity() int {
	return len(pt.slots)
}
