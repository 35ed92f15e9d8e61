package kernel

// ProcessInfo is a read-only snapshot of one process table slot, for
// external introspection (internal/ctlsock) — never consumed by the
// kernel's own logic.
type ProcessInfo struct {
	ID         int32
	Name       string
	State      string
	WaitReason string
}

// MutexInfo is a read-only snapshot of one mutex table entry.
type MutexInfo struct {
	Name      string
	Kind      int32
	LockDepth int32
	OwnerID   int32
	OpenCount int32
	Waiters   int
}

// Snapshot walks the process and mutex tables under the critical section
// and returns copies safe to read after the call returns.
func (k *Kernel) Snapshot() ([]ProcessInfo, []MutexInfo) {
	restore := k.crit.enter(0)
	defer restore()

	procs := make([]ProcessInfo, 0, k.pt.capacity())
	for id := int32(0); id < int32(k.pt.capacity()); id++ {
		p := k.pt.Get(id)
		if p.State == Unused {
			continue
		}
		reason := ""
		switch p.WaitReason {
		case WaitMutexSlot:
			reason = "mutex_slot"
		case WaitMutexLock:
			reason = "mutex_lock"
		}
		procs = append(procs, ProcessInfo{ID: p.ID, Name: p.Name, State: p.State.String(), WaitReason: reason})
	}

	mutexes := make([]MutexInfo, 0, len(k.mutexes.entries))
	for i := range k.mutexes.entries {
		e := &k.mutexes.entries[i]
		if !e.Created {
			continue
		}
		mutexes = append(mutexes, MutexInfo{
			Name:      e.Name,
			Kind:      e.Kind,
			LockDepth: e.LockDepth,
			OwnerID:   e.OwnerID,
			OpenCount: e.OpenCount,
			Waiters:   e.Waiters.Len(k.pt),
		})
	}

	return procs, mutexes
}
