package kernel

import "github.com/intuitionamiga/minikernel/internal/hal"

// MutexEntry is one slot of the global mutex table (§3, §4.9.1).
type MutexEntry struct {
	Name      string
	Kind      int32
	LockDepth int32
	OwnerID   int32 // -1 when unlocked
	OpenCount int32
	Created   bool
	Waiters   Queue
}

// MutexTable is the fixed-capacity arena of named mutexes (§9: "mutex table
// as arena... same pattern [as the intrusive queue]: fixed-capacity array
// plus a free-slot predicate").
type MutexTable struct {
	entries []MutexEntry
	nMutexs int
}

func newMutexTable(cfg Config) *MutexTable {
	mt := &MutexTable{entries: make([]MutexEntry, cfg.NumMut)}
	for i := range mt.entries {
		mt.entries[i].OwnerID = -1
		mt.entries[i].Waiters = newQueue()
	}
	return mt
}

func (mt *MutexTable) findFree() int32 {
	for i := range mt.entries {
		if !mt.entries[i].Created {
			return int32(i)
		}
	}
	return -1
}

func (mt *MutexTable) findByName(name string) int32 {
	for i := range mt.entries {
		if mt.entries[i].Created && mt.entries[i].Name == name {
			return int32(i)
		}
	}
	return -1
}

// crearMutex implements the crear_mutex syscall (§4.9.2). Checks run in the
// original's order: free descriptor slot (-2) before duplicate name (-3).
// On backpressure (global table full) the caller blocks in
// blockedForMutexSlot and, on resumption, re-runs the entire search —
// "names may have changed" (§4.9.2).
func (k *Kernel) crearMutex(p *PCB, name string, kind int32) int32 {
	if len(name) >= k.cfg.MaxNomMut {
		return -1
	}

	for {
		restore := k.crit.enter(hal.IPLCrit)

		slot := p.freeDescriptorSlot()
		if slot == -1 {
			restore()
			return -2
		}

		if k.mutexes.findByName(name) != -1 {
			restore()
			return -3
		}

		m := k.mutexes.findFree()
		if m == -1 {
			// Backpressure: block and retry the whole call on wake.
			k.ready.Remove(k.pt, p.ID)
			p.State = Blocked
			p.WaitReason = WaitMutexSlot
			k.blockedForMutexSlot.PushBack(k.pt, p.ID)
			k.switchAway(p)
			restore()
			continue
		}

		e := &k.mutexes.entries[m]
		e.Name = name
		e.Kind = kind
		e.LockDepth = 0
		e.OwnerID = -1
		e.OpenCount = 1
		e.Created = true
		e.Waiters = newQueue()
		k.mutexes.nMutexs++

		p.MutexDescriptors[slot] = m
		restore()
		return int32(slot)
	}
}

// abrirMutex implements abrir_mutex. Idempotent per process (§4.9.3): a
// process that already holds a descriptor for name gets that descriptor
// back, with no change to open_count.
func (k *Kernel) abrirMutex(p *PCB, name string) int32 {
	restore := k.crit.enter(hal.IPLCrit)
	defer restore()

	m := k.mutexes.findByName(name)
	if m == -1 {
		return -1
	}

	if slot := p.descriptorFor(m); slot != -1 {
		return int32(slot)
	}

	slot := p.freeDescriptorSlot()
	if slot == -1 {
		return -2
	}

	p.MutexDescriptors[slot] = m
	k.mutexes.entries[m].OpenCount++
	return int32(slot)
}

// lock implements lock(desc) (§4.9.1, §4.9.2). A waiter woken by a direct
// ownership transfer (unlock) returns immediately via p.Granted; one woken
// by a cerrar_mutex cascade re-enters the acquisition attempt from scratch.
func (k *Kernel) lock(p *PCB, desc int32) int32 {
	restore := k.crit.enter(hal.IPLCrit)
	defer func() { restore() }()

	for {
		if desc < 0 || int(desc) >= len(p.MutexDescriptors) {
			return -1
		}
		m := p.MutexDescriptors[desc]
		if m == -1 {
			return -2
		}
		e := &k.mutexes.entries[m]

		if e.LockDepth == 0 {
			e.LockDepth = 1
			e.OwnerID = p.ID
			return 0
		}

		if e.OwnerID == p.ID {
			if e.Kind == Recursivo {
				e.LockDepth++
				return 0
			}
			return -3
		}

		// Contended by another owner: block on this entry's waiters.
		k.ready.Remove(k.pt, p.ID)
		p.State = Blocked
		p.WaitReason = WaitMutexLock
		p.WaitMutex = m
		e.Waiters.PushBack(k.pt, p.ID)
		k.switchAway(p)

		if p.Granted == m {
			p.Granted = -1
			p.WaitMutex = -1
			return 0
		}
		p.WaitMutex = -1
		// Cascade-woken (cerrar_mutex): re-contend from scratch.
	}
}

// unlock implements unlock(desc) (§4.9.1). On the final release it hands the
// mutex directly to the head of waiters (FIFO, single waiter woken) rather
// than simply making it Ready to re-contend.
func (k *Kernel) unlock(p *PCB, desc int32) int32 {
	restore := k.crit.enter(hal.IPLCrit)
	defer restore()

	if desc < 0 || int(desc) >= len(p.MutexDescriptors) {
		return -1
	}
	m := p.MutexDescriptors[desc]
	if m == -1 {
		return -2
	}
	e := &k.mutexes.entries[m]

	if e.LockDepth == 0 {
		return -4
	}
	if e.OwnerID != p.ID {
		return -3
	}

	e.LockDepth--
	if e.LockDepth > 0 {
		return 0
	}

	e.OwnerID = -1
	waiterID := e.Waiters.PopFront(k.pt)
	if waiterID != -1 {
		waiter := k.pt.Get(waiterID)
		e.LockDepth = 1
		e.OwnerID = waiterID
		waiter.Granted = m
		waiter.WaitReason = WaitNone
		waiter.State = Ready
		k.ready.PushBack(k.pt, waiterID)
	}
	return 0
}

// cerrarMutex implements cerrar_mutex(desc) (§4.9.1). Closing is an abnormal
// release: if the caller owned the lock it force-clears ownership and wakes
// every waiter to re-contend, rather than transferring ownership to one.
func (k *Kernel) cerrarMutex(p *PCB, desc int32) int32 {
	restore := k.crit.enter(hal.IPLCrit)
	defer restore()

	if desc < 0 || int(desc) >= len(p.MutexDescriptors) {
		return -1
	}
	m := p.MutexDescriptors[desc]
	if m == -1 {
		return -2
	}

	k.closeDescriptorLocked(p, int(desc), m)
	return 0
}

// closeDescriptorLocked releases one descriptor against mutex m. Shared by
// cerrarMutex and process teardown (§4.8: "for each open mutex descriptor in
// the current PCB, call the close routine"). Caller must already hold the
// critical section.
func (k *Kernel) closeDescriptorLocked(p *PCB, descSlot int, m int32) {
	e := &k.mutexes.entries[m]
	p.MutexDescriptors[descSlot] = -1

	if e.OwnerID == p.ID {
		e.LockDepth = 0
		e.OwnerID = -1
		for {
			waiterID := e.Waiters.PopFront(k.pt)
			if waiterID == -1 {
				break
			}
			waiter := k.pt.Get(waiterID)
			waiter.WaitReason = WaitNone
			waiter.State = Ready
			k.ready.PushBack(k.pt, waiterID)
		}
	}

	e.OpenCount--
	if e.OpenCount > 0 {
		return
	}

	e.Created = false
	e.Name = ""
	k.mutexes.nMutexs--

	for {
		waiterID := k.blockedForMutexSlot.PopFront(k.pt)
		if waiterID == -1 {
			break
		}
		waiter := k.pt.Get(waiterID)
		waiter.WaitReason = WaitNone
		waiter.State = Ready
		k.ready.PushBack(k.pt, waiterID)
	}
}
