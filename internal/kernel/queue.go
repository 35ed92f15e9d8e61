package kernel

// Queue is an intrusive singly-linked FIFO of PCBs, indexed rather than
// pointer-linked (spec §9: "model queues as indices into the PCB table...
// this preserves the source's intrusive, allocation-free design while
// making 'a PCB belongs to exactly one list' a checkable invariant"). head
// and tail are PCB ids, or -1 for an empty queue. The link field lives on
// the PCB itself (PCB.Next), so a PCB can only ever be a member of one
// Queue at a time — exactly invariant I4.
//
// Every operation here assumes the caller already holds the kernel's
// critical section (§4.2).
type Queue struct {
	head, tail int32
}

func newQueue() Queue {
	return Queue{head: noLink, tail: noLink}
}

func (q *Queue) Empty() bool {
	return q.head == noLink
}

// PushBack appends p to the tail in O(1).
func (q *Queue) PushBack(pt *ProcTable, id int32) {
	p := pt.Get(id)
	p.Next = noLink
	if q.tail == noLink {
		q.head = id
		q.tail = id
		return
	}
	pt.Get(q.tail).Next = id
	q.tail = id
}

// PopFront removes and returns the head in O(1), or -1 if empty.
func (q *Queue) PopFront(pt *ProcTable) int32 {
	if q.head == noLink {
		return -1
	}
	id := q.head
	head := pt.Get(id)
	q.head = head.Next
	if q.head == noLink {
		q.tail = noLink
	}
	head.Next = noLink
	return id
}

func (q *Queue) PeekFront() int32 {
	return q.head
}

// Remove walks the list for id in O(n) and unlinks it. Repairs tail if the
// removed node was the last one. A no-op if id is not a member.
func (q *Queue) Remove(pt *ProcTable, id int32) {
	if q.head == noLink {
		return
	}
	if q.head == id {
		q.PopFront(pt)
		return
	}
	prev := q.head
	cur := pt.Get(prev).Next
	for cur != noLink {
		if cur == id {
			node := pt.Get(cur)
			pt.Get(prev).Next = node.Next
			if cur == q.tail {
				q.tail = prev
			}
			node.Next = noLink
			return
		}
		prev = cur
		cur = pt.Get(cur).Next
	}
}

// Len walks the list; only used by tests and the control socket, never by
// the hot path.
func (q *Queue) Len(pt *ProcTable) int {
	n := 0
	for id := q.head; id != noLink; id = pt.Get(id).Next {
		n++
	}
	return n
}
