package kernel

import "testing"

func TestQueuePushPopFIFO(t *testing.T) {
	pt := newProcTable(Config{MaxProc: 4, NumMutProc: 1})
	q := newQueue()

	if !q.Empty() {
		t.Fatalf("new queue should be empty")
	}

	q.PushBack(pt, 0)
	q.PushBack(pt, 1)
	q.PushBack(pt, 2)

	if got := q.Len(pt); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	for _, want := range []int32{0, 1, 2} {
		if got := q.PopFront(pt); got != want {
			t.Fatalf("PopFront() = %d, want %d", got, want)
		}
	}

	if got := q.PopFront(pt); got != -1 {
		t.Fatalf("PopFront() on empty queue = %d, want -1", got)
	}
	if !q.Empty() {
		t.Fatalf("queue should be empty after draining")
	}
}

func TestQueueRemoveMiddleRepairsTail(t *testing.T) {
	pt := newProcTable(Config{MaxProc: 4, NumMutProc: 1})
	q := newQueue()
	q.PushBack(pt, 0)
	q.PushBack(pt, 1)
	q.PushBack(pt, 2)

	q.Remove(pt, 1)
	if got := q.Len(pt); got != 2 {
		t.Fatalf("Len() after remove = %d, want 2", got)
	}

	q.Remove(pt, 2) // removes the tail; tail must repair to 0
	q.PushBack(pt, 3)

	var seen []int32
	for id := q.PopFront(pt); id != -1; id = q.PopFront(pt) {
		seen = append(seen, id)
	}
	want := []int32{0, 3}
	if len(seen) != len(want) || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("post-remove order = %v, want %v", seen, want)
	}
}

func TestQueueRemoveNonMemberIsNoop(t *testing.T) {
	pt := newProcTable(Config{MaxProc: 4, NumMutProc: 1})
	q := newQueue()
	q.PushBack(pt, 0)
	q.Remove(pt, 3) // never pushed
	if got := q.Len(pt); got != 1 {
		t.Fatalf("Len() = %d, want 1 (unaffected)", got)
	}
}
