package hosts

import "container/heap"

// New builds a heap holding one entry per host, host i starting at
// firstArrival(i).
func New(numHosts int, firstArrival func(host int) int64) *ArrivalHeap {
	h := make(ArrivalHeap, numHosts)

	for i := range numHosts {
		h[i] = &HostArrivalState{
			NextArrival: firstArrival(i),
			Host:        i,
		}
	}

	heap.Init(&h)

	return &h
}

// Peek returns the earliest pending arrival without removing it, or nil when
// every host has retired.
func (h *ArrivalHeap) Peek() *HostArrivalState {
	if h.Len() == 0 {
		return nil
	}
	return (*h)[0]
}

// Advance moves the earliest host to its next arrival in place.
func (h *ArrivalHeap) Advance(nextArrival int64) {
	(*h)[0].NextArrival = nextArrival
	heap.Fix(h, 0)
}

// Retire removes the earliest host for good.
func (h *ArrivalHeap) Retire() *HostArrivalState {
	return heap.Pop(h).(*HostArrivalState)
}
