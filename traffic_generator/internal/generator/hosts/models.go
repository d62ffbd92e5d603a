package hosts

// HostArrivalState is the pending arrival of one active host.
type HostArrivalState struct {
	NextArrival int64
	Host        int
}

// ArrivalHeap implements heap.Interface and holds the pending arrival of
// every active host, earliest first.
type ArrivalHeap []*HostArrivalState

func (h ArrivalHeap) Len() int { return len(h) }

func (h ArrivalHeap) Less(i, j int) bool {
	if h[i].NextArrival != h[j].NextArrival {
		return h[i].NextArrival < h[j].NextArrival
	}
	return h[i].Host < h[j].Host
}

func (h ArrivalHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *ArrivalHeap) Push(x interface{}) {
	*h = append(*h, x.(*HostArrivalState))
}

func (h *ArrivalHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}
