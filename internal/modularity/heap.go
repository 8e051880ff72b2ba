package modularity

import "github.com/aalpar/deheap"

// candidateHeap orders provision candidates higher-priority-first, breaking
// ties by registration order (earlier registered sorts first).
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	pi, pj := h[i].module.Priority(), h[j].module.Priority()
	if pi != pj {
		return pi > pj
	}
	return h[i].seq < h[j].seq
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// candidatesFor returns every module providing capability, in priority
// order, with one exception: a module directly named capability is always
// tried first, ahead of declared providers.
func candidatesFor(capability string) []Module {
	mu.Lock()
	raw := append([]candidate(nil), provisions[capability]...)
	direct, hasDirect := byName[capability]
	mu.Unlock()

	h := candidateHeap(raw)
	deheap.Init(&h)

	ordered := make([]Module, 0, len(raw)+1)
	for h.Len() > 0 {
		ordered = append(ordered, deheap.Pop(&h).(candidate).module)
	}

	if hasDirect {
		ordered = append([]Module{direct}, ordered...)
	}
	return ordered
}
