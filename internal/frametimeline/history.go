package frametimeline

// frameHistory is a bounded ring buffer of resolved DisplayFrames. Its
// behavior is invariant 5/8-4: length never exceeds capacity, oldest
// entries are discarded first.
type frameHistory struct {
	frames   []*DisplayFrame
	capacity int
	head     int // next write position
	size     int
}

// newFrameHistory creates a history buffer with the given capacity.
func newFrameHistory(capacity int) *frameHistory {
	if capacity < 1 {
		capacity = DefaultMaxDisplayFrames
	}
	return &frameHistory{
		frames:   make([]*DisplayFrame, capacity),
		capacity: capacity,
	}
}

// add stores a frame, overwriting the oldest if at capacity.
func (h *frameHistory) add(f *DisplayFrame) {
	h.frames[h.head] = f
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// resize changes capacity, keeping the most recent min(size, newCap)
// frames. Used by SetMaxDisplayFrames.
func (h *frameHistory) resize(newCap int) {
	if newCap < 1 {
		newCap = DefaultMaxDisplayFrames
	}
	all := h.all()
	if len(all) > newCap {
		all = all[len(all)-newCap:]
	}
	h.frames = make([]*DisplayFrame, newCap)
	h.capacity = newCap
	h.head = 0
	h.size = 0
	for _, f := range all {
		h.add(f)
	}
}

// len returns the current number of frames in history.
func (h *frameHistory) len() int {
	return h.size
}

// clear empties the history.
func (h *frameHistory) clear() {
	for i := range h.frames {
		h.frames[i] = nil
	}
	h.head = 0
	h.size = 0
}

// all returns every frame in history, oldest to newest.
func (h *frameHistory) all() []*DisplayFrame {
	if h.size == 0 {
		return nil
	}
	result := make([]*DisplayFrame, h.size)
	for i := 0; i < h.size; i++ {
		idx := (h.head - h.size + i + h.capacity) % h.capacity
		result[i] = h.frames[idx]
	}
	return result
}
