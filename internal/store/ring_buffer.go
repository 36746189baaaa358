package store

// RingBuffer keeps the most recent activity log entries, overwriting the
// oldest once capacity is reached.
type RingBuffer struct {
	items []string
	start int
	size  int
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{items: make([]string, capacity)}
}

func (r *RingBuffer) Append(line string) {
	if len(r.items) == 0 {
		return
	}
	idx := (r.start + r.size) % len(r.items)
	r.items[idx] = line
	if r.size < len(r.items) {
		r.size++
		return
	}
	r.start = (r.start + 1) % len(r.items)
}

func (r *RingBuffer) Items() []string {
	out := make([]string, r.size)
	for i := 0; i < r.size; i++ {
		idx := (r.start + i) % len(r.items)
		out[i] = r.items[idx]
	}
	return out
}

func (r *RingBuffer) Len() int {
	return r.size
}

func (r *RingBuffer) Clear() {
	for i := range r.items {
		r.items[i] = ""
	}
	r.start = 0
	r.size = 0
}
