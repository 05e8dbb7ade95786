package encoder

import "sync"

// logRing keeps the most recent stderr lines from the encoder so exit
// diagnostics can include them without buffering the whole output.
type logRing struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

func newLogRing(capacity int) *logRing {
	if capacity < 1 {
		capacity = 16
	}
	return &logRing{lines: make([]string, capacity)}
}

func (r *logRing) add(line string) {
	if line == "" {
		return
	}
	r.mu.Lock()
	r.lines[r.next] = line
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()
}

// tail returns up to n of the most recent lines, oldest first.
func (r *logRing) tail(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	start := 0
	if r.full {
		size = len(r.lines)
		start = r.next
	}
	if n > size {
		n = size
	}

	out := make([]string, 0, n)
	for i := size - n; i < size; i++ {
		out = append(out, r.lines[(start+i)%len(r.lines)])
	}
	return out
}
