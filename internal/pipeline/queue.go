package pipeline

import (
	"sync"

	"github.com/sells-group/recruit-cli/internal/model"
)

// queue is the enrichment work queue: FIFO over candidate emails, with a
// single in-flight marker enforcing at most one queue-driven enrichment at a
// time, and a per-email guard shared with the on-demand path so the two
// paths never score the same candidate concurrently.
type queue struct {
	mu       sync.Mutex
	pending  []string
	queued   map[string]struct{}
	inFlight bool
	active   map[string]struct{}
}

func newQueue() *queue {
	return &queue{
		queued: make(map[string]struct{}),
		active: make(map[string]struct{}),
	}
}

// enqueueMissing appends the email of every record lacking a scoring result
// that is not already queued or being enriched, preserving first-seen order.
// Returns the number of ids added.
func (q *queue) enqueueMissing(records []model.Candidate) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	added := 0
	for _, c := range records {
		if c.Analysis.Scored() {
			continue
		}
		if _, ok := q.queued[c.Email]; ok {
			continue
		}
		if _, ok := q.active[c.Email]; ok {
			continue
		}
		q.pending = append(q.pending, c.Email)
		q.queued[c.Email] = struct{}{}
		added++
	}
	return added
}

// pop removes the head id and marks it in flight. ok is false when the queue
// is empty or another queue item is already in flight. busy is true when the
// head id is currently held by the on-demand path; the caller must skip it
// without scoring and without calling finish.
func (q *queue) pop() (email string, busy, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.inFlight || len(q.pending) == 0 {
		return "", false, false
	}

	email = q.pending[0]
	q.pending = q.pending[1:]
	delete(q.queued, email)

	if _, held := q.active[email]; held {
		return email, true, true
	}

	q.inFlight = true
	q.active[email] = struct{}{}
	return email, false, true
}

// finish clears the in-flight marker and the per-email guard after a popped
// id has been handled (success, failure or skip).
func (q *queue) finish(email string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.inFlight = false
	delete(q.active, email)
}

// beginAdhoc claims the per-email guard for an on-demand enrichment.
// Returns false when the email is already being enriched by either path.
func (q *queue) beginAdhoc(email string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, held := q.active[email]; held {
		return false
	}
	q.active[email] = struct{}{}
	return true
}

// endAdhoc releases the per-email guard claimed by beginAdhoc.
func (q *queue) endAdhoc(email string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.active, email)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// snapshot returns a copy of the pending ids in order.
func (q *queue) snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.pending))
	copy(out, q.pending)
	return out
}
